package handlers

import (
	"log"
	"net/http"

	"academic-records/models"
	"academic-records/services"
)

type SubjectHandler struct {
	svc *services.Services
}

func NewSubjectHandler(svc *services.Services) *SubjectHandler {
	return &SubjectHandler{svc: svc}
}

type subjectRequest struct {
	Name string `json:"name"`
}

func (h *SubjectHandler) GetSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.Subjects.List(r.Context())
	if err != nil {
		log.Printf("❌ Error fetching subjects: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *SubjectHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	subject, err := h.svc.Subjects.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create subject") {
		return
	}
	var req subjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	subject := models.Subject{Name: req.Name}
	if err := h.svc.Subjects.Save(r.Context(), &subject); err != nil {
		log.Printf("❌ Error creating subject: %v", err)
		writeError(w, err)
		return
	}
	log.Printf("✅ Subject created successfully with ID: %d", subject.ID)
	writeJSON(w, http.StatusCreated, subject)
}

func (h *SubjectHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update subject") {
		return
	}
	id, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var req subjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	subject := models.Subject{ID: id, Name: req.Name}
	if err := h.svc.Subjects.Save(r.Context(), &subject); err != nil {
		log.Printf("❌ Error updating subject %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🔄 Subject updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, subject)
}

func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete subject") {
		return
	}
	id, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	if err := h.svc.Subjects.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Error deleting subject %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🗑️ Subject deleted successfully: ID %d", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subject deleted successfully"})
}
