package handlers

import (
	"log"
	"net/http"

	"academic-records/models"
	"academic-records/services"
)

type TeacherHandler struct {
	svc *services.Services
}

func NewTeacherHandler(svc *services.Services) *TeacherHandler {
	return &TeacherHandler{svc: svc}
}

type teacherRequest struct {
	Surname    string  `json:"surname"`
	Firstname  string  `json:"firstname"`
	Middlename string  `json:"middlename"`
	Rank       string  `json:"rank"`
	Login      *string `json:"login"`
	Password   string  `json:"password" validate:"omitempty,min=6"`
}

func (h *TeacherHandler) GetTeachers(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentPrincipal(w, r); !ok {
		return
	}
	teachers, err := h.svc.Teachers.List(r.Context())
	if err != nil {
		log.Printf("❌ Error fetching teachers: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

func (h *TeacherHandler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "teacher")
	if !ok {
		return
	}
	teacher, err := h.svc.Teachers.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

func (h *TeacherHandler) saveTeacher(w http.ResponseWriter, r *http.Request, id uint) (*models.Teacher, bool) {
	var req teacherRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	hash, err := hashIfSet(req.Password)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	teacher := models.Teacher{
		ID:           id,
		Surname:      req.Surname,
		Firstname:    req.Firstname,
		Middlename:   req.Middlename,
		Rank:         req.Rank,
		Login:        req.Login,
		PasswordHash: hash,
	}
	if err := h.svc.Teachers.Save(r.Context(), &teacher); err != nil {
		log.Printf("❌ Error saving teacher: %v", err)
		writeError(w, err)
		return nil, false
	}
	return &teacher, true
}

func (h *TeacherHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create teacher") {
		return
	}
	teacher, ok := h.saveTeacher(w, r, 0)
	if !ok {
		return
	}
	log.Printf("✅ Teacher created successfully with ID: %d", teacher.ID)
	writeJSON(w, http.StatusCreated, teacher)
}

func (h *TeacherHandler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update teacher") {
		return
	}
	id, ok := pathID(w, r, "teacher")
	if !ok {
		return
	}
	teacher, ok := h.saveTeacher(w, r, id)
	if !ok {
		return
	}
	log.Printf("🔄 Teacher updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, teacher)
}

func (h *TeacherHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete teacher") {
		return
	}
	id, ok := pathID(w, r, "teacher")
	if !ok {
		return
	}
	if err := h.svc.Teachers.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Error deleting teacher %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🗑️ Teacher deleted successfully: ID %d", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Teacher deleted successfully"})
}
