package handlers

import (
	"log"
	"net/http"

	"academic-records/models"
	"academic-records/services"
)

// AdminHandler управляет учётными записями администраторов
type AdminHandler struct {
	svc *services.Services
}

func NewAdminHandler(svc *services.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type adminRequest struct {
	Surname    string `json:"surname"`
	Firstname  string `json:"firstname"`
	Middlename string `json:"middlename"`
	Login      string `json:"login"`
	Password   string `json:"password" validate:"omitempty,min=6"`
}

func (h *AdminHandler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "list administrators") {
		return
	}
	admins, err := h.svc.Admins.List(r.Context())
	if err != nil {
		log.Printf("❌ Error fetching administrators: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "view administrator") {
		return
	}
	id, ok := pathID(w, r, "administrator")
	if !ok {
		return
	}
	admin, err := h.svc.Admins.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create administrator") {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "Validation failed",
			Fields: services.FieldErrors{"password": {"field is required"}},
		})
		return
	}
	hash, err := hashIfSet(req.Password)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	admin := models.AdminUser{
		Surname:      req.Surname,
		Firstname:    req.Firstname,
		Middlename:   req.Middlename,
		Login:        req.Login,
		PasswordHash: hash,
	}
	if err := h.svc.Admins.Save(r.Context(), &admin); err != nil {
		log.Printf("❌ Error creating administrator: %v", err)
		writeError(w, err)
		return
	}
	log.Printf("✅ Administrator created successfully with ID: %d", admin.ID)
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update administrator") {
		return
	}
	id, ok := pathID(w, r, "administrator")
	if !ok {
		return
	}
	var req adminRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hash, err := hashIfSet(req.Password)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	admin := models.AdminUser{
		ID:           id,
		Surname:      req.Surname,
		Firstname:    req.Firstname,
		Middlename:   req.Middlename,
		Login:        req.Login,
		PasswordHash: hash,
	}
	if err := h.svc.Admins.Save(r.Context(), &admin); err != nil {
		log.Printf("❌ Error updating administrator %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🔄 Administrator updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete administrator") {
		return
	}
	id, ok := pathID(w, r, "administrator")
	if !ok {
		return
	}
	if err := h.svc.Admins.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Error deleting administrator %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🗑️ Administrator deleted successfully: ID %d", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Administrator deleted successfully"})
}
