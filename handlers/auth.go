package handlers

import (
	"errors"
	"log"
	"net/http"

	"academic-records/auth"
	"academic-records/middleware"
	"academic-records/models"
	"academic-records/services"
)

type AuthHandler struct {
	svc        *services.Services
	jwtService *auth.JWTService
}

func NewAuthHandler(svc *services.Services, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		jwtService: jwtService,
	}
}

// Login обрабатывает вход пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeBody(w, r, &loginReq) {
		return
	}

	// Ищем пользователя: админ, преподаватель, студент
	acc, err := h.svc.Accounts.Resolve(r.Context(), loginReq.Login)
	if errors.Is(err, services.ErrNotFound) {
		log.Printf("❌ User not found: %s", loginReq.Login)
		writeMessage(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	// Проверяем пароль
	if !auth.CheckPassword(loginReq.Password, acc.PasswordHash) {
		log.Printf("❌ Invalid password for user: %s", loginReq.Login)
		writeMessage(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}

	token, err := h.jwtService.GenerateToken(acc.ID, acc.Login, acc.Role)
	if err != nil {
		log.Printf("❌ Error generating token for user %s: %v", acc.Login, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Printf("✅ User logged in successfully: %s (role: %s)", acc.Login, acc.Role)
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		Role:  acc.Role,
		ID:    acc.ID,
		Name:  acc.Name,
	})
}

// GetCurrentUser возвращает данные текущего пользователя
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var profile interface{}
	var err error
	switch claims.Role {
	case models.RoleAdmin:
		profile, err = h.svc.Admins.Get(r.Context(), claims.UserID)
	case models.RoleTeacher:
		profile, err = h.svc.Teachers.Get(r.Context(), claims.UserID)
	default:
		profile, err = h.svc.Students.Get(r.Context(), claims.UserID)
	}
	if err != nil {
		log.Printf("❌ Account %s (role: %s) not found: %v", claims.Login, claims.Role, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      claims.UserID,
		"login":   claims.Login,
		"role":    claims.Role,
		"profile": profile,
	})
}
