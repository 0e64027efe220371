package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"academic-records/auth"
	"academic-records/middleware"
	"academic-records/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error  string               `json:"error"`
	Fields services.FieldErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError переводит ошибку сервиса в HTTP-статус
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *services.ValidationError
		ue *services.UniquenessError
		re *services.ReferentialIntegrityError
		se *services.StateError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Fields: ve.Fields})
	case errors.As(err, &ue):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ue.Message, Fields: services.FieldErrors{ue.Field: {ue.Message}}})
	case errors.As(err, &re):
		writeJSON(w, http.StatusConflict, errorResponse{Error: re.Error()})
	case errors.As(err, &se) && errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, se.Message)
	case errors.As(err, &se):
		writeMessage(w, http.StatusForbidden, se.Message)
	default:
		log.Printf("❌ Internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody читает JSON и проверяет validate-теги
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("❌ Error decoding request body: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return false
		}
		fields := services.FieldErrors{}
		for _, fe := range ve {
			fields.Add(fe.Field(), fe.Tag())
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Fields: fields})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		log.Printf("❌ Error converting id: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return 0, false
	}
	return uint(id), true
}

func currentPrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return p, true
}

// requireAdmin пропускает только администратора
func requireAdmin(w http.ResponseWriter, r *http.Request, action string) bool {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return false
	}
	if !auth.CanManageRecords(p) {
		log.Printf("❌ User with role %s tried to %s without permission", p.RoleName(), action)
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return false
	}
	return true
}

func hashIfSet(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	return auth.HashPassword(password)
}
