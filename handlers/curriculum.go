package handlers

import (
	"log"
	"net/http"

	"academic-records/auth"
	"academic-records/services"
)

type CurriculumHandler struct {
	svc *services.Services
}

func NewCurriculumHandler(svc *services.Services) *CurriculumHandler {
	return &CurriculumHandler{svc: svc}
}

type unitRequest struct {
	StudGroupID uint `json:"stud_group_id"`
	SubjectID   uint `json:"subject_id"`
	TeacherID   uint `json:"teacher_id"`
}

func (req unitRequest) input() services.CurriculumUnitInput {
	return services.CurriculumUnitInput{StudGroupID: req.StudGroupID, SubjectID: req.SubjectID, TeacherID: req.TeacherID}
}

type marksRequest struct {
	Marks []services.MarkEdit `json:"marks"`
}

type marksResponse struct {
	Unit  services.UnitView  `json:"curriculum_unit"`
	Rows  []services.MarkRow `json:"rows"`
	Saved int                `json:"saved,omitempty"`
}

func (h *CurriculumHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "curriculum unit")
	if !ok {
		return
	}
	view, err := h.svc.Curriculum.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CurriculumHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create curriculum unit") {
		return
	}
	var req unitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	unit, err := h.svc.Curriculum.Upsert(r.Context(), req.input(), 0)
	if err != nil {
		log.Printf("❌ Error creating curriculum unit: %v", err)
		writeError(w, err)
		return
	}
	log.Printf("✅ Curriculum unit created successfully with ID: %d", unit.ID)
	writeJSON(w, http.StatusCreated, unit)
}

// UpdateUnit меняет предмет или преподавателя, группа остаётся прежней
func (h *CurriculumHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update curriculum unit") {
		return
	}
	id, ok := pathID(w, r, "curriculum unit")
	if !ok {
		return
	}
	var req unitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	unit, err := h.svc.Curriculum.Upsert(r.Context(), req.input(), id)
	if err != nil {
		log.Printf("❌ Error updating curriculum unit %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("🔄 Curriculum unit updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, unit)
}

func (h *CurriculumHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete curriculum unit") {
		return
	}
	id, ok := pathID(w, r, "curriculum unit")
	if !ok {
		return
	}

	unit, err := h.svc.Curriculum.Delete(r.Context(), id)
	if err != nil {
		log.Printf("❌ Error deleting curriculum unit %d: %v", id, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Curriculum unit deleted successfully",
		"stud_group_id": unit.StudGroupID,
	})
}

// markEditor проверяет, что пользователь может работать с ведомостью
func (h *CurriculumHandler) markEditor(w http.ResponseWriter, r *http.Request) (*services.UnitView, bool) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r, "curriculum unit")
	if !ok {
		return nil, false
	}
	view, err := h.svc.Curriculum.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !auth.CanEditMarks(p, view.Unit) {
		log.Printf("❌ User with role %s tried to edit marks of curriculum unit %d", p.RoleName(), id)
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return nil, false
	}
	return view, true
}

// GetMarks создаёт недостающие строки ведомости и возвращает её
func (h *CurriculumHandler) GetMarks(w http.ResponseWriter, r *http.Request) {
	view, ok := h.markEditor(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Curriculum.Reconcile(r.Context(), view.Unit.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marksResponse{Unit: *view, Rows: rows})
}

func (h *CurriculumHandler) SaveMarks(w http.ResponseWriter, r *http.Request) {
	view, ok := h.markEditor(w, r)
	if !ok {
		return
	}
	var req marksRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := h.svc.Curriculum.SaveMarks(r.Context(), view.Unit.ID, req.Marks)
	if err != nil {
		log.Printf("❌ Error saving marks of curriculum unit %d: %v", view.Unit.ID, err)
		writeError(w, err)
		return
	}
	rows, err := h.svc.Curriculum.Reconcile(r.Context(), view.Unit.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marksResponse{Unit: *view, Rows: rows, Saved: saved})
}

func (h *CurriculumHandler) ClearMarks(w http.ResponseWriter, r *http.Request) {
	view, ok := h.markEditor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Curriculum.Clear(r.Context(), view.Unit.ID)
	if err != nil {
		log.Printf("❌ Error clearing marks of curriculum unit %d: %v", view.Unit.ID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Attestation marks cleared",
		"deleted": n,
	})
}
