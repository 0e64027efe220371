package handlers

import (
	"log"
	"net/http"

	"academic-records/models"
	"academic-records/services"
)

type GroupHandler struct {
	svc *services.Services
}

func NewGroupHandler(svc *services.Services) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type groupRequest struct {
	Year     int   `json:"year"`
	Semester int   `json:"semester"`
	Num      int   `json:"num"`
	Subnum   int   `json:"subnum"`
	Active   *bool `json:"active"`
}

// если active не передан, группа активна
func (req groupRequest) active() bool {
	return req.Active == nil || *req.Active
}

type groupDetails struct {
	Group      models.StudGroup    `json:"stud_group"`
	Students   []models.Student    `json:"students"`
	Curriculum []services.UnitView `json:"curriculum"`
}

// GetGroups возвращает активные группы
func (h *GroupHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.Groups.ListActive(r.Context())
	if err != nil {
		log.Printf("❌ Error getting groups: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// NewGroup отдаёт значения по умолчанию для формы создания группы
func (h *GroupHandler) NewGroup(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create group") {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Groups.NewGroup())
}

// GetGroup возвращает группу вместе со студентами и учебным планом
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "group")
	if !ok {
		return
	}

	group, err := h.svc.Groups.Get(r.Context(), id)
	if err != nil {
		log.Printf("❌ Group not found: %d", id)
		writeError(w, err)
		return
	}
	students, err := h.svc.Groups.Members(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	curriculum, err := h.svc.Curriculum.ListForGroup(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groupDetails{Group: *group, Students: students, Curriculum: curriculum})
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create group") {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group := models.StudGroup{
		Year:     req.Year,
		Semester: req.Semester,
		Num:      req.Num,
		Subnum:   req.Subnum,
		Active:   req.active(),
	}
	if err := h.svc.Groups.Save(r.Context(), &group); err != nil {
		log.Printf("❌ Error creating group: %v", err)
		writeError(w, err)
		return
	}

	log.Printf("✅ Group created successfully: ID %d", group.ID)
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update group") {
		return
	}
	id, ok := pathID(w, r, "group")
	if !ok {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group := models.StudGroup{
		ID:       id,
		Year:     req.Year,
		Semester: req.Semester,
		Num:      req.Num,
		Subnum:   req.Subnum,
		Active:   req.active(),
	}
	if err := h.svc.Groups.Save(r.Context(), &group); err != nil {
		log.Printf("❌ Error updating group %d: %v", id, err)
		writeError(w, err)
		return
	}

	log.Printf("🔄 Group updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete group") {
		return
	}
	id, ok := pathID(w, r, "group")
	if !ok {
		return
	}

	if err := h.svc.Groups.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Error deleting group %d: %v", id, err)
		writeError(w, err)
		return
	}

	log.Printf("🗑️ Group deleted successfully: ID %d", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}
