package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"academic-records/auth"
	"academic-records/models"
	"academic-records/services"
	"academic-records/store"
)

type StudentHandler struct {
	svc *services.Services
}

func NewStudentHandler(svc *services.Services) *StudentHandler {
	return &StudentHandler{svc: svc}
}

type studentRequest struct {
	ID           uint    `json:"id"`
	Surname      string  `json:"surname"`
	Firstname    string  `json:"firstname"`
	Middlename   string  `json:"middlename"`
	Login        *string `json:"login"`
	Password     string  `json:"password" validate:"omitempty,min=6"`
	Status       string  `json:"status"`
	StudGroupID  *uint   `json:"stud_group_id"`
	Semester     *int    `json:"semester"`
	AlumnusYear  *int    `json:"alumnus_year"`
	ExpelledYear *int    `json:"expelled_year"`
}

func (req studentRequest) toModel(id uint) (models.Student, error) {
	hash, err := hashIfSet(req.Password)
	if err != nil {
		return models.Student{}, err
	}
	return models.Student{
		ID:           id,
		Surname:      req.Surname,
		Firstname:    req.Firstname,
		Middlename:   req.Middlename,
		Login:        req.Login,
		PasswordHash: hash,
		Status:       req.Status,
		StudGroupID:  req.StudGroupID,
		Semester:     req.Semester,
		AlumnusYear:  req.AlumnusYear,
		ExpelledYear: req.ExpelledYear,
	}, nil
}

func queryInt(r *http.Request, key string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

// GetStudents ищет студентов по фильтрам и отдаёт страницу результата
func (h *StudentHandler) GetStudents(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}
	if _, isStudent := p.(auth.StudentPrincipal); isStudent {
		log.Printf("❌ Student tried to search students")
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	// Параметры пагинации
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	// Параметры фильтрации
	q := r.URL.Query()
	filter := store.StudentFilter{
		SurnamePrefix: strings.TrimSpace(strings.Trim(q.Get("surname"), "*")),
		Firstname:     strings.TrimSpace(q.Get("firstname")),
		Middlename:    strings.TrimSpace(q.Get("middlename")),
		Status:        q.Get("status"),
		AlumnusYear:   queryInt(r, "alumnus_year"),
		ExpelledYear:  queryInt(r, "expelled_year"),
		Login:         strings.TrimSpace(q.Get("login")),
	}
	if id := queryInt(r, "id"); id != nil && *id > 0 {
		filter.ID = uint(*id)
	}
	if g := queryInt(r, "stud_group_id"); g != nil && *g > 0 {
		filter.StudGroupID = uint(*g)
	}

	students, err := h.svc.Students.Search(r.Context(), filter)
	if err != nil {
		log.Printf("❌ Error fetching students: %v", err)
		writeError(w, err)
		return
	}

	totalItems := len(students)
	offset := (page - 1) * limit
	end := offset + limit
	if offset > totalItems {
		offset = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	totalPages := (totalItems + limit - 1) / limit
	remainingCount := totalItems - (page * limit)
	if remainingCount < 0 {
		remainingCount = 0
	}

	writeJSON(w, http.StatusOK, models.PaginatedResponse{
		Meta: models.Meta{
			TotalItems:     totalItems,
			TotalPages:     totalPages,
			CurrentPage:    page,
			PerPage:        limit,
			RemainingCount: remainingCount,
		},
		Items: students[offset:end],
	})
}

// GetStudent: сотрудники видят любого студента, студент только себя
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "student")
	if !ok {
		return
	}
	if sp, isStudent := p.(auth.StudentPrincipal); isStudent && sp.StudentID != id {
		log.Printf("❌ Student %d tried to view student %d", sp.StudentID, id)
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	student, err := h.svc.Students.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "create student") {
		return
	}

	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	student, err := req.toModel(0)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Printf("➕ Creating student: Surname='%s', Firstname='%s'", student.Surname, student.Firstname)
	if err := h.svc.Students.Save(r.Context(), &student); err != nil {
		log.Printf("❌ Error creating student: %v", err)
		writeError(w, err)
		return
	}

	log.Printf("✅ Student created successfully with ID: %d", student.ID)
	writeJSON(w, http.StatusCreated, student)
}

// ValidateStudent нормализует форму студента и возвращает результат без сохранения
func (h *StudentHandler) ValidateStudent(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "validate student") {
		return
	}

	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Password = ""
	student, err := req.toModel(req.ID)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.svc.Students.NormalizeAndValidate(r.Context(), &student); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "update student") {
		return
	}
	id, ok := pathID(w, r, "student")
	if !ok {
		return
	}

	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	student, err := req.toModel(id)
	if err != nil {
		log.Printf("❌ Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.svc.Students.Save(r.Context(), &student); err != nil {
		log.Printf("❌ Error updating student %d: %v", id, err)
		writeError(w, err)
		return
	}

	log.Printf("🔄 Student updated successfully: ID %d", id)
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r, "delete student") {
		return
	}
	id, ok := pathID(w, r, "student")
	if !ok {
		return
	}

	if err := h.svc.Students.Delete(r.Context(), id); err != nil {
		log.Printf("❌ Error deleting student %d: %v", id, err)
		writeError(w, err)
		return
	}

	log.Printf("🗑️ Student deleted successfully: ID %d", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}
