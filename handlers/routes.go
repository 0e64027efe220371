package handlers

import (
	"net/http"

	"academic-records/auth"
	"academic-records/middleware"
	"academic-records/services"

	"github.com/gorilla/mux"
)

// RegisterRoutes вешает все маршруты /api на роутер
func RegisterRoutes(r *mux.Router, svc *services.Services, jwtService *auth.JWTService) {
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	authHandler := NewAuthHandler(svc, jwtService)
	groupHandler := NewGroupHandler(svc)
	studentHandler := NewStudentHandler(svc)
	subjectHandler := NewSubjectHandler(svc)
	teacherHandler := NewTeacherHandler(svc)
	adminHandler := NewAdminHandler(svc)
	curriculumHandler := NewCurriculumHandler(svc)
	reportHandler := NewReportHandler(svc)

	// /api/auth/login пропускается middleware как публичный
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.AuthMiddleware)

	// Аутентификация
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Группы
	api.HandleFunc("/groups", groupHandler.GetGroups).Methods("GET")
	api.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/groups/new", groupHandler.NewGroup).Methods("GET")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.GetGroup).Methods("GET")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.UpdateGroup).Methods("PUT", "PATCH")
	api.HandleFunc("/groups/{id:[0-9]+}", groupHandler.DeleteGroup).Methods("DELETE")

	// Студенты
	api.HandleFunc("/students", studentHandler.GetStudents).Methods("GET")
	api.HandleFunc("/students", studentHandler.CreateStudent).Methods("POST")
	api.HandleFunc("/students/validate", studentHandler.ValidateStudent).Methods("POST")
	api.HandleFunc("/students/{id:[0-9]+}", studentHandler.GetStudent).Methods("GET")
	api.HandleFunc("/students/{id:[0-9]+}", studentHandler.UpdateStudent).Methods("PUT", "PATCH")
	api.HandleFunc("/students/{id:[0-9]+}", studentHandler.DeleteStudent).Methods("DELETE")

	// Предметы
	api.HandleFunc("/subjects", subjectHandler.GetSubjects).Methods("GET")
	api.HandleFunc("/subjects", subjectHandler.CreateSubject).Methods("POST")
	api.HandleFunc("/subjects/{id:[0-9]+}", subjectHandler.GetSubject).Methods("GET")
	api.HandleFunc("/subjects/{id:[0-9]+}", subjectHandler.UpdateSubject).Methods("PUT", "PATCH")
	api.HandleFunc("/subjects/{id:[0-9]+}", subjectHandler.DeleteSubject).Methods("DELETE")

	// Преподаватели
	api.HandleFunc("/teachers", teacherHandler.GetTeachers).Methods("GET")
	api.HandleFunc("/teachers", teacherHandler.CreateTeacher).Methods("POST")
	api.HandleFunc("/teachers/{id:[0-9]+}", teacherHandler.GetTeacher).Methods("GET")
	api.HandleFunc("/teachers/{id:[0-9]+}", teacherHandler.UpdateTeacher).Methods("PUT", "PATCH")
	api.HandleFunc("/teachers/{id:[0-9]+}", teacherHandler.DeleteTeacher).Methods("DELETE")

	// Администраторы - только для админа
	api.HandleFunc("/admins", adminHandler.GetAdmins).Methods("GET")
	api.HandleFunc("/admins", adminHandler.CreateAdmin).Methods("POST")
	api.HandleFunc("/admins/{id:[0-9]+}", adminHandler.GetAdmin).Methods("GET")
	api.HandleFunc("/admins/{id:[0-9]+}", adminHandler.UpdateAdmin).Methods("PUT", "PATCH")
	api.HandleFunc("/admins/{id:[0-9]+}", adminHandler.DeleteAdmin).Methods("DELETE")

	// Учебный план и ведомости
	api.HandleFunc("/curriculum", curriculumHandler.CreateUnit).Methods("POST")
	api.HandleFunc("/curriculum/{id:[0-9]+}", curriculumHandler.GetUnit).Methods("GET")
	api.HandleFunc("/curriculum/{id:[0-9]+}", curriculumHandler.UpdateUnit).Methods("PUT", "PATCH")
	api.HandleFunc("/curriculum/{id:[0-9]+}", curriculumHandler.DeleteUnit).Methods("DELETE")
	api.HandleFunc("/curriculum/{id:[0-9]+}/marks", curriculumHandler.GetMarks).Methods("GET")
	api.HandleFunc("/curriculum/{id:[0-9]+}/marks", curriculumHandler.SaveMarks).Methods("PUT")
	api.HandleFunc("/curriculum/{id:[0-9]+}/marks", curriculumHandler.ClearMarks).Methods("DELETE")

	// Отчёты
	api.HandleFunc("/reports/groups/{id:[0-9]+}", reportHandler.GroupReport).Methods("GET")
	api.HandleFunc("/reports/students/{id:[0-9]+}", reportHandler.StudentReport).Methods("GET")

	// OPTIONS для preflight запросов
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
