package handlers

import (
	"log"
	"net/http"

	"academic-records/auth"
	"academic-records/services"
)

type ReportHandler struct {
	svc *services.Services
}

func NewReportHandler(svc *services.Services) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// GroupReport сводная ведомость группы
func (h *ReportHandler) GroupReport(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}
	if !auth.CanViewGroupReport(p) {
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	id, ok := pathID(w, r, "group")
	if !ok {
		return
	}

	report, err := h.svc.Reports.GroupReport(r.Context(), id)
	if err != nil {
		log.Printf("❌ Error building report for group %d: %v", id, err)
		writeError(w, err)
		return
	}
	log.Printf("📊 Group report built: group %d, %d columns, %d rows", id, len(report.Columns), len(report.Rows))
	writeJSON(w, http.StatusOK, report)
}

// StudentReport все оценки студента
func (h *ReportHandler) StudentReport(w http.ResponseWriter, r *http.Request) {
	p, ok := currentPrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "student")
	if !ok {
		return
	}
	if !auth.CanViewStudentReport(p, id) {
		log.Printf("❌ User with role %s tried to view report of student %d", p.RoleName(), id)
		writeMessage(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	report, err := h.svc.Reports.StudentReport(r.Context(), id)
	if err != nil {
		log.Printf("❌ Error building report for student %d: %v", id, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
