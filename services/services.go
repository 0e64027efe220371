// Package services содержит правила предметной области: переходы статусов
// студента, синхронизацию учебного плана с ведомостями и сводные отчёты.
// Каждая операция выполняется одной единицей работы store.Store.
package services

import (
	"time"

	"academic-records/store"
)

type Services struct {
	Groups     *GroupService
	Students   *StudentService
	Subjects   *SubjectService
	Teachers   *TeacherService
	Admins     *AdminService
	Curriculum *CurriculumService
	Reports    *ReportService
	Accounts   *AccountService
}

func New(st store.Store, now func() time.Time) *Services {
	if now == nil {
		now = time.Now
	}
	return &Services{
		Groups:     &GroupService{store: st, now: now},
		Students:   &StudentService{store: st, now: now},
		Subjects:   &SubjectService{store: st},
		Teachers:   &TeacherService{store: st},
		Admins:     &AdminService{store: st},
		Curriculum: &CurriculumService{store: st},
		Reports:    &ReportService{store: st},
		Accounts:   &AccountService{store: st},
	}
}
