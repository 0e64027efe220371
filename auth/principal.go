package auth

import (
	"fmt"

	"academic-records/models"
)

// Principal описывает вошедшего пользователя: Admin, TeacherPrincipal или StudentPrincipal.
// Набор закрыт неэкспортируемым методом.
type Principal interface {
	RoleName() string
	principal()
}

type Admin struct {
	ID uint
}

type TeacherPrincipal struct {
	TeacherID uint
}

type StudentPrincipal struct {
	StudentID uint
}

func (Admin) RoleName() string            { return models.RoleAdmin }
func (TeacherPrincipal) RoleName() string { return models.RoleTeacher }
func (StudentPrincipal) RoleName() string { return models.RoleStudent }

func (Admin) principal()            {}
func (TeacherPrincipal) principal() {}
func (StudentPrincipal) principal() {}

// PrincipalFromClaims строит Principal из проверенных claims токена
func PrincipalFromClaims(c *JWTClaims) (Principal, error) {
	switch c.Role {
	case models.RoleAdmin:
		return Admin{ID: c.UserID}, nil
	case models.RoleTeacher:
		return TeacherPrincipal{TeacherID: c.UserID}, nil
	case models.RoleStudent:
		return StudentPrincipal{StudentID: c.UserID}, nil
	}
	return nil, fmt.Errorf("unknown role %q", c.Role)
}

// CanManageRecords: редактирование групп, студентов, предметов, преподавателей,
// учебного плана и администраторов
func CanManageRecords(p Principal) bool {
	_, ok := p.(Admin)
	return ok
}

// CanEditMarks: ведомость единицы плана доступна администратору и её преподавателю
func CanEditMarks(p Principal, unit models.CurriculumUnit) bool {
	switch v := p.(type) {
	case Admin:
		return true
	case TeacherPrincipal:
		return v.TeacherID == unit.TeacherID
	}
	return false
}

// CanViewGroupReport: любой вошедший пользователь
func CanViewGroupReport(p Principal) bool {
	return p != nil
}

// CanViewStudentReport: сотрудники, а студент только свою карточку
func CanViewStudentReport(p Principal, studentID uint) bool {
	switch v := p.(type) {
	case Admin, TeacherPrincipal:
		return true
	case StudentPrincipal:
		return v.StudentID == studentID
	}
	return false
}
