// Package store описывает хранилище сущностей: выборки по id и фильтрам
// и атомарные единицы работы.
package store

import (
	"context"
	"errors"

	"academic-records/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store выполняет единицы работы. Изменения fn фиксируются, если она вернула nil,
// и откатываются при ошибке или панике.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Нулевые значения фильтров не ограничивают выборку
type GroupFilter struct {
	ActiveOnly bool
	Year       *int
	Semester   *int
	Num        *int
	Subnum     *int
	ExcludeID  uint
}

type StudentFilter struct {
	ID            uint
	SurnamePrefix string
	Firstname     string
	Middlename    string
	Status        string
	StudGroupID   uint
	AlumnusYear   *int
	ExpelledYear  *int
	Login         string
	ExcludeID     uint
}

type TeacherFilter struct {
	Login     string
	ExcludeID uint
}

type AdminFilter struct {
	Login     string
	ExcludeID uint
}

type UnitFilter struct {
	StudGroupID uint
	SubjectID   uint
	TeacherID   uint
	ExcludeID   uint
}

type MarkFilter struct {
	CurriculumUnitID uint
	StudentID        uint
}

// Tx даёт доступ к хранилищу внутри одной единицы работы.
//
// Порядок Find: группы по году, семестру, номеру, подгруппе; студенты,
// преподаватели и администраторы по ФИО; предметы по названию; единицы плана
// и оценки по id. Save вставляет запись с нулевым ID и присваивает его,
// иначе обновляет существующую (store.ErrNotFound, если её нет).
type Tx interface {
	GetGroup(id uint) (*models.StudGroup, error)
	FindGroups(f GroupFilter) ([]models.StudGroup, error)
	CountGroups(f GroupFilter) (int64, error)
	SaveGroup(g *models.StudGroup) error
	DeleteGroup(id uint) error

	GetStudent(id uint) (*models.Student, error)
	FindStudents(f StudentFilter) ([]models.Student, error)
	CountStudents(f StudentFilter) (int64, error)
	SaveStudent(s *models.Student) error
	DeleteStudent(id uint) error

	GetSubject(id uint) (*models.Subject, error)
	FindSubjects() ([]models.Subject, error)
	SaveSubject(s *models.Subject) error
	DeleteSubject(id uint) error

	GetTeacher(id uint) (*models.Teacher, error)
	FindTeachers(f TeacherFilter) ([]models.Teacher, error)
	SaveTeacher(t *models.Teacher) error
	DeleteTeacher(id uint) error

	GetAdmin(id uint) (*models.AdminUser, error)
	FindAdmins(f AdminFilter) ([]models.AdminUser, error)
	SaveAdmin(a *models.AdminUser) error
	DeleteAdmin(id uint) error

	GetUnit(id uint) (*models.CurriculumUnit, error)
	FindUnits(f UnitFilter) ([]models.CurriculumUnit, error)
	CountUnits(f UnitFilter) (int64, error)
	SaveUnit(u *models.CurriculumUnit) error
	DeleteUnit(id uint) error

	FindMarks(f MarkFilter) ([]models.AttMark, error)
	CountMarks(f MarkFilter) (int64, error)
	CreateMarks(marks []models.AttMark) error
	SaveMark(m *models.AttMark) error
	DeleteMarks(f MarkFilter) (int64, error)
}
