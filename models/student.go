package models

import "strings"

// Статусы студента
const (
	StatusStudy         = "study"
	StatusAcademicLeave = "academic_leave"
	StatusExpelled      = "expelled"
	StatusAlumnus       = "alumnus"
)

type Student struct {
	ID           uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Surname      string  `json:"surname" gorm:"not null;size:100;index" validate:"required,max=100"`
	Firstname    string  `json:"firstname" gorm:"not null;size:100" validate:"required,max=100"`
	Middlename   string  `json:"middlename,omitempty" gorm:"size:100" validate:"max=100"`
	Login        *string `json:"login,omitempty" gorm:"size:100;uniqueIndex" validate:"omitempty,max=100"`
	PasswordHash string  `json:"-" gorm:"size:255"`
	Status       string  `json:"status" gorm:"not null;size:20" validate:"oneof=study academic_leave expelled alumnus"`
	StudGroupID  *uint   `json:"stud_group_id,omitempty" gorm:"index"`
	Semester     *int    `json:"semester,omitempty" validate:"omitempty,gte=1,lte=14"`
	AlumnusYear  *int    `json:"alumnus_year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	ExpelledYear *int    `json:"expelled_year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
}

func (Student) TableName() string {
	return "students"
}

func (s Student) FullName() string {
	return strings.TrimSpace(strings.Join([]string{s.Surname, s.Firstname, s.Middlename}, " "))
}

// LessByName сравнивает по фамилии, имени, отчеству
func LessByName(a, b Student) bool {
	if a.Surname != b.Surname {
		return a.Surname < b.Surname
	}
	if a.Firstname != b.Firstname {
		return a.Firstname < b.Firstname
	}
	if a.Middlename != b.Middlename {
		return a.Middlename < b.Middlename
	}
	return a.ID < b.ID
}

type PaginatedResponse struct {
	Meta  Meta      `json:"meta"`
	Items []Student `json:"items"`
}

type Meta struct {
	TotalItems     int `json:"total_items"`
	TotalPages     int `json:"total_pages"`
	CurrentPage    int `json:"current_page"`
	PerPage        int `json:"per_page"`
	RemainingCount int `json:"remaining_count"`
}
