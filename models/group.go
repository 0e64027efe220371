package models

import (
	"fmt"
	"time"
)

type StudGroup struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Year      int       `json:"year" gorm:"not null;uniqueIndex:idx_stud_groups_number" validate:"gte=2000,lte=2100"`
	Semester  int       `json:"semester" gorm:"not null;uniqueIndex:idx_stud_groups_number" validate:"oneof=1 2"`
	Num       int       `json:"num" gorm:"not null;uniqueIndex:idx_stud_groups_number" validate:"gte=1,lte=99"`
	Subnum    int       `json:"subnum" gorm:"not null;uniqueIndex:idx_stud_groups_number" validate:"gte=0,lte=9"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudGroup) TableName() string {
	return "stud_groups"
}

// Name печатает номер группы как в документах: "3" или "3.1"
func (g StudGroup) Name() string {
	if g.Subnum == 0 {
		return fmt.Sprintf("%d", g.Num)
	}
	return fmt.Sprintf("%d.%d", g.Num, g.Subnum)
}

// AcademicYear возвращает год начала учебного года. Учебный год меняется 1 июля.
func AcademicYear(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}
