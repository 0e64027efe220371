package models

type Teacher struct {
	ID           uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Surname      string  `json:"surname" gorm:"not null;size:100" validate:"required,max=100"`
	Firstname    string  `json:"firstname" gorm:"not null;size:100" validate:"required,max=100"`
	Middlename   string  `json:"middlename,omitempty" gorm:"size:100" validate:"max=100"`
	Rank         string  `json:"rank,omitempty" gorm:"size:100" validate:"max=100"`
	Login        *string `json:"login,omitempty" gorm:"size:100;uniqueIndex" validate:"omitempty,max=100"`
	PasswordHash string  `json:"-" gorm:"size:255"`
}

func (Teacher) TableName() string {
	return "teachers"
}
