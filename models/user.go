package models

// Роли пользователей
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

type AdminUser struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Surname      string `json:"surname" gorm:"not null;size:100" validate:"required,max=100"`
	Firstname    string `json:"firstname" gorm:"not null;size:100" validate:"required,max=100"`
	Middlename   string `json:"middlename,omitempty" gorm:"size:100" validate:"max=100"`
	Login        string `json:"login" gorm:"not null;size:100;uniqueIndex" validate:"required,max=100"`
	PasswordHash string `json:"-" gorm:"size:255"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// Запросы для аутентификации
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    uint   `json:"id"`
	Name  string `json:"name"`
}
