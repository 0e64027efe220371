package services

import (
	"context"
	"strings"

	"academic-records/models"
	"academic-records/store"
)

// Account описывает учётную запись, найденную по логину
type Account struct {
	Role         string
	ID           uint
	Login        string
	Name         string
	PasswordHash string
}

type AccountService struct {
	store store.Store
}

// Resolve ищет логин сначала среди администраторов, потом преподавателей, потом студентов
func (svc *AccountService) Resolve(ctx context.Context, login string) (*Account, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fieldError("login", "field is required")
	}

	var acc *Account
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		admins, err := tx.FindAdmins(store.AdminFilter{Login: login})
		if err != nil {
			return err
		}
		if len(admins) > 0 {
			a := admins[0]
			acc = &Account{Role: models.RoleAdmin, ID: a.ID, Login: a.Login, PasswordHash: a.PasswordHash,
				Name: strings.TrimSpace(a.Surname + " " + a.Firstname)}
			return nil
		}

		teachers, err := tx.FindTeachers(store.TeacherFilter{Login: login})
		if err != nil {
			return err
		}
		if len(teachers) > 0 {
			t := teachers[0]
			acc = &Account{Role: models.RoleTeacher, ID: t.ID, Login: login, PasswordHash: t.PasswordHash,
				Name: strings.TrimSpace(t.Surname + " " + t.Firstname)}
			return nil
		}

		students, err := tx.FindStudents(store.StudentFilter{Login: login})
		if err != nil {
			return err
		}
		if len(students) > 0 {
			s := students[0]
			acc = &Account{Role: models.RoleStudent, ID: s.ID, Login: login, PasswordHash: s.PasswordHash,
				Name: s.FullName()}
			return nil
		}
		return &StateError{Kind: ErrNotFound, Entity: "account", Message: "no user with this login"}
	})
	return acc, err
}
