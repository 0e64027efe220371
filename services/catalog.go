package services

import (
	"context"
	"log"
	"strings"

	"academic-records/models"
	"academic-records/store"
)

type SubjectService struct {
	store store.Store
}

func (svc *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindSubjects()
		subjects = found
		return err
	})
	return subjects, err
}

func (svc *SubjectService) Get(ctx context.Context, id uint) (*models.Subject, error) {
	var s *models.Subject
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.GetSubject(id)
		if err != nil {
			return lookup("subject", id, err)
		}
		s = found
		return nil
	})
	return s, err
}

func (svc *SubjectService) Save(ctx context.Context, s *models.Subject) error {
	s.Name = strings.TrimSpace(s.Name)
	if fe := validateStruct(s); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if s.ID != 0 {
			if _, err := tx.GetSubject(s.ID); err != nil {
				return lookup("subject", s.ID, err)
			}
		}
		return persist("subject", "name", "subject with this name already exists", tx.SaveSubject(s))
	})
}

// Delete удаляет предмет, на который не ссылается учебный план
func (svc *SubjectService) Delete(ctx context.Context, id uint) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.GetSubject(id); err != nil {
			return lookup("subject", id, err)
		}
		n, err := tx.CountUnits(store.UnitFilter{SubjectID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferentialIntegrityError{Messages: []string{"cannot delete a subject that has curriculum units"}}
		}
		if err := tx.DeleteSubject(id); err != nil {
			return lookup("subject", id, err)
		}
		log.Printf("🗑️ Subject %d deleted", id)
		return nil
	})
}

type TeacherService struct {
	store store.Store
}

func (svc *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindTeachers(store.TeacherFilter{})
		teachers = found
		return err
	})
	return teachers, err
}

func (svc *TeacherService) Get(ctx context.Context, id uint) (*models.Teacher, error) {
	var t *models.Teacher
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.GetTeacher(id)
		if err != nil {
			return lookup("teacher", id, err)
		}
		t = found
		return nil
	})
	return t, err
}

// Save создаёт или изменяет преподавателя. Пустой PasswordHash оставляет прежний пароль.
func (svc *TeacherService) Save(ctx context.Context, t *models.Teacher) error {
	t.Surname = strings.TrimSpace(t.Surname)
	t.Firstname = strings.TrimSpace(t.Firstname)
	t.Middlename = strings.TrimSpace(t.Middlename)
	if t.Login != nil && strings.TrimSpace(*t.Login) == "" {
		t.Login = nil
	}
	if fe := validateStruct(t); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}

	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if t.ID != 0 {
			existing, err := tx.GetTeacher(t.ID)
			if err != nil {
				return lookup("teacher", t.ID, err)
			}
			if t.PasswordHash == "" {
				t.PasswordHash = existing.PasswordHash
			}
		}
		if t.Login != nil {
			taken, err := tx.FindTeachers(store.TeacherFilter{Login: *t.Login, ExcludeID: t.ID})
			if err != nil {
				return err
			}
			if len(taken) > 0 {
				return &UniquenessError{Field: "login", Message: "login is already taken"}
			}
		}
		return persist("teacher", "login", "login is already taken", tx.SaveTeacher(t))
	})
}

// Delete удаляет преподавателя без единиц учебного плана
func (svc *TeacherService) Delete(ctx context.Context, id uint) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.GetTeacher(id); err != nil {
			return lookup("teacher", id, err)
		}
		n, err := tx.CountUnits(store.UnitFilter{TeacherID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferentialIntegrityError{Messages: []string{"cannot delete a teacher who has curriculum units"}}
		}
		if err := tx.DeleteTeacher(id); err != nil {
			return lookup("teacher", id, err)
		}
		log.Printf("🗑️ Teacher %d deleted", id)
		return nil
	})
}

type AdminService struct {
	store store.Store
}

func (svc *AdminService) List(ctx context.Context) ([]models.AdminUser, error) {
	var admins []models.AdminUser
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindAdmins(store.AdminFilter{})
		admins = found
		return err
	})
	return admins, err
}

func (svc *AdminService) Get(ctx context.Context, id uint) (*models.AdminUser, error) {
	var a *models.AdminUser
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.GetAdmin(id)
		if err != nil {
			return lookup("admin_user", id, err)
		}
		a = found
		return nil
	})
	return a, err
}

// Save создаёт или изменяет администратора. Пустой PasswordHash оставляет прежний пароль.
func (svc *AdminService) Save(ctx context.Context, a *models.AdminUser) error {
	a.Login = strings.TrimSpace(a.Login)
	if fe := validateStruct(a); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if a.ID != 0 {
			existing, err := tx.GetAdmin(a.ID)
			if err != nil {
				return lookup("admin_user", a.ID, err)
			}
			if a.PasswordHash == "" {
				a.PasswordHash = existing.PasswordHash
			}
		}
		taken, err := tx.FindAdmins(store.AdminFilter{Login: a.Login, ExcludeID: a.ID})
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return &UniquenessError{Field: "login", Message: "login is already taken"}
		}
		return persist("admin_user", "login", "login is already taken", tx.SaveAdmin(a))
	})
}

func (svc *AdminService) Delete(ctx context.Context, id uint) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if err := tx.DeleteAdmin(id); err != nil {
			return lookup("admin_user", id, err)
		}
		log.Printf("🗑️ Admin user %d deleted", id)
		return nil
	})
}
