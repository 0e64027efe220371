package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"academic-records/models"
	"academic-records/store"
)

type StudentService struct {
	store store.Store
	now   func() time.Time
}

// leavesGroup: статус, при котором студент не состоит в группе
func leavesGroup(status string) bool {
	switch status {
	case models.StatusAlumnus, models.StatusExpelled, models.StatusAcademicLeave:
		return true
	}
	return false
}

// NormalizeStudent согласует статус с группой, семестром и годами. Шаги идут
// строго по порядку: выпуск, отчисление или академ снимают группу раньше,
// чем группа переводит студента в study. group должна быть записью
// по s.StudGroupID или nil.
func NormalizeStudent(s *models.Student, group *models.StudGroup, year int) {
	if s.Status == models.StatusAlumnus {
		s.StudGroupID = nil
		s.ExpelledYear = nil
		s.Semester = nil
		if s.AlumnusYear == nil {
			y := year
			s.AlumnusYear = &y
		}
	}

	if s.Status == models.StatusExpelled || s.Status == models.StatusAcademicLeave {
		s.StudGroupID = nil
		s.AlumnusYear = nil
		if s.ExpelledYear == nil {
			y := year
			s.ExpelledYear = &y
		}
	}

	if s.StudGroupID != nil && group != nil {
		s.Status = models.StatusStudy
		semester := group.Semester
		s.Semester = &semester
	}

	if s.Status == models.StatusStudy {
		s.AlumnusYear = nil
		s.ExpelledYear = nil
	}
}

func ValidateStudent(s *models.Student) FieldErrors {
	fe := validateStruct(s)
	if s.Status != models.StatusAlumnus && s.Semester == nil {
		fe.Add("semester", "semester is required")
	}
	return fe
}

// normalizeAndValidate: нормализация, затем проверка. previous содержит
// сохранённую запись при редактировании.
func (svc *StudentService) normalizeAndValidate(tx store.Tx, candidate, previous *models.Student) error {
	candidate.Surname = strings.TrimSpace(candidate.Surname)
	candidate.Firstname = strings.TrimSpace(candidate.Firstname)
	candidate.Middlename = strings.TrimSpace(candidate.Middlename)
	if candidate.Login != nil && strings.TrimSpace(*candidate.Login) == "" {
		candidate.Login = nil
	}
	if candidate.Status == "" {
		candidate.Status = models.StatusStudy
	}

	if fe := validateStruct(candidate); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}

	var group *models.StudGroup
	if candidate.StudGroupID != nil && !leavesGroup(candidate.Status) {
		g, err := tx.GetGroup(*candidate.StudGroupID)
		if errors.Is(err, store.ErrNotFound) {
			return fieldError("stud_group_id", "group does not exist")
		}
		if err != nil {
			return lookup("stud_group", *candidate.StudGroupID, err)
		}
		stays := previous != nil && previous.StudGroupID != nil && *previous.StudGroupID == g.ID
		if !g.Active && !stays {
			return fieldError("stud_group_id", "group is not active")
		}
		group = g
	}

	NormalizeStudent(candidate, group, svc.now().Year())

	if fe := ValidateStudent(candidate); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}
	return nil
}

// NormalizeAndValidate применяет правила статусов без сохранения
func (svc *StudentService) NormalizeAndValidate(ctx context.Context, candidate *models.Student) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		var previous *models.Student
		if candidate.ID != 0 {
			p, err := tx.GetStudent(candidate.ID)
			if err != nil {
				return lookup("student", candidate.ID, err)
			}
			previous = p
		}
		// в этой единице работы ничего не пишется
		if err := svc.normalizeAndValidate(tx, candidate, previous); err != nil {
			return err
		}
		return nil
	})
}

// Save нормализует, проверяет и сохраняет студента. Нулевой ID создаёт нового,
// пустой PasswordHash оставляет прежний пароль.
func (svc *StudentService) Save(ctx context.Context, candidate *models.Student) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		var previous *models.Student
		if candidate.ID != 0 {
			p, err := tx.GetStudent(candidate.ID)
			if err != nil {
				return lookup("student", candidate.ID, err)
			}
			previous = p
			if candidate.PasswordHash == "" {
				candidate.PasswordHash = p.PasswordHash
			}
		}

		if err := svc.normalizeAndValidate(tx, candidate, previous); err != nil {
			return err
		}

		if candidate.Login != nil {
			n, err := tx.CountStudents(store.StudentFilter{Login: *candidate.Login, ExcludeID: candidate.ID})
			if err != nil {
				return err
			}
			if n > 0 {
				return &UniquenessError{Field: "login", Message: "login is already taken"}
			}
		}

		if err := tx.SaveStudent(candidate); err != nil {
			return persist("student", "login", "login is already taken", err)
		}
		log.Printf("✅ Student %d saved (status: %s)", candidate.ID, candidate.Status)
		return nil
	})
}

func (svc *StudentService) Get(ctx context.Context, id uint) (*models.Student, error) {
	var s *models.Student
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.GetStudent(id)
		if err != nil {
			return lookup("student", id, err)
		}
		s = found
		return nil
	})
	return s, err
}

func (svc *StudentService) Search(ctx context.Context, f store.StudentFilter) ([]models.Student, error) {
	var result []models.Student
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindStudents(f)
		result = found
		return err
	})
	return result, err
}

// Delete удаляет студента без оценок
func (svc *StudentService) Delete(ctx context.Context, id uint) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.GetStudent(id); err != nil {
			return lookup("student", id, err)
		}
		n, err := tx.CountMarks(store.MarkFilter{StudentID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferentialIntegrityError{Messages: []string{"cannot delete a student who has attestation marks"}}
		}
		if err := tx.DeleteStudent(id); err != nil {
			return lookup("student", id, err)
		}
		log.Printf("🗑️ Student %d deleted", id)
		return nil
	})
}
