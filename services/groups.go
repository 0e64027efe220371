package services

import (
	"context"
	"log"
	"time"

	"academic-records/models"
	"academic-records/store"
)

type GroupService struct {
	store store.Store
	now   func() time.Time
}

// NewGroup возвращает значения по умолчанию для новой группы: текущий учебный
// год, без подгруппы, активна
func (svc *GroupService) NewGroup() models.StudGroup {
	return models.StudGroup{
		Year:     models.AcademicYear(svc.now()),
		Semester: 1,
		Num:      1,
		Subnum:   0,
		Active:   true,
	}
}

// ListActive возвращает активные группы по году, семестру, номеру и подгруппе
func (svc *GroupService) ListActive(ctx context.Context) ([]models.StudGroup, error) {
	var groups []models.StudGroup
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindGroups(store.GroupFilter{ActiveOnly: true})
		groups = found
		return err
	})
	return groups, err
}

func (svc *GroupService) Get(ctx context.Context, id uint) (*models.StudGroup, error) {
	var g *models.StudGroup
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.GetGroup(id)
		if err != nil {
			return lookup("stud_group", id, err)
		}
		g = found
		return nil
	})
	return g, err
}

func (svc *GroupService) Members(ctx context.Context, id uint) ([]models.Student, error) {
	var students []models.Student
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGroup(id); err != nil {
			return lookup("stud_group", id, err)
		}
		found, err := tx.FindStudents(store.StudentFilter{StudGroupID: id})
		students = found
		return err
	})
	return students, err
}

// Save создаёт или изменяет группу. Неактивная группа только для чтения,
// набор (год, семестр, номер, подгруппа) уникален.
func (svc *GroupService) Save(ctx context.Context, g *models.StudGroup) error {
	if fe := validateStruct(g); !fe.Empty() {
		return &ValidationError{Fields: fe}
	}

	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		if g.ID != 0 {
			existing, err := tx.GetGroup(g.ID)
			if err != nil {
				return lookup("stud_group", g.ID, err)
			}
			if !existing.Active {
				return forbidden("stud_group", g.ID, "inactive group cannot be edited")
			}
			g.CreatedAt = existing.CreatedAt
		}

		n, err := tx.CountGroups(store.GroupFilter{
			Year:      &g.Year,
			Semester:  &g.Semester,
			Num:       &g.Num,
			Subnum:    &g.Subnum,
			ExcludeID: g.ID,
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return &UniquenessError{Field: "subnum", Message: "a group with this number already exists"}
		}

		if err := tx.SaveGroup(g); err != nil {
			return persist("stud_group", "subnum", "a group with this number already exists", err)
		}
		log.Printf("✅ Group %d saved (%d/%d %s)", g.ID, g.Year, g.Semester, g.Name())
		return nil
	})
}

// Delete удаляет активную группу без студентов и учебного плана
func (svc *GroupService) Delete(ctx context.Context, id uint) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		g, err := tx.GetGroup(id)
		if err != nil {
			return lookup("stud_group", id, err)
		}
		if !g.Active {
			return forbidden("stud_group", id, "inactive group cannot be edited")
		}

		var blocked []string
		students, err := tx.CountStudents(store.StudentFilter{StudGroupID: id})
		if err != nil {
			return err
		}
		if students > 0 {
			blocked = append(blocked, "cannot delete a group that has students")
		}
		units, err := tx.CountUnits(store.UnitFilter{StudGroupID: id})
		if err != nil {
			return err
		}
		if units > 0 {
			blocked = append(blocked, "cannot delete a group that has curriculum units")
		}
		if len(blocked) > 0 {
			return &ReferentialIntegrityError{Messages: blocked}
		}

		if err := tx.DeleteGroup(id); err != nil {
			return lookup("stud_group", id, err)
		}
		log.Printf("🗑️ Group %d deleted", id)
		return nil
	})
}
