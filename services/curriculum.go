package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"academic-records/models"
	"academic-records/store"
)

type CurriculumService struct {
	store store.Store
}

// CurriculumUnitInput содержит единицу плана в том виде, в каком её прислали
type CurriculumUnitInput struct {
	StudGroupID uint `json:"stud_group_id" validate:"required"`
	SubjectID   uint `json:"subject_id" validate:"required"`
	TeacherID   uint `json:"teacher_id" validate:"required"`
}

type UnitView struct {
	Unit    models.CurriculumUnit `json:"unit"`
	Group   models.StudGroup      `json:"stud_group"`
	Subject models.Subject        `json:"subject"`
	Teacher models.Teacher        `json:"teacher"`
}

// MarkRow описывает строку ведомости. ReadOnly у студентов, которые уже не в группе.
type MarkRow struct {
	Mark     models.AttMark `json:"mark"`
	Student  models.Student `json:"student"`
	Result   *models.Result `json:"result"`
	ReadOnly bool           `json:"read_only"`
}

// MarkEdit несёт новые баллы для одной строки ведомости
type MarkEdit struct {
	ID       uint `json:"id" validate:"required"`
	AttMark1 *int `json:"att_mark_1" validate:"omitempty,gte=0,lte=100"`
	AttMark2 *int `json:"att_mark_2" validate:"omitempty,gte=0,lte=100"`
	AttMark3 *int `json:"att_mark_3" validate:"omitempty,gte=0,lte=100"`
}

func resolveUnit(tx store.Tx, u models.CurriculumUnit) (*UnitView, error) {
	g, err := tx.GetGroup(u.StudGroupID)
	if err != nil {
		return nil, lookup("stud_group", u.StudGroupID, err)
	}
	s, err := tx.GetSubject(u.SubjectID)
	if err != nil {
		return nil, lookup("subject", u.SubjectID, err)
	}
	t, err := tx.GetTeacher(u.TeacherID)
	if err != nil {
		return nil, lookup("teacher", u.TeacherID, err)
	}
	return &UnitView{Unit: u, Group: *g, Subject: *s, Teacher: *t}, nil
}

func (svc *CurriculumService) Get(ctx context.Context, id uint) (*UnitView, error) {
	var view *UnitView
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		u, err := tx.GetUnit(id)
		if err != nil {
			return lookup("curriculum_unit", id, err)
		}
		view, err = resolveUnit(tx, *u)
		return err
	})
	return view, err
}

// ListForGroup возвращает учебный план группы по порядку id
func (svc *CurriculumService) ListForGroup(ctx context.Context, groupID uint) ([]UnitView, error) {
	var views []UnitView
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGroup(groupID); err != nil {
			return lookup("stud_group", groupID, err)
		}
		units, err := tx.FindUnits(store.UnitFilter{StudGroupID: groupID})
		if err != nil {
			return err
		}
		for _, u := range units {
			v, err := resolveUnit(tx, u)
			if err != nil {
				return err
			}
			views = append(views, *v)
		}
		return nil
	})
	return views, err
}

// Upsert создаёт единицу плана или, при ненулевом excludeID, изменяет её.
// Группа у существующей единицы не меняется. Пара (группа, предмет) уникальна,
// группа должна быть активной.
func (svc *CurriculumService) Upsert(ctx context.Context, in CurriculumUnitInput, excludeID uint) (*models.CurriculumUnit, error) {
	var unit models.CurriculumUnit
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		if excludeID != 0 {
			existing, err := tx.GetUnit(excludeID)
			if err != nil {
				return lookup("curriculum_unit", excludeID, err)
			}
			unit = *existing
			in.StudGroupID = existing.StudGroupID
		}

		if fe := validateStruct(in); !fe.Empty() {
			return &ValidationError{Fields: fe}
		}

		fe := FieldErrors{}
		group, err := tx.GetGroup(in.StudGroupID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if group == nil {
			fe.Add("stud_group_id", "group does not exist")
		}
		if _, err := tx.GetSubject(in.SubjectID); errors.Is(err, store.ErrNotFound) {
			fe.Add("subject_id", "subject does not exist")
		} else if err != nil {
			return err
		}
		if _, err := tx.GetTeacher(in.TeacherID); errors.Is(err, store.ErrNotFound) {
			fe.Add("teacher_id", "teacher does not exist")
		} else if err != nil {
			return err
		}
		if !fe.Empty() {
			return &ValidationError{Fields: fe}
		}

		n, err := tx.CountUnits(store.UnitFilter{
			StudGroupID: in.StudGroupID,
			SubjectID:   in.SubjectID,
			ExcludeID:   excludeID,
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return &UniquenessError{Field: "subject_id", Message: "the group already has a curriculum unit for this subject"}
		}

		if !group.Active {
			return forbidden("stud_group", group.ID, "cannot add a curriculum unit to an inactive group")
		}

		unit.StudGroupID = in.StudGroupID
		unit.SubjectID = in.SubjectID
		unit.TeacherID = in.TeacherID
		if err := tx.SaveUnit(&unit); err != nil {
			return persist("curriculum_unit", "subject_id", "the group already has a curriculum unit for this subject", err)
		}
		log.Printf("✅ Curriculum unit %d saved (group %d, subject %d, teacher %d)",
			unit.ID, unit.StudGroupID, unit.SubjectID, unit.TeacherID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// Delete удаляет единицу плана без оценок и возвращает её
func (svc *CurriculumService) Delete(ctx context.Context, id uint) (*models.CurriculumUnit, error) {
	var unit *models.CurriculumUnit
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		u, err := tx.GetUnit(id)
		if err != nil {
			return lookup("curriculum_unit", id, err)
		}
		n, err := tx.CountMarks(store.MarkFilter{CurriculumUnitID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferentialIntegrityError{Messages: []string{"cannot delete a curriculum unit that has attestation marks"}}
		}
		if err := tx.DeleteUnit(id); err != nil {
			return lookup("curriculum_unit", id, err)
		}
		unit = u
		log.Printf("🗑️ Curriculum unit %d deleted", id)
		return nil
	})
	return unit, err
}

// editableUnit загружает единицу плана активной группы
func editableUnit(tx store.Tx, id uint) (*models.CurriculumUnit, error) {
	u, err := tx.GetUnit(id)
	if err != nil {
		return nil, lookup("curriculum_unit", id, err)
	}
	g, err := tx.GetGroup(u.StudGroupID)
	if err != nil {
		return nil, lookup("stud_group", u.StudGroupID, err)
	}
	if !g.Active {
		return nil, forbidden("stud_group", g.ID, "marks of an inactive group cannot be edited")
	}
	return u, nil
}

// reconcile дозаводит строки для текущего состава группы и возвращает все
// строки единицы, упорядоченные по ФИО
func reconcile(tx store.Tx, unit *models.CurriculumUnit) ([]MarkRow, error) {
	members, err := tx.FindStudents(store.StudentFilter{StudGroupID: unit.StudGroupID})
	if err != nil {
		return nil, err
	}
	marks, err := tx.FindMarks(store.MarkFilter{CurriculumUnitID: unit.ID})
	if err != nil {
		return nil, err
	}

	students := make(map[uint]models.Student, len(members))
	for _, s := range members {
		students[s.ID] = s
	}
	marked := make(map[uint]bool, len(marks))
	for _, m := range marks {
		marked[m.StudentID] = true
	}

	var missing []models.AttMark
	for _, s := range members {
		if !marked[s.ID] {
			missing = append(missing, models.AttMark{CurriculumUnitID: unit.ID, StudentID: s.ID})
		}
	}
	if len(missing) > 0 {
		if err := tx.CreateMarks(missing); err != nil {
			return nil, fmt.Errorf("create marks for curriculum unit %d: %w", unit.ID, err)
		}
		marks = append(marks, missing...)
		log.Printf("➕ Created %d attestation mark rows for curriculum unit %d", len(missing), unit.ID)
	}

	rows := make([]MarkRow, 0, len(marks))
	for _, m := range marks {
		s, ok := students[m.StudentID]
		if !ok {
			former, err := tx.GetStudent(m.StudentID)
			if err != nil {
				return nil, lookup("student", m.StudentID, err)
			}
			s = *former
		}
		rows = append(rows, MarkRow{
			Mark:     m,
			Student:  s,
			Result:   m.ResultPrint(),
			ReadOnly: s.StudGroupID == nil || *s.StudGroupID != unit.StudGroupID,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return models.LessByName(rows[i].Student, rows[j].Student) })
	return rows, nil
}

// Reconcile синхронизирует ведомость с составом группы. Повторный вызов без
// изменений состава ничего не создаёт.
func (svc *CurriculumService) Reconcile(ctx context.Context, unitID uint) ([]MarkRow, error) {
	var rows []MarkRow
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		unit, err := editableUnit(tx, unitID)
		if err != nil {
			return err
		}
		rows, err = reconcile(tx, unit)
		return err
	})
	return rows, err
}

// Clear удаляет все строки ведомости, включая ReadOnly
func (svc *CurriculumService) Clear(ctx context.Context, unitID uint) (int64, error) {
	var n int64
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		if _, err := editableUnit(tx, unitID); err != nil {
			return err
		}
		deleted, err := tx.DeleteMarks(store.MarkFilter{CurriculumUnitID: unitID})
		if err != nil {
			return fmt.Errorf("clear marks of curriculum unit %d: %w", unitID, err)
		}
		n = deleted
		log.Printf("🗑️ Cleared %d attestation marks of curriculum unit %d", n, unitID)
		return nil
	})
	return n, err
}

// SaveMarks сохраняет баллы и возвращает число записанных строк.
// Правки ReadOnly-строк пропускаются, одна ошибка отменяет весь пакет.
func (svc *CurriculumService) SaveMarks(ctx context.Context, unitID uint, edits []MarkEdit) (int, error) {
	saved := 0
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		unit, err := editableUnit(tx, unitID)
		if err != nil {
			return err
		}
		rows, err := reconcile(tx, unit)
		if err != nil {
			return err
		}
		byID := make(map[uint]MarkRow, len(rows))
		for _, r := range rows {
			byID[r.Mark.ID] = r
		}

		fe := FieldErrors{}
		for _, e := range edits {
			prefix := fmt.Sprintf("marks[%d]", e.ID)
			row, ok := byID[e.ID]
			if !ok {
				fe.Add(prefix, "mark does not belong to this curriculum unit")
				continue
			}
			if row.ReadOnly {
				continue
			}
			for field, msgs := range validateStruct(e) {
				for _, msg := range msgs {
					fe.Add(prefix+"."+field, msg)
				}
			}
		}
		if !fe.Empty() {
			return &ValidationError{Fields: fe}
		}

		for _, e := range edits {
			row := byID[e.ID]
			if row.ReadOnly {
				continue
			}
			m := row.Mark
			m.AttMark1, m.AttMark2, m.AttMark3 = e.AttMark1, e.AttMark2, e.AttMark3
			if err := tx.SaveMark(&m); err != nil {
				return fmt.Errorf("save mark %d: %w", m.ID, err)
			}
			saved++
		}
		log.Printf("✅ Saved %d attestation marks of curriculum unit %d", saved, unitID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}
