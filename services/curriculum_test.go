package services

import (
	"errors"
	"testing"

	"academic-records/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurriculumService_UpsertUnique(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	math := f.subject("Math")
	teacher := f.teacher("Sidorov")
	f.unit(g, math, teacher)

	_, err := f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: g.ID, SubjectID: math.ID, TeacherID: teacher.ID}, 0)
	var ue *UniquenessError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "subject_id", ue.Field)

	other := f.group(2, 0)
	_, err = f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: other.ID, SubjectID: math.ID, TeacherID: teacher.ID}, 0)
	assert.NoError(t, err)
}

func TestCurriculumService_UpsertMissingReferences(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)

	_, err := f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: g.ID, SubjectID: 40, TeacherID: 41}, 0)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "subject_id")
	assert.Contains(t, ve.Fields, "teacher_id")
	assert.NotContains(t, ve.Fields, "stud_group_id")

	_, err = f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{}, 0)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "stud_group_id")
}

func TestCurriculumService_InactiveGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	math := f.subject("Math")
	teacher := f.teacher("Sidorov")
	u := f.unit(g, math, teacher)
	f.deactivate(g)

	_, err := f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: g.ID, SubjectID: f.subject("Physics").ID, TeacherID: teacher.ID}, 0)
	assert.ErrorIs(t, err, ErrForbiddenState)

	_, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	assert.ErrorIs(t, err, ErrForbiddenState)

	_, err = f.svc.Curriculum.Clear(f.ctx, u.ID)
	assert.ErrorIs(t, err, ErrForbiddenState)
}

func TestCurriculumService_UpdateKeepsGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	other := f.group(2, 0)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	physics := f.subject("Physics")
	newTeacher := f.teacher("Kuznetsov")

	updated, err := f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: other.ID, SubjectID: physics.ID, TeacherID: newTeacher.ID}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, updated.ID)
	assert.Equal(t, g.ID, updated.StudGroupID)
	assert.Equal(t, physics.ID, updated.SubjectID)
	assert.Equal(t, newTeacher.ID, updated.TeacherID)

	// повторное сохранение без изменений не конфликтует само с собой
	_, err = f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{SubjectID: physics.ID, TeacherID: newTeacher.ID}, u.ID)
	assert.NoError(t, err)
}

func TestCurriculumService_DeleteGuardedByMarks(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Ivanov", "Ivan", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	_, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.Curriculum.Delete(f.ctx, u.ID)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)

	n, err := f.svc.Curriculum.Clear(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := f.svc.Curriculum.Delete(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, deleted.StudGroupID)

	_, err = f.svc.Curriculum.Get(f.ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurriculumService_ReconcileIdempotent(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Petrov", "Petr", &g)
	f.student("Ivanov", "Ivan", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))

	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ivanov", rows[0].Student.Surname)
	assert.Equal(t, "Petrov", rows[1].Student.Surname)

	again, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, rows[0].Mark.ID, again[0].Mark.ID)
	assert.Equal(t, rows[1].Mark.ID, again[1].Mark.ID)

	require.NoError(t, f.st.Atomic(f.ctx, func(tx store.Tx) error {
		n, err := tx.CountMarks(store.MarkFilter{CurriculumUnitID: u.ID})
		assert.Equal(t, int64(2), n)
		return err
	}))
}

func TestCurriculumService_ReconcileAddsNewcomer(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Ivanov", "Ivan", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))

	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	f.student("Abramov", "Anton", &g)
	rows, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Abramov", rows[0].Student.Surname)
}

func TestCurriculumService_FormerStudentIsReadOnly(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	other := f.group(2, 0)
	leaver := f.student("Ivanov", "Ivan", &g)
	f.student("Petrov", "Petr", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))

	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	leaverMark := rows[0].Mark.ID
	stayerMark := rows[1].Mark.ID

	f.moveStudent(leaver, &other)

	rows, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, leaverMark, rows[0].Mark.ID)
	assert.True(t, rows[0].ReadOnly)
	assert.False(t, rows[1].ReadOnly)

	// правка ReadOnly-строки пропущена, хотя балл вне диапазона
	saved, err := f.svc.Curriculum.SaveMarks(f.ctx, u.ID, []MarkEdit{
		{ID: leaverMark, AttMark1: intPtr(500)},
		{ID: stayerMark, AttMark1: intPtr(30), AttMark2: intPtr(30), AttMark3: intPtr(30)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	rows, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, rows[0].Mark.AttMark1)
	require.NotNil(t, rows[1].Result)
	assert.Equal(t, 90, rows[1].Result.Total)
	assert.Equal(t, "unsatisfactory", rows[1].Result.Grade)
}

func TestCurriculumService_SaveMarksRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Ivanov", "Ivan", &g)
	f.student("Petrov", "Petr", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)

	_, err = f.svc.Curriculum.SaveMarks(f.ctx, u.ID, []MarkEdit{
		{ID: rows[0].Mark.ID, AttMark1: intPtr(50)},
		{ID: rows[1].Mark.ID, AttMark2: intPtr(-1)},
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 1)
	for field := range ve.Fields {
		assert.Contains(t, field, ".att_mark_2")
	}

	after, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, after[0].Mark.AttMark1)
}

func TestCurriculumService_SaveMarksForeignRow(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Ivanov", "Ivan", &g)
	teacher := f.teacher("Sidorov")
	math := f.unit(g, f.subject("Math"), teacher)
	physics := f.unit(g, f.subject("Physics"), teacher)

	physicsRows, err := f.svc.Curriculum.Reconcile(f.ctx, physics.ID)
	require.NoError(t, err)

	_, err = f.svc.Curriculum.SaveMarks(f.ctx, math.ID, []MarkEdit{{ID: physicsRows[0].Mark.ID, AttMark1: intPtr(10)}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCurriculumService_SaveMarksClearsScores(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.student("Ivanov", "Ivan", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	id := rows[0].Mark.ID

	_, err = f.svc.Curriculum.SaveMarks(f.ctx, u.ID, []MarkEdit{{ID: id, AttMark1: intPtr(90), AttMark2: intPtr(90), AttMark3: intPtr(90)}})
	require.NoError(t, err)
	rows, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, rows[0].Result)
	assert.Equal(t, "excellent", rows[0].Result.Grade)

	_, err = f.svc.Curriculum.SaveMarks(f.ctx, u.ID, []MarkEdit{{ID: id, AttMark1: intPtr(90), AttMark2: intPtr(90)}})
	require.NoError(t, err)
	rows, err = f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, rows[0].Mark.AttMark3)
	assert.Nil(t, rows[0].Result)
}

func TestCurriculumService_ClearRemovesReadOnlyRows(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	leaver := f.student("Ivanov", "Ivan", &g)
	f.student("Petrov", "Petr", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	_, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	f.moveStudent(leaver, nil)

	n, err := f.svc.Curriculum.Clear(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Reconcile возвращает строку только текущему студенту группы
	rows, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Petrov", rows[0].Student.Surname)
}

func TestCurriculumService_ListForGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	teacher := f.teacher("Sidorov")
	first := f.unit(g, f.subject("Math"), teacher)
	second := f.unit(g, f.subject("Algebra"), teacher)

	views, err := f.svc.Curriculum.ListForGroup(f.ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, first.ID, views[0].Unit.ID)
	assert.Equal(t, second.ID, views[1].Unit.ID)
	assert.Equal(t, "Sidorov", views[0].Teacher.Surname)
	assert.Equal(t, "Algebra", views[1].Subject.Name)
}
