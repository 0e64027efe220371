// Package storetest проверяет, что реализация store.Store ведёт себя так же,
// как остальные: фильтры, порядок выборок, уникальность и откат транзакций.
package storetest

import (
	"context"
	"errors"
	"testing"

	"academic-records/models"
	"academic-records/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run прогоняет общий набор проверок. open должен вернуть пустое хранилище.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, st store.Store)
	}{
		{"AtomicRollsBackOnError", atomicRollsBackOnError},
		{"AtomicRecoversPanic", atomicRecoversPanic},
		{"AtomicCanceledContext", atomicCanceledContext},
		{"InactiveGroupStaysInactive", inactiveGroupStaysInactive},
		{"GroupNumberIsUnique", groupNumberIsUnique},
		{"GroupFilterAndOrder", groupFilterAndOrder},
		{"SaveMissingIDIsNotFound", saveMissingIDIsNotFound},
		{"StudentLoginIsUnique", studentLoginIsUnique},
		{"StudentFilterAndOrder", studentFilterAndOrder},
		{"StudentUpdateClearsFields", studentUpdateClearsFields},
		{"SubjectsOrderedByName", subjectsOrderedByName},
		{"UnitUniquePerGroupAndSubject", unitUniquePerGroupAndSubject},
		{"MarksUniquePerUnitAndStudent", marksUniquePerUnitAndStudent},
		{"DeleteMarksByFilter", deleteMarksByFilter},
		{"DeleteMissing", deleteMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func atomically(t *testing.T, st store.Store, fn func(tx store.Tx) error) {
	t.Helper()
	require.NoError(t, st.Atomic(context.Background(), fn))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func atomicRollsBackOnError(t *testing.T, st store.Store) {
	boom := errors.New("boom")
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.SaveSubject(&models.Subject{Name: "Physics"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	atomically(t, st, func(tx store.Tx) error {
		subjects, err := tx.FindSubjects()
		assert.Empty(t, subjects)
		return err
	})
}

func atomicRecoversPanic(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		_ = tx.SaveSubject(&models.Subject{Name: "Physics"})
		panic("unexpected")
	})
	require.Error(t, err)

	atomically(t, st, func(tx store.Tx) error {
		subjects, err := tx.FindSubjects()
		assert.Empty(t, subjects)
		return err
	})
}

func atomicCanceledContext(t *testing.T, st store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := st.Atomic(ctx, func(tx store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func inactiveGroupStaysInactive(t *testing.T, st store.Store) {
	g := models.StudGroup{Year: 2024, Semester: 1, Num: 5, Active: false}
	atomically(t, st, func(tx store.Tx) error {
		return tx.SaveGroup(&g)
	})
	require.NotZero(t, g.ID)
	assert.False(t, g.Active)

	atomically(t, st, func(tx store.Tx) error {
		stored, err := tx.GetGroup(g.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)

		active, err := tx.FindGroups(store.GroupFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Empty(t, active)

		stored.Active = true
		return tx.SaveGroup(stored)
	})

	atomically(t, st, func(tx store.Tx) error {
		stored, err := tx.GetGroup(g.ID)
		require.NoError(t, err)
		assert.True(t, stored.Active)

		stored.Active = false
		return tx.SaveGroup(stored)
	})

	atomically(t, st, func(tx store.Tx) error {
		stored, err := tx.GetGroup(g.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)
		return nil
	})
}

func groupNumberIsUnique(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.SaveGroup(&models.StudGroup{Year: 2024, Semester: 1, Num: 3, Active: true}))
		require.NoError(t, tx.SaveGroup(&models.StudGroup{Year: 2024, Semester: 1, Num: 3, Subnum: 1, Active: true}))
		return tx.SaveGroup(&models.StudGroup{Year: 2024, Semester: 1, Num: 3, Active: true})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func groupFilterAndOrder(t *testing.T, st store.Store) {
	groups := []models.StudGroup{
		{Year: 2024, Semester: 2, Num: 1, Active: true},
		{Year: 2024, Semester: 1, Num: 2, Subnum: 1, Active: true},
		{Year: 2023, Semester: 2, Num: 1, Active: false},
		{Year: 2024, Semester: 1, Num: 2, Active: true},
	}
	atomically(t, st, func(tx store.Tx) error {
		for i := range groups {
			require.NoError(t, tx.SaveGroup(&groups[i]))
		}
		return nil
	})

	atomically(t, st, func(tx store.Tx) error {
		all, err := tx.FindGroups(store.GroupFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, groups[2].ID, all[0].ID)
		assert.Equal(t, groups[3].ID, all[1].ID)
		assert.Equal(t, groups[1].ID, all[2].ID)
		assert.Equal(t, groups[0].ID, all[3].ID)

		active, err := tx.FindGroups(store.GroupFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, active, 3)

		n, err := tx.CountGroups(store.GroupFilter{Year: intPtr(2024), Semester: intPtr(1), Num: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = tx.CountGroups(store.GroupFilter{
			Year: intPtr(2024), Semester: intPtr(1), Num: intPtr(2), Subnum: intPtr(0), ExcludeID: groups[3].ID,
		})
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	})
}

func saveMissingIDIsNotFound(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.SaveStudent(&models.Student{ID: 42, Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusStudy})
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = st.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.SaveGroup(&models.StudGroup{ID: 42, Year: 2024, Semester: 1, Num: 1})
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	atomically(t, st, func(tx store.Tx) error {
		n, err := tx.CountStudents(store.StudentFilter{})
		assert.Zero(t, n)
		return err
	})
}

func studentLoginIsUnique(t *testing.T, st store.Store) {
	atomically(t, st, func(tx store.Tx) error {
		// без логина можно сколько угодно
		require.NoError(t, tx.SaveStudent(&models.Student{Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusStudy}))
		return tx.SaveStudent(&models.Student{Surname: "Petrov", Firstname: "Petr", Status: models.StatusStudy})
	})

	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.SaveStudent(&models.Student{
			Surname: "Sidorov", Firstname: "Sidor", Status: models.StatusStudy, Login: strPtr("sidorov"),
		}))
		return tx.SaveStudent(&models.Student{
			Surname: "Sidorova", Firstname: "Anna", Status: models.StatusStudy, Login: strPtr("sidorov"),
		})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func studentFilterAndOrder(t *testing.T, st store.Store) {
	atomically(t, st, func(tx store.Tx) error {
		g := models.StudGroup{Year: 2024, Semester: 1, Num: 7, Active: true}
		require.NoError(t, tx.SaveGroup(&g))
		for _, s := range []models.Student{
			{Surname: "Petrov", Firstname: "Petr", StudGroupID: &g.ID},
			{Surname: "Ivanova", Firstname: "Anna", StudGroupID: &g.ID, Login: strPtr("ivanova")},
			{Surname: "Ivanov", Firstname: "Ivan", StudGroupID: &g.ID},
			{Surname: "Ivanov", Firstname: "Boris", Middlename: "Petrovich"},
			{Surname: "Ivanov", Firstname: "Boris", Middlename: "Andreevich", Status: models.StatusExpelled, ExpelledYear: intPtr(2023)},
		} {
			s := s
			if s.Status == "" {
				s.Status = models.StatusStudy
			}
			require.NoError(t, tx.SaveStudent(&s))
		}

		inGroup, err := tx.FindStudents(store.StudentFilter{StudGroupID: g.ID})
		require.NoError(t, err)
		require.Len(t, inGroup, 3)
		assert.Equal(t, "Ivanov", inGroup[0].Surname)
		assert.Equal(t, "Ivanova", inGroup[1].Surname)
		assert.Equal(t, "Petrov", inGroup[2].Surname)

		byPrefix, err := tx.FindStudents(store.StudentFilter{SurnamePrefix: "Ivanov"})
		require.NoError(t, err)
		require.Len(t, byPrefix, 4)
		assert.Equal(t, "Andreevich", byPrefix[0].Middlename)
		assert.Equal(t, "Petrovich", byPrefix[1].Middlename)
		assert.Equal(t, "Ivan", byPrefix[2].Firstname)

		n, err := tx.CountStudents(store.StudentFilter{SurnamePrefix: "Iv", Firstname: "Ivan"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		expelled, err := tx.FindStudents(store.StudentFilter{Status: models.StatusExpelled, ExpelledYear: intPtr(2023)})
		require.NoError(t, err)
		require.Len(t, expelled, 1)
		assert.Equal(t, "Andreevich", expelled[0].Middlename)

		byLogin, err := tx.FindStudents(store.StudentFilter{Login: "ivanova"})
		require.NoError(t, err)
		require.Len(t, byLogin, 1)
		assert.Equal(t, "Anna", byLogin[0].Firstname)
		return nil
	})
}

func studentUpdateClearsFields(t *testing.T, st store.Store) {
	s := models.Student{
		Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusStudy,
		Semester: intPtr(3), Login: strPtr("ivanov"),
	}
	atomically(t, st, func(tx store.Tx) error {
		return tx.SaveStudent(&s)
	})

	s.Status = models.StatusAlumnus
	s.Semester = nil
	s.Login = nil
	s.AlumnusYear = intPtr(2024)
	atomically(t, st, func(tx store.Tx) error {
		return tx.SaveStudent(&s)
	})

	atomically(t, st, func(tx store.Tx) error {
		stored, err := tx.GetStudent(s.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAlumnus, stored.Status)
		assert.Nil(t, stored.Semester)
		assert.Nil(t, stored.Login)
		require.NotNil(t, stored.AlumnusYear)
		assert.Equal(t, 2024, *stored.AlumnusYear)
		return nil
	})
}

func subjectsOrderedByName(t *testing.T, st store.Store) {
	atomically(t, st, func(tx store.Tx) error {
		for _, name := range []string{"Physics", "Algebra", "Geometry"} {
			require.NoError(t, tx.SaveSubject(&models.Subject{Name: name}))
		}
		subjects, err := tx.FindSubjects()
		require.NoError(t, err)
		require.Len(t, subjects, 3)
		assert.Equal(t, "Algebra", subjects[0].Name)
		assert.Equal(t, "Geometry", subjects[1].Name)
		assert.Equal(t, "Physics", subjects[2].Name)
		return nil
	})
}

func unitUniquePerGroupAndSubject(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.SaveUnit(&models.CurriculumUnit{StudGroupID: 1, SubjectID: 1, TeacherID: 1}))
		require.NoError(t, tx.SaveUnit(&models.CurriculumUnit{StudGroupID: 1, SubjectID: 2, TeacherID: 1}))
		require.NoError(t, tx.SaveUnit(&models.CurriculumUnit{StudGroupID: 2, SubjectID: 1, TeacherID: 1}))

		n, err := tx.CountUnits(store.UnitFilter{SubjectID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		return tx.SaveUnit(&models.CurriculumUnit{StudGroupID: 1, SubjectID: 1, TeacherID: 2})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func marksUniquePerUnitAndStudent(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.CreateMarks([]models.AttMark{
			{CurriculumUnitID: 1, StudentID: 10},
			{CurriculumUnitID: 1, StudentID: 11},
			{CurriculumUnitID: 2, StudentID: 10},
		}))
		return tx.CreateMarks([]models.AttMark{{CurriculumUnitID: 1, StudentID: 10}})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func deleteMarksByFilter(t *testing.T, st store.Store) {
	atomically(t, st, func(tx store.Tx) error {
		require.NoError(t, tx.CreateMarks([]models.AttMark{
			{CurriculumUnitID: 1, StudentID: 10},
			{CurriculumUnitID: 1, StudentID: 11},
			{CurriculumUnitID: 2, StudentID: 10},
		}))

		n, err := tx.DeleteMarks(store.MarkFilter{CurriculumUnitID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := tx.FindMarks(store.MarkFilter{})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, uint(2), left[0].CurriculumUnitID)

		m := left[0]
		m.AttMark1 = intPtr(40)
		require.NoError(t, tx.SaveMark(&m))
		byStudent, err := tx.FindMarks(store.MarkFilter{StudentID: 10})
		require.NoError(t, err)
		require.Len(t, byStudent, 1)
		require.NotNil(t, byStudent[0].AttMark1)
		assert.Equal(t, 40, *byStudent[0].AttMark1)
		return nil
	})
}

func deleteMissing(t *testing.T, st store.Store) {
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.DeleteUnit(1)
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = st.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.DeleteGroup(1)
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
