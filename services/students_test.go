package services

import (
	"errors"
	"testing"

	"academic-records/models"
	"academic-records/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStudent(t *testing.T) {
	group := &models.StudGroup{ID: 5, Year: 2024, Semester: 2, Num: 1, Active: true}

	tests := []struct {
		name  string
		in    models.Student
		group *models.StudGroup
		check func(t *testing.T, s models.Student)
	}{
		{
			name: "alumnus drops group and semester",
			in: models.Student{Status: models.StatusAlumnus, StudGroupID: uintPtr(5),
				Semester: intPtr(8), ExpelledYear: intPtr(2020)},
			check: func(t *testing.T, s models.Student) {
				assert.Equal(t, models.StatusAlumnus, s.Status)
				assert.Nil(t, s.StudGroupID)
				assert.Nil(t, s.Semester)
				assert.Nil(t, s.ExpelledYear)
				require.NotNil(t, s.AlumnusYear)
				assert.Equal(t, 2024, *s.AlumnusYear)
			},
		},
		{
			name: "alumnus keeps submitted year",
			in:   models.Student{Status: models.StatusAlumnus, AlumnusYear: intPtr(2019)},
			check: func(t *testing.T, s models.Student) {
				require.NotNil(t, s.AlumnusYear)
				assert.Equal(t, 2019, *s.AlumnusYear)
			},
		},
		{
			name: "expelled drops group and alumnus year",
			in: models.Student{Status: models.StatusExpelled, StudGroupID: uintPtr(5),
				Semester: intPtr(3), AlumnusYear: intPtr(2022)},
			check: func(t *testing.T, s models.Student) {
				assert.Equal(t, models.StatusExpelled, s.Status)
				assert.Nil(t, s.StudGroupID)
				assert.Nil(t, s.AlumnusYear)
				require.NotNil(t, s.ExpelledYear)
				assert.Equal(t, 2024, *s.ExpelledYear)
				require.NotNil(t, s.Semester)
				assert.Equal(t, 3, *s.Semester)
			},
		},
		{
			name: "academic leave records the leave year",
			in:   models.Student{Status: models.StatusAcademicLeave, Semester: intPtr(2)},
			check: func(t *testing.T, s models.Student) {
				assert.Equal(t, models.StatusAcademicLeave, s.Status)
				require.NotNil(t, s.ExpelledYear)
				assert.Equal(t, 2024, *s.ExpelledYear)
			},
		},
		{
			name: "group assignment takes the group semester",
			in: models.Student{Status: models.StatusStudy, StudGroupID: uintPtr(5),
				Semester: intPtr(7), AlumnusYear: intPtr(2020), ExpelledYear: intPtr(2021)},
			group: group,
			check: func(t *testing.T, s models.Student) {
				assert.Equal(t, models.StatusStudy, s.Status)
				require.NotNil(t, s.StudGroupID)
				assert.Equal(t, uint(5), *s.StudGroupID)
				require.NotNil(t, s.Semester)
				assert.Equal(t, 2, *s.Semester)
				assert.Nil(t, s.AlumnusYear)
				assert.Nil(t, s.ExpelledYear)
			},
		},
		{
			name: "study without group keeps its semester",
			in:   models.Student{Status: models.StatusStudy, Semester: intPtr(4), ExpelledYear: intPtr(2021)},
			check: func(t *testing.T, s models.Student) {
				assert.Nil(t, s.StudGroupID)
				require.NotNil(t, s.Semester)
				assert.Equal(t, 4, *s.Semester)
				assert.Nil(t, s.ExpelledYear)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.in
			NormalizeStudent(&s, tt.group, 2024)
			tt.check(t, s)
		})
	}
}

func TestNormalizeStudent_Idempotent(t *testing.T) {
	group := &models.StudGroup{ID: 5, Semester: 1}
	s := models.Student{Status: models.StatusExpelled, StudGroupID: uintPtr(5), Semester: intPtr(1)}

	NormalizeStudent(&s, group, 2024)
	once := s
	NormalizeStudent(&s, nil, 2030)
	assert.Equal(t, once, s)
}

func TestValidateStudent_SemesterRequiredUnlessAlumnus(t *testing.T) {
	fe := ValidateStudent(&models.Student{Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusStudy})
	assert.Contains(t, fe, "semester")

	fe = ValidateStudent(&models.Student{Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusAlumnus, AlumnusYear: intPtr(2020)})
	assert.True(t, fe.Empty())
}

func TestStudentService_SaveInGroup(t *testing.T) {
	f := newFixture(t)
	g := models.StudGroup{Year: 2024, Semester: 2, Num: 1, Active: true}
	require.NoError(t, f.svc.Groups.Save(f.ctx, &g))

	s := models.Student{Surname: "  Ivanov ", Firstname: "Ivan", StudGroupID: uintPtr(g.ID), Login: strPtr(" ")}
	require.NoError(t, f.svc.Students.Save(f.ctx, &s))

	stored, err := f.svc.Students.Get(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivanov", stored.Surname)
	assert.Equal(t, models.StatusStudy, stored.Status)
	assert.Nil(t, stored.Login)
	require.NotNil(t, stored.Semester)
	assert.Equal(t, 2, *stored.Semester)
}

func TestStudentService_ExpelledLeavesGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	s := f.student("Ivanov", "Ivan", &g)

	s.Status = models.StatusExpelled
	require.NoError(t, f.svc.Students.Save(f.ctx, &s))

	members, err := f.svc.Groups.Members(f.ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	stored, err := f.svc.Students.Get(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpelled, stored.Status)
	assert.Nil(t, stored.StudGroupID)
	require.NotNil(t, stored.ExpelledYear)
	assert.Equal(t, 2024, *stored.ExpelledYear)
}

func TestStudentService_MissingGroup(t *testing.T) {
	f := newFixture(t)
	s := models.Student{Surname: "Ivanov", Firstname: "Ivan", StudGroupID: uintPtr(99)}

	err := f.svc.Students.Save(f.ctx, &s)
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "stud_group_id")
}

func TestStudentService_InactiveGroup(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	member := f.student("Ivanov", "Ivan", &g)
	f.deactivate(g)

	newcomer := models.Student{Surname: "Petrov", Firstname: "Petr", StudGroupID: uintPtr(g.ID)}
	err := f.svc.Students.Save(f.ctx, &newcomer)
	assert.ErrorIs(t, err, ErrValidation)

	member.Firstname = "Ivan Jr"
	assert.NoError(t, f.svc.Students.Save(f.ctx, &member))
}

func TestStudentService_LoginUnique(t *testing.T) {
	f := newFixture(t)
	first := models.Student{Surname: "Ivanov", Firstname: "Ivan", Semester: intPtr(1), Login: strPtr("ivanov")}
	require.NoError(t, f.svc.Students.Save(f.ctx, &first))

	second := models.Student{Surname: "Petrov", Firstname: "Petr", Semester: intPtr(1), Login: strPtr("ivanov")}
	err := f.svc.Students.Save(f.ctx, &second)
	var ue *UniquenessError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "login", ue.Field)

	// повторное сохранение владельца логина не конфликт
	assert.NoError(t, f.svc.Students.Save(f.ctx, &first))
}

func TestStudentService_KeepsPasswordHash(t *testing.T) {
	f := newFixture(t)
	s := models.Student{Surname: "Ivanov", Firstname: "Ivan", Semester: intPtr(1), PasswordHash: "hash"}
	require.NoError(t, f.svc.Students.Save(f.ctx, &s))

	edit := models.Student{ID: s.ID, Surname: "Ivanov", Firstname: "Ivan", Semester: intPtr(2)}
	require.NoError(t, f.svc.Students.Save(f.ctx, &edit))

	stored, err := f.svc.Students.Get(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.Equal(t, 2, *stored.Semester)
}

func TestStudentService_NormalizeAndValidateDoesNotSave(t *testing.T) {
	f := newFixture(t)
	s := models.Student{Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusAlumnus}
	require.NoError(t, f.svc.Students.NormalizeAndValidate(f.ctx, &s))
	require.NotNil(t, s.AlumnusYear)
	assert.Equal(t, 2024, *s.AlumnusYear)

	found, err := f.svc.Students.Search(f.ctx, store.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStudentService_DeleteGuardedByMarks(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	s := f.student("Ivanov", "Ivan", &g)
	u := f.unit(g, f.subject("Math"), f.teacher("Sidorov"))
	_, err := f.svc.Curriculum.Reconcile(f.ctx, u.ID)
	require.NoError(t, err)

	err = f.svc.Students.Delete(f.ctx, s.ID)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)

	_, err = f.svc.Curriculum.Clear(f.ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, f.svc.Students.Delete(f.ctx, s.ID))

	_, err = f.svc.Students.Get(f.ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
