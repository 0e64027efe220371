package services

import (
	"context"
	"testing"
	"time"

	"academic-records/models"
	"academic-records/store"

	"github.com/stretchr/testify/require"
)

// 1 октября 2024: учебный год 2024, календарный 2024
var testNow = time.Date(2024, time.October, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t   *testing.T
	ctx context.Context
	st  *store.Memory
	svc *Services
}

func newFixture(t *testing.T) *fixture {
	st := store.NewMemory()
	return &fixture{
		t:   t,
		ctx: context.Background(),
		st:  st,
		svc: New(st, func() time.Time { return testNow }),
	}
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func (f *fixture) group(num, subnum int) models.StudGroup {
	g := models.StudGroup{Year: 2024, Semester: 1, Num: num, Subnum: subnum, Active: true}
	require.NoError(f.t, f.svc.Groups.Save(f.ctx, &g))
	return g
}

// deactivate пишет напрямую в хранилище
func (f *fixture) deactivate(g models.StudGroup) {
	require.NoError(f.t, f.st.Atomic(f.ctx, func(tx store.Tx) error {
		g.Active = false
		return tx.SaveGroup(&g)
	}))
}

func (f *fixture) subject(name string) models.Subject {
	s := models.Subject{Name: name}
	require.NoError(f.t, f.svc.Subjects.Save(f.ctx, &s))
	return s
}

func (f *fixture) teacher(surname string) models.Teacher {
	tc := models.Teacher{Surname: surname, Firstname: "Petr"}
	require.NoError(f.t, f.svc.Teachers.Save(f.ctx, &tc))
	return tc
}

func (f *fixture) student(surname, firstname string, group *models.StudGroup) models.Student {
	s := models.Student{Surname: surname, Firstname: firstname, Status: models.StatusStudy}
	if group != nil {
		s.StudGroupID = uintPtr(group.ID)
	} else {
		s.Semester = intPtr(1)
	}
	require.NoError(f.t, f.svc.Students.Save(f.ctx, &s))
	return s
}

func (f *fixture) unit(g models.StudGroup, s models.Subject, tc models.Teacher) models.CurriculumUnit {
	u, err := f.svc.Curriculum.Upsert(f.ctx, CurriculumUnitInput{StudGroupID: g.ID, SubjectID: s.ID, TeacherID: tc.ID}, 0)
	require.NoError(f.t, err)
	return *u
}

// moveStudent переводит студента в другую группу через сервис
func (f *fixture) moveStudent(s models.Student, g *models.StudGroup) models.Student {
	if g == nil {
		s.StudGroupID = nil
	} else {
		s.StudGroupID = uintPtr(g.ID)
	}
	require.NoError(f.t, f.svc.Students.Save(f.ctx, &s))
	return s
}
