package services

import (
	"errors"
	"testing"
	"time"

	"academic-records/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService_NewGroupDefaults(t *testing.T) {
	f := newFixture(t)
	g := f.svc.Groups.NewGroup()
	assert.Equal(t, 2024, g.Year)
	assert.Equal(t, 1, g.Semester)
	assert.Equal(t, 0, g.Subnum)
	assert.True(t, g.Active)

	// до июля учебный год равен прошлому календарному
	spring := New(f.st, func() time.Time { return time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC) })
	assert.Equal(t, 2024, spring.Groups.NewGroup().Year)
}

func TestGroupService_NumberUnique(t *testing.T) {
	f := newFixture(t)
	f.group(3, 0)
	f.group(3, 1)

	dup := models.StudGroup{Year: 2024, Semester: 1, Num: 3, Subnum: 1, Active: true}
	err := f.svc.Groups.Save(f.ctx, &dup)
	var ue *UniquenessError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "subnum", ue.Field)

	other := models.StudGroup{Year: 2024, Semester: 2, Num: 3, Subnum: 1, Active: true}
	assert.NoError(t, f.svc.Groups.Save(f.ctx, &other))
}

func TestGroupService_Validation(t *testing.T) {
	f := newFixture(t)
	g := models.StudGroup{Year: 1990, Semester: 3, Num: 0, Active: true}
	err := f.svc.Groups.Save(f.ctx, &g)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "year")
	assert.Contains(t, ve.Fields, "semester")
	assert.Contains(t, ve.Fields, "num")
}

func TestGroupService_InactiveIsReadOnly(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	f.deactivate(g)

	g.Num = 2
	g.Active = true
	err := f.svc.Groups.Save(f.ctx, &g)
	assert.ErrorIs(t, err, ErrForbiddenState)

	err = f.svc.Groups.Delete(f.ctx, g.ID)
	assert.ErrorIs(t, err, ErrForbiddenState)

	active, err := f.svc.Groups.ListActive(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGroupService_DeleteGuard(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	s := f.student("Ivanov", "Ivan", &g)
	f.unit(g, f.subject("Math"), f.teacher("Sidorov"))

	err := f.svc.Groups.Delete(f.ctx, g.ID)
	var re *ReferentialIntegrityError
	require.True(t, errors.As(err, &re))
	assert.Len(t, re.Messages, 2)

	f.moveStudent(s, nil)
	err = f.svc.Groups.Delete(f.ctx, g.ID)
	require.True(t, errors.As(err, &re))
	assert.Len(t, re.Messages, 1)
}

func TestGroupService_DeleteEmpty(t *testing.T) {
	f := newFixture(t)
	g := f.group(1, 0)
	require.NoError(t, f.svc.Groups.Delete(f.ctx, g.ID))

	_, err := f.svc.Groups.Get(f.ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroupService_ListActiveOrder(t *testing.T) {
	f := newFixture(t)
	f.group(2, 0)
	f.group(1, 1)
	f.group(1, 0)

	groups, err := f.svc.Groups.ListActive(f.ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "1", groups[0].Name())
	assert.Equal(t, "1.1", groups[1].Name())
	assert.Equal(t, "2", groups[2].Name())
}
