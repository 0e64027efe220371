package services

import (
	"errors"
	"testing"

	"academic-records/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectService(t *testing.T) {
	f := newFixture(t)
	math := f.subject("  Math ")
	assert.Equal(t, "Math", math.Name)

	dup := models.Subject{Name: "Math"}
	err := f.svc.Subjects.Save(f.ctx, &dup)
	var ue *UniquenessError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "name", ue.Field)

	err = f.svc.Subjects.Save(f.ctx, &models.Subject{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)

	g := f.group(1, 0)
	f.unit(g, math, f.teacher("Sidorov"))
	err = f.svc.Subjects.Delete(f.ctx, math.ID)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)

	physics := f.subject("Physics")
	require.NoError(t, f.svc.Subjects.Delete(f.ctx, physics.ID))

	subjects, err := f.svc.Subjects.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Math", subjects[0].Name)
}

func TestTeacherService(t *testing.T) {
	f := newFixture(t)
	first := models.Teacher{Surname: "Sidorov", Firstname: "Sidor", Login: strPtr("sidorov"), PasswordHash: "hash"}
	require.NoError(t, f.svc.Teachers.Save(f.ctx, &first))

	second := models.Teacher{Surname: "Kuznetsov", Firstname: "Kuzma", Login: strPtr("sidorov")}
	err := f.svc.Teachers.Save(f.ctx, &second)
	assert.ErrorIs(t, err, ErrUniqueness)

	edit := models.Teacher{ID: first.ID, Surname: "Sidorov", Firstname: "Sidor", Rank: "professor", Login: strPtr("sidorov")}
	require.NoError(t, f.svc.Teachers.Save(f.ctx, &edit))
	stored, err := f.svc.Teachers.Get(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.Equal(t, "professor", stored.Rank)

	g := f.group(1, 0)
	f.unit(g, f.subject("Math"), *stored)
	assert.ErrorIs(t, f.svc.Teachers.Delete(f.ctx, first.ID), ErrReferentialIntegrity)

	assert.ErrorIs(t, f.svc.Teachers.Delete(f.ctx, 999), ErrNotFound)
}

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	admin := models.AdminUser{Surname: "Root", Firstname: "Admin", Login: "root", PasswordHash: "hash"}
	require.NoError(t, f.svc.Admins.Save(f.ctx, &admin))

	err := f.svc.Admins.Save(f.ctx, &models.AdminUser{Surname: "Other", Firstname: "Admin", Login: "root"})
	assert.ErrorIs(t, err, ErrUniqueness)

	err = f.svc.Admins.Save(f.ctx, &models.AdminUser{Surname: "Other", Firstname: "Admin"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.svc.Admins.Delete(f.ctx, admin.ID))
	admins, err := f.svc.Admins.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestAccountService_Resolve(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Admins.Save(f.ctx, &models.AdminUser{Surname: "Root", Firstname: "Admin", Login: "shared", PasswordHash: "a"}))
	require.NoError(t, f.svc.Teachers.Save(f.ctx, &models.Teacher{Surname: "Sidorov", Firstname: "Sidor", Login: strPtr("shared"), PasswordHash: "t"}))
	student := models.Student{Surname: "Ivanov", Firstname: "Ivan", Semester: intPtr(1), Login: strPtr("ivanov"), PasswordHash: "s"}
	require.NoError(t, f.svc.Students.Save(f.ctx, &student))

	acc, err := f.svc.Accounts.Resolve(f.ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, acc.Role)
	assert.Equal(t, "a", acc.PasswordHash)

	acc, err = f.svc.Accounts.Resolve(f.ctx, " ivanov ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, acc.Role)
	assert.Equal(t, student.ID, acc.ID)
	assert.Equal(t, "Ivanov Ivan", acc.Name)

	_, err = f.svc.Accounts.Resolve(f.ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Accounts.Resolve(f.ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}
