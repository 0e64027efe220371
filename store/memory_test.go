package store_test

import (
	"context"
	"testing"

	"academic-records/models"
	"academic-records/store"
	"academic-records/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemory()
	})
}

func TestMemory_ReturnedRecordsAreCopies(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	login := "ivanov"
	var id uint
	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		s := models.Student{Surname: "Ivanov", Firstname: "Ivan", Status: models.StatusStudy, Login: &login}
		err := tx.SaveStudent(&s)
		id = s.ID
		return err
	}))
	login = "changed"

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		s, err := tx.GetStudent(id)
		require.NoError(t, err)
		require.NotNil(t, s.Login)
		assert.Equal(t, "ivanov", *s.Login)
		*s.Login = "mutated"
		return nil
	}))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.FindStudents(store.StudentFilter{Login: "ivanov"})
		assert.Len(t, found, 1)
		return err
	}))
}
