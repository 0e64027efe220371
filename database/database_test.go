package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"academic-records/store"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), store.ErrDuplicate)

	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	assert.ErrorIs(t, translate(unique), store.ErrDuplicate)

	fk := &pq.Error{Code: "23503"}
	assert.Equal(t, error(fk), translate(fk))

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormLogger.Silent, parseLogLevel("silent"))
	assert.Equal(t, gormLogger.Info, parseLogLevel("INFO"))
	assert.Equal(t, gormLogger.Error, parseLogLevel("error"))
	assert.Equal(t, gormLogger.Warn, parseLogLevel(""))
}

func TestSeedIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, Seed(ctx, st))
	require.NoError(t, Seed(ctx, st))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		admins, err := tx.FindAdmins(store.AdminFilter{})
		require.NoError(t, err)
		assert.Len(t, admins, 1)

		students, err := tx.FindStudents(store.StudentFilter{Login: "student"})
		require.NoError(t, err)
		require.Len(t, students, 1)
		require.NotNil(t, students[0].StudGroupID)

		units, err := tx.FindUnits(store.UnitFilter{StudGroupID: *students[0].StudGroupID})
		require.NoError(t, err)
		assert.Len(t, units, 2)
		return nil
	}))
}
