package database

import (
	"context"
	"testing"
	"time"

	"academic-records/models"
	"academic-records/services"
	"academic-records/store"
	"academic-records/store/storetest"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// openTestDB поднимает схему в SQLite в памяти. Одно соединение: у каждого
// соединения с ":memory:" своя база.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db, false))
	return db
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return NewStore(openTestDB(t))
	})
}

func TestStore_InactiveGroupIsReadOnly(t *testing.T) {
	svc := services.New(NewStore(openTestDB(t)), func() time.Time {
		return time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	})
	ctx := context.Background()

	g := models.StudGroup{Year: 2024, Semester: 1, Num: 5, Active: false}
	require.NoError(t, svc.Groups.Save(ctx, &g))

	stored, err := svc.Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	stored.Num = 6
	err = svc.Groups.Save(ctx, stored)
	assert.ErrorIs(t, err, services.ErrForbiddenState)

	active, err := svc.Groups.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStore_DuplicateGroupHitsUniqueIndex(t *testing.T) {
	st := NewStore(openTestDB(t))
	ctx := context.Background()

	// обходим проверку сервиса, чтобы сработал уникальный индекс
	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		return tx.SaveGroup(&models.StudGroup{Year: 2024, Semester: 1, Num: 2, Active: true})
	}))
	err := st.Atomic(ctx, func(tx store.Tx) error {
		return tx.SaveGroup(&models.StudGroup{Year: 2024, Semester: 1, Num: 2, Active: true})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSeedOnSQLite(t *testing.T) {
	st := NewStore(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, Seed(ctx, st))
	require.NoError(t, Seed(ctx, st))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
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
