package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&domain.Item{}, &domain.Shoot{}, &domain.Reservation{}))
	return db
}

var base = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

func TestReservationRepository_WithItemLocks_CommitsAndRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db, 3)
	ctx := context.Background()

	item := &domain.Item{Name: "FX3", Category: domain.CategoryCamera, TotalStock: 2}
	require.NoError(t, db.Create(item).Error)

	err := repo.WithItemLocks(ctx, []int64{item.ID}, func(tx ReservationTx) error {
		return tx.CreateReservation(ctx, &domain.Reservation{
			ItemID: item.ID, ShootID: 1, Quantity: 1, StartTime: base, EndTime: base.Add(time.Hour),
		})
	})
	require.NoError(t, err)

	boom := errors.New("availability check failed")
	err = repo.WithItemLocks(ctx, []int64{item.ID}, func(tx ReservationTx) error {
		if err := tx.CreateReservation(ctx, &domain.Reservation{
			ItemID: item.ID, ShootID: 1, Quantity: 1, StartTime: base, EndTime: base.Add(time.Hour),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := repo.ReservationsForItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "failed unit of work leaves the store unchanged")
}

func TestReservationRepository_StoresUTC(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db, 3)
	ctx := context.Background()

	local := time.FixedZone("UTC+5", 5*3600)
	r := &domain.Reservation{ItemID: 1, ShootID: 1, Quantity: 1,
		StartTime: base.In(local), EndTime: base.Add(time.Hour).In(local)}
	require.NoError(t, db.Create(r).Error)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(base))
}

func TestReservationRepository_DeleteEndedBy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db, 3)
	ctx := context.Background()

	for _, end := range []time.Time{base.Add(-time.Hour), base, base.Add(time.Hour)} {
		require.NoError(t, db.Create(&domain.Reservation{
			ItemID: 1, ShootID: 1, Quantity: 1, StartTime: end.Add(-2 * time.Hour), EndTime: end,
		}).Error)
	}

	removed, err := repo.DeleteEndedBy(ctx, base)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	left, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].EndTime.Equal(base.Add(time.Hour)))
}

func TestReservationTx_DeleteItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReservationRepository(db, 3)
	ctx := context.Background()

	item := &domain.Item{Name: "C-stand", Category: domain.CategoryOther, TotalStock: 5}
	require.NoError(t, db.Create(item).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&domain.Reservation{
			ItemID: item.ID, ShootID: int64(i + 1), Quantity: 1, StartTime: base, EndTime: base.Add(time.Hour),
		}).Error)
	}

	var n int64
	err := repo.WithItemLocks(ctx, []int64{item.ID}, func(tx ReservationTx) error {
		var err error
		n, err = tx.DeleteItem(ctx, item.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	err = repo.WithItemLocks(ctx, []int64{item.ID}, func(tx ReservationTx) error {
		_, err := tx.DeleteItem(ctx, item.ID)
		return err
	})
	assert.True(t, IsNotFound(err))
}

func TestShootRepository_DeleteWithReservations(t *testing.T) {
	db := setupTestDB(t)
	shoots := NewShootRepository(db)
	ctx := context.Background()

	sh := &domain.Shoot{Name: "Promo", StartTime: base, EndTime: base.Add(8 * time.Hour)}
	require.NoError(t, shoots.Create(ctx, sh))
	require.NoError(t, db.Create(&domain.Reservation{ItemID: 1, ShootID: sh.ID, Quantity: 2, StartTime: sh.StartTime, EndTime: sh.EndTime}).Error)
	require.NoError(t, db.Create(&domain.Reservation{ItemID: 1, ShootID: sh.ID + 1, Quantity: 1, StartTime: sh.StartTime, EndTime: sh.EndTime}).Error)

	removed, err := shoots.DeleteWithReservations(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, 2, removed[0].Quantity)

	_, err = shoots.GetByID(ctx, sh.ID)
	assert.True(t, IsNotFound(err))

	_, err = shoots.DeleteWithReservations(ctx, sh.ID)
	assert.True(t, IsNotFound(err))
}

func TestItemRepository_ListByIDs(t *testing.T) {
	db := setupTestDB(t)
	items := NewItemRepository(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, items.Create(ctx, &domain.Item{Name: name, Category: domain.CategoryCable, TotalStock: 1}))
	}

	got, err := items.ListByIDs(ctx, []int64{3, 1, 99})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	got, err = items.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
