package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

func newTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db, zap.NewNop()))

	ctx := context.Background()
	propertyRepo := NewPropertyRepository(db)

	property := &models.Property{Name: "Hillside Loft"}
	require.NoError(t, propertyRepo.Create(ctx, property))

	unit := &models.Unit{PropertyID: property.ID, Name: "Hillside Loft", IsPrimary: true}
	require.NoError(t, propertyRepo.CreateUnit(ctx, unit))

	return db, unit.ID
}

func stay(unitID, guest string, checkIn, checkOut time.Time) *models.Reservation {
	return &models.Reservation{
		UnitID:    unitID,
		Channel:   models.ChannelDirect,
		GuestName: guest,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Status:    models.ReservationStatusConfirmed,
	}
}

func april(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationCreate_RejectsEmptyInterval(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)

	err := repo.Create(context.Background(), stay(unitID, "Alice", april(5), april(5)))
	assert.Error(t, err)

	err = repo.Create(context.Background(), stay(unitID, "Alice", april(5), april(3)))
	assert.Error(t, err)
}

func TestReservationCreate_ExternalIDIsUnique(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	externalID := models.ExternalReservationID(models.ChannelAirbnb, "uid-1")

	first := stay(unitID, "Alice", april(1), april(3))
	first.Channel = models.ChannelAirbnb
	first.ExternalID = &externalID
	require.NoError(t, repo.Create(ctx, first))

	second := stay(unitID, "Alice", april(10), april(12))
	second.Channel = models.ChannelAirbnb
	second.ExternalID = &externalID
	assert.Error(t, repo.Create(ctx, second))
}

func TestReservationGetByExternalID_Unknown(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewReservationRepository(db)

	res, err := repo.GetByExternalID(context.Background(), "airbnb-missing")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestReservationListWindow_HalfOpenBounds(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, stay(unitID, "Before", april(1), april(5))))
	require.NoError(t, repo.Create(ctx, stay(unitID, "Inside", april(6), april(8))))
	require.NoError(t, repo.Create(ctx, stay(unitID, "EndsAtWindowStart", april(2), april(6))))

	// A stay ending exactly at the window start does not intersect it.
	results, err := repo.ListWindow(ctx, april(6), april(20), unitID, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Inside", results[0].GuestName)
}

func TestReservationListWindow_StatusFilter(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	confirmed := stay(unitID, "Alice", april(1), april(5))
	require.NoError(t, repo.Create(ctx, confirmed))

	cancelled := stay(unitID, "Bob", april(2), april(6))
	cancelled.Status = models.ReservationStatusCancelled
	require.NoError(t, repo.Create(ctx, cancelled))

	results, err := repo.ListWindow(ctx, april(1), april(30), unitID,
		[]string{models.ReservationStatusConfirmed, models.ReservationStatusPending})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].GuestName)
}

func TestReservationUpdateStayDetails_LeavesStatusAndTotal(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	total := 420.50
	res := stay(unitID, "Alice", april(1), april(5))
	res.TotalAmount = &total
	require.NoError(t, repo.Create(ctx, res))
	require.NoError(t, repo.UpdateStatus(ctx, res.ID, models.ReservationStatusCompleted))

	require.NoError(t, repo.UpdateStayDetails(ctx, res.ID, april(1), april(7), "Alice B."))

	after, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "Alice B.", after.GuestName)
	assert.Equal(t, 7, after.CheckOut.Day())
	assert.Equal(t, models.ReservationStatusCompleted, after.Status)
	require.NotNil(t, after.TotalAmount)
	assert.Equal(t, total, *after.TotalAmount)
}

func TestReservationDelete(t *testing.T) {
	db, unitID := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := stay(unitID, "Alice", april(1), april(5))
	require.NoError(t, repo.Create(ctx, res))
	require.NoError(t, repo.Delete(ctx, res.ID))

	got, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Delete(ctx, res.ID))
}
