package conflict

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

func newTestStore(t *testing.T) (*storage.ReservationRepository, *storage.BlockRepository, string) {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db, zap.NewNop()))

	ctx := context.Background()
	propertyRepo := storage.NewPropertyRepository(db)

	property := &models.Property{Name: "Seaside Cottage"}
	require.NoError(t, propertyRepo.Create(ctx, property))

	unit := &models.Unit{PropertyID: property.ID, Name: "Seaside Cottage", IsPrimary: true}
	require.NoError(t, propertyRepo.CreateUnit(ctx, unit))

	return storage.NewReservationRepository(db), storage.NewBlockRepository(db), unit.ID
}

func seedReservation(t *testing.T, repo *storage.ReservationRepository, unitID, guest, status string, checkIn, checkOut time.Time) *models.Reservation {
	t.Helper()

	res := &models.Reservation{
		UnitID:    unitID,
		Channel:   models.ChannelDirect,
		GuestName: guest,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Status:    status,
	}
	require.NoError(t, repo.Create(context.Background(), res))
	return res
}

func TestDetectWindow_CancelledReservationsExcluded(t *testing.T) {
	reservationRepo, blockRepo, unitID := newTestStore(t)
	service := NewService(reservationRepo, blockRepo)

	seedReservation(t, reservationRepo, unitID, "Alice", models.ReservationStatusConfirmed, day(1), day(5))
	seedReservation(t, reservationRepo, unitID, "Bob", models.ReservationStatusCancelled, day(2), day(6))

	pairs, err := service.DetectWindow(context.Background(), day(1), day(30), "")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDetectWindow_PendingParticipates(t *testing.T) {
	reservationRepo, blockRepo, unitID := newTestStore(t)
	service := NewService(reservationRepo, blockRepo)

	seedReservation(t, reservationRepo, unitID, "Alice", models.ReservationStatusConfirmed, day(1), day(5))
	seedReservation(t, reservationRepo, unitID, "Bob", models.ReservationStatusPending, day(4), day(8))

	pairs, err := service.DetectWindow(context.Background(), day(1), day(30), "")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].OverlapStart.Equal(day(4)))
	assert.True(t, pairs[0].OverlapEnd.Equal(day(5)))
}

func TestDetectWindow_BlockConflictsWithReservation(t *testing.T) {
	reservationRepo, blockRepo, unitID := newTestStore(t)
	service := NewService(reservationRepo, blockRepo)

	seedReservation(t, reservationRepo, unitID, "Alice", models.ReservationStatusConfirmed, day(10), day(14))
	require.NoError(t, blockRepo.Create(context.Background(), &models.AvailabilityBlock{
		UnitID:    unitID,
		BlockType: models.BlockTypeMaintenance,
		StartAt:   day(12),
		EndAt:     day(16),
	}))

	pairs, err := service.DetectWindow(context.Background(), day(1), day(30), "")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, KindReservation, pairs[0].First.Kind)
	assert.Equal(t, KindBlock, pairs[0].Second.Kind)
}

func TestDetectWindow_UnitScope(t *testing.T) {
	reservationRepo, blockRepo, unitID := newTestStore(t)
	service := NewService(reservationRepo, blockRepo)

	seedReservation(t, reservationRepo, unitID, "Alice", models.ReservationStatusConfirmed, day(1), day(5))
	seedReservation(t, reservationRepo, unitID, "Bob", models.ReservationStatusConfirmed, day(3), day(7))

	pairs, err := service.DetectWindow(context.Background(), day(1), day(30), unitID)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)

	pairs, err = service.DetectWindow(context.Background(), day(1), day(30), "some-other-unit")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
