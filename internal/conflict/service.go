package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// Service loads the unified calendar from the store and runs detection
// over it. It reads whatever reservations and blocks currently exist; it
// does not depend on a sync having just run.
type Service struct {
	reservationRepo *storage.ReservationRepository
	blockRepo       *storage.BlockRepository
}

// NewService creates a conflict service over the given repositories.
func NewService(reservationRepo *storage.ReservationRepository, blockRepo *storage.BlockRepository) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
	}
}

// activeStatuses are the reservation statuses that participate in conflict
// detection. Cancelled and completed reservations cannot double-book.
var activeStatuses = []string{
	models.ReservationStatusConfirmed,
	models.ReservationStatusPending,
}

// CollectEvents loads reservations and blocks overlapping [start, end),
// optionally scoped to one unit, projected to timed events.
func (s *Service) CollectEvents(ctx context.Context, start, end time.Time, unitID string) ([]TimedEvent, error) {
	reservations, err := s.reservationRepo.ListWindow(ctx, start, end, unitID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("loading reservations: %w", err)
	}

	blocks, err := s.blockRepo.ListWindow(ctx, start, end, unitID)
	if err != nil {
		return nil, fmt.Errorf("loading blocks: %w", err)
	}

	events := make([]TimedEvent, 0, len(reservations)+len(blocks))
	for _, r := range reservations {
		events = append(events, TimedEvent{
			ID:     r.ID,
			UnitID: r.UnitID,
			Kind:   KindReservation,
			Label:  r.GuestName,
			Start:  r.CheckIn,
			End:    r.CheckOut,
		})
	}
	for _, b := range blocks {
		events = append(events, TimedEvent{
			ID:     b.ID,
			UnitID: b.UnitID,
			Kind:   KindBlock,
			Label:  b.BlockType,
			Start:  b.StartAt,
			End:    b.EndAt,
		})
	}

	return events, nil
}

// DetectWindow finds all conflict pairs within [start, end), optionally
// scoped to one unit.
func (s *Service) DetectWindow(ctx context.Context, start, end time.Time, unitID string) ([]ConflictPair, error) {
	events, err := s.CollectEvents(ctx, start, end, unitID)
	if err != nil {
		return nil, err
	}
	return Detect(events), nil
}
