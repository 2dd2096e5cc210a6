package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// Configuration errors reported before any fetch is attempted.
var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNoFeedConfigured   = errors.New("connection has no feed URL configured")
	ErrNoCalendarRead     = errors.New("connection does not allow calendar reads")
	ErrNoUnit             = errors.New("property has no unit to sync into")
)

// Reconciler merges a channel connection's feed into the local reservation
// set: create-if-absent, update-if-changed, leave-untouched-if-identical.
//
// Persistence-error policy: the run aborts on the first store failure, with
// the partial counts and the error recorded in both the run result and the
// sync log. The reconciler never deletes reservations; channel feeds do not
// reliably signal cancellations, so stale channel-sourced entries remain.
type Reconciler struct {
	connectionRepo  *storage.ConnectionRepository
	propertyRepo    *storage.PropertyRepository
	reservationRepo *storage.ReservationRepository
	syncLogRepo     *storage.SyncLogRepository
	fetcher         *Fetcher
	logger          *zap.Logger
}

// NewReconciler creates a reconciler over the given repositories.
func NewReconciler(
	connectionRepo *storage.ConnectionRepository,
	propertyRepo *storage.PropertyRepository,
	reservationRepo *storage.ReservationRepository,
	syncLogRepo *storage.SyncLogRepository,
	fetcher *Fetcher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		connectionRepo:  connectionRepo,
		propertyRepo:    propertyRepo,
		reservationRepo: reservationRepo,
		syncLogRepo:     syncLogRepo,
		fetcher:         fetcher,
		logger:          logger,
	}
}

// Reconcile runs one sync pass for a single connection. The returned result
// is always non-nil; err is non-nil whenever the run did not complete.
func (r *Reconciler) Reconcile(ctx context.Context, connectionID string) (*models.SyncRunResult, error) {
	conn, err := r.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		return &models.SyncRunResult{
			ConnectionID: connectionID,
			Error:        err.Error(),
			SyncedAt:     time.Now().UTC(),
		}, err
	}
	if conn == nil {
		err := fmt.Errorf("%w: %s", ErrConnectionNotFound, connectionID)
		return &models.SyncRunResult{
			ConnectionID: connectionID,
			Error:        err.Error(),
			SyncedAt:     time.Now().UTC(),
		}, err
	}

	result := &models.SyncRunResult{
		ConnectionID: conn.ID,
		Channel:      conn.Channel,
		PropertyID:   conn.PropertyID,
		SyncedAt:     time.Now().UTC(),
	}

	if conn.FeedURL == "" {
		return result, r.fail(ctx, conn, result, ErrNoFeedConfigured)
	}
	if !conn.Capabilities.CalendarRead {
		return result, r.fail(ctx, conn, result, ErrNoCalendarRead)
	}

	unit, err := r.propertyRepo.PrimaryUnit(ctx, conn.PropertyID)
	if err != nil {
		return result, r.fail(ctx, conn, result, fmt.Errorf("resolving unit: %w", err))
	}
	if unit == nil {
		return result, r.fail(ctx, conn, result, ErrNoUnit)
	}

	events, err := r.fetcher.FetchAndParse(ctx, conn.FeedURL)
	if err != nil {
		return result, r.fail(ctx, conn, result, err)
	}

	result.EventsFound = len(events)

	for _, event := range events {
		outcome, err := r.applyEvent(ctx, conn.Channel, unit.ID, event)
		if err != nil {
			// Abort-on-persistence-error policy; partial counts stand.
			return result, r.fail(ctx, conn, result, err)
		}
		switch outcome {
		case applyCreated:
			result.EventsCreated++
		case applyUpdated:
			result.EventsUpdated++
		case applySkipped:
			result.EventsSkipped++
		}
	}

	now := time.Now().UTC()
	if err := r.syncLogRepo.Append(ctx, &models.SyncLog{
		ConnectionID:  conn.ID,
		Status:        models.SyncStatusSuccess,
		EventsFound:   result.EventsFound,
		EventsCreated: result.EventsCreated,
		EventsUpdated: result.EventsUpdated,
		EventsSkipped: result.EventsSkipped,
	}); err != nil {
		r.logger.Warn("appending sync log failed",
			zap.String("connection_id", conn.ID), zap.Error(err))
	}
	if err := r.connectionRepo.RecordSyncSuccess(ctx, conn.ID, now); err != nil {
		r.logger.Warn("recording sync success failed",
			zap.String("connection_id", conn.ID), zap.Error(err))
	}

	result.Success = true
	r.logger.Info("sync run completed",
		zap.String("connection_id", conn.ID),
		zap.String("channel", string(conn.Channel)),
		zap.Int("found", result.EventsFound),
		zap.Int("created", result.EventsCreated),
		zap.Int("updated", result.EventsUpdated),
		zap.Int("skipped", result.EventsSkipped),
	)

	return result, nil
}

type applyOutcome int

const (
	applyNoop applyOutcome = iota
	applyCreated
	applyUpdated
	applySkipped
)

// applyEvent merges one canonical event into the reservation set.
func (r *Reconciler) applyEvent(ctx context.Context, channel models.Channel, unitID string, event CanonicalEvent) (applyOutcome, error) {
	// Malformed feed entries with inverted or empty intervals never reach
	// the store.
	if !event.Start.Before(event.End) {
		return applySkipped, nil
	}

	guestName := event.Summary
	if guestName == "" {
		guestName = "Guest"
	}

	externalID := models.ExternalReservationID(channel, event.UID)

	existing, err := r.reservationRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return applyNoop, fmt.Errorf("looking up reservation %s: %w", externalID, err)
	}

	if existing == nil {
		res := &models.Reservation{
			UnitID:     unitID,
			Channel:    channel,
			GuestName:  guestName,
			CheckIn:    event.Start,
			CheckOut:   event.End,
			Status:     models.ReservationStatusConfirmed,
			ExternalID: &externalID,
		}
		if err := r.reservationRepo.Create(ctx, res); err != nil {
			return applyNoop, fmt.Errorf("creating reservation %s: %w", externalID, err)
		}
		return applyCreated, nil
	}

	// Only dates and guest name are channel-authoritative. Status and total
	// may have been advanced locally and are left alone.
	if existing.CheckIn.Equal(event.Start) && existing.CheckOut.Equal(event.End) && existing.GuestName == guestName {
		return applyNoop, nil
	}

	if err := r.reservationRepo.UpdateStayDetails(ctx, existing.ID, event.Start, event.End, guestName); err != nil {
		return applyNoop, fmt.Errorf("updating reservation %s: %w", externalID, err)
	}

	return applyUpdated, nil
}

// fail records a failed run in the sync log and on the connection, then
// returns runErr. The connection's last-sync timestamp is not advanced, so
// "never synced" stays distinguishable from "synced once, now failing".
func (r *Reconciler) fail(ctx context.Context, conn *models.ChannelConnection, result *models.SyncRunResult, runErr error) error {
	result.Error = runErr.Error()

	errText := runErr.Error()
	if err := r.syncLogRepo.Append(ctx, &models.SyncLog{
		ConnectionID:  conn.ID,
		Status:        models.SyncStatusFailure,
		EventsFound:   result.EventsFound,
		EventsCreated: result.EventsCreated,
		EventsUpdated: result.EventsUpdated,
		EventsSkipped: result.EventsSkipped,
		Error:         &errText,
	}); err != nil {
		r.logger.Warn("appending sync log failed",
			zap.String("connection_id", conn.ID), zap.Error(err))
	}
	if err := r.connectionRepo.RecordSyncFailure(ctx, conn.ID, errText); err != nil {
		r.logger.Warn("recording sync failure failed",
			zap.String("connection_id", conn.ID), zap.Error(err))
	}

	r.logger.Warn("sync run failed",
		zap.String("connection_id", conn.ID),
		zap.String("channel", string(conn.Channel)),
		zap.Error(runErr),
	)

	return runErr
}
