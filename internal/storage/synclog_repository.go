package storage

import (
	"context"
	"fmt"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// SyncLogRepository provides append-only access to sync run records.
type SyncLogRepository struct {
	BaseRepository
}

// NewSyncLogRepository creates a new sync log repository.
func NewSyncLogRepository(db *DB) *SyncLogRepository {
	return &SyncLogRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Append inserts a new sync log entry. Entries are never updated or deleted.
func (r *SyncLogRepository) Append(ctx context.Context, l *models.SyncLog) error {
	l.ID = GenerateID()
	l.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO sync_logs (
			id, connection_id, status, events_found, events_created,
			events_updated, events_skipped, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID, l.ConnectionID, l.Status, l.EventsFound, l.EventsCreated,
		l.EventsUpdated, l.EventsSkipped, l.Error, l.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting sync log: %w", err)
	}

	return nil
}

// ListByConnection retrieves the most recent sync logs for a connection,
// newest first.
func (r *SyncLogRepository) ListByConnection(ctx context.Context, connectionID string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, connection_id, status, events_found, events_created,
		       events_updated, events_skipped, error, created_at
		FROM sync_logs
		WHERE connection_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, connectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var logs []models.SyncLog
	for rows.Next() {
		var l models.SyncLog
		if err := rows.Scan(
			&l.ID, &l.ConnectionID, &l.Status, &l.EventsFound, &l.EventsCreated,
			&l.EventsUpdated, &l.EventsSkipped, &l.Error, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
