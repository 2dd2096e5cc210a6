package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// ConnectionRepository provides data access for channel connections.
type ConnectionRepository struct {
	BaseRepository
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(db *DB) *ConnectionRepository {
	return &ConnectionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const connectionColumns = `
	id, property_id, channel, feed_url, external_listing_id,
	cap_calendar_read, cap_calendar_write, cap_messaging, cap_pricing, cap_payouts,
	last_sync_at, last_sync_error, created_at, updated_at
`

func scanConnection(row interface{ Scan(...any) error }) (*models.ChannelConnection, error) {
	c := &models.ChannelConnection{}
	var feedURL sql.NullString

	err := row.Scan(
		&c.ID, &c.PropertyID, &c.Channel, &feedURL, &c.ExternalListingID,
		&c.Capabilities.CalendarRead, &c.Capabilities.CalendarWrite,
		&c.Capabilities.Messaging, &c.Capabilities.Pricing, &c.Capabilities.Payouts,
		&c.LastSyncAt, &c.LastSyncError, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.FeedURL = feedURL.String
	return c, nil
}

// Create inserts a new channel connection.
func (r *ConnectionRepository) Create(ctx context.Context, c *models.ChannelConnection) error {
	c.ID = GenerateID()
	c.CreatedAt = r.Now()
	c.UpdatedAt = r.Now()

	var feedURL *string
	if c.FeedURL != "" {
		feedURL = &c.FeedURL
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO channel_connections (
			id, property_id, channel, feed_url, external_listing_id,
			cap_calendar_read, cap_calendar_write, cap_messaging, cap_pricing, cap_payouts,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.PropertyID, c.Channel, feedURL, c.ExternalListingID,
		c.Capabilities.CalendarRead, c.Capabilities.CalendarWrite,
		c.Capabilities.Messaging, c.Capabilities.Pricing, c.Capabilities.Payouts,
		c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting connection: %w", err)
	}

	return nil
}

// GetByID retrieves a connection by its ID.
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.ChannelConnection, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM channel_connections WHERE id = ?`, id)

	c, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying connection: %w", err)
	}

	return c, nil
}

// List retrieves all connections, optionally scoped to one property.
func (r *ConnectionRepository) List(ctx context.Context, propertyID string) ([]models.ChannelConnection, error) {
	query := `SELECT ` + connectionColumns + ` FROM channel_connections`
	args := []any{}
	if propertyID != "" {
		query += ` WHERE property_id = ?`
		args = append(args, propertyID)
	}
	query += ` ORDER BY property_id, channel`

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying connections: %w", err)
	}
	defer rows.Close()

	var connections []models.ChannelConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		connections = append(connections, *c)
	}

	return connections, rows.Err()
}

// ListSyncable retrieves all connections across all properties that have a
// feed URL configured. These are the batch candidates for the scheduler.
func (r *ConnectionRepository) ListSyncable(ctx context.Context) ([]models.ChannelConnection, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+connectionColumns+`
		FROM channel_connections
		WHERE feed_url IS NOT NULL AND feed_url != ''
		ORDER BY last_sync_at ASC NULLS FIRST
	`)
	if err != nil {
		return nil, fmt.Errorf("querying syncable connections: %w", err)
	}
	defer rows.Close()

	var connections []models.ChannelConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		connections = append(connections, *c)
	}

	return connections, rows.Err()
}

// Update updates a connection's configuration (URL, listing id, capabilities).
// Sync metadata is updated separately by RecordSyncSuccess/RecordSyncFailure.
func (r *ConnectionRepository) Update(ctx context.Context, c *models.ChannelConnection) error {
	c.UpdatedAt = r.Now()

	var feedURL *string
	if c.FeedURL != "" {
		feedURL = &c.FeedURL
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE channel_connections SET
			feed_url = ?, external_listing_id = ?,
			cap_calendar_read = ?, cap_calendar_write = ?, cap_messaging = ?,
			cap_pricing = ?, cap_payouts = ?, updated_at = ?
		WHERE id = ?
	`,
		feedURL, c.ExternalListingID,
		c.Capabilities.CalendarRead, c.Capabilities.CalendarWrite, c.Capabilities.Messaging,
		c.Capabilities.Pricing, c.Capabilities.Payouts, c.UpdatedAt, c.ID,
	)

	if err != nil {
		return fmt.Errorf("updating connection: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("connection not found: %s", c.ID)
	}

	return nil
}

// RecordSyncSuccess advances the connection's last-sync timestamp and clears
// any previous sync error.
func (r *ConnectionRepository) RecordSyncSuccess(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE channel_connections SET
			last_sync_at = ?, last_sync_error = NULL, updated_at = ?
		WHERE id = ?
	`, at, r.Now(), id)

	if err != nil {
		return fmt.Errorf("recording sync success: %w", err)
	}

	return nil
}

// RecordSyncFailure stores the failure reason on the connection. The
// last-sync timestamp is deliberately left alone so operators can tell
// "never synced" apart from "synced a while ago, now failing".
func (r *ConnectionRepository) RecordSyncFailure(ctx context.Context, id string, syncErr string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE channel_connections SET
			last_sync_error = ?, updated_at = ?
		WHERE id = ?
	`, syncErr, r.Now(), id)

	if err != nil {
		return fmt.Errorf("recording sync failure: %w", err)
	}

	return nil
}

// Delete removes a connection by ID.
func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM channel_connections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting connection: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("connection not found: %s", id)
	}

	return nil
}
