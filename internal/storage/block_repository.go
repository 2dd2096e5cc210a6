package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// BlockRepository provides data access for availability blocks.
type BlockRepository struct {
	BaseRepository
}

// NewBlockRepository creates a new availability block repository.
func NewBlockRepository(db *DB) *BlockRepository {
	return &BlockRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new availability block.
func (r *BlockRepository) Create(ctx context.Context, b *models.AvailabilityBlock) error {
	if !b.StartAt.Before(b.EndAt) {
		return fmt.Errorf("invalid block interval: start %s is not before end %s",
			b.StartAt.Format(time.RFC3339), b.EndAt.Format(time.RFC3339))
	}
	if !models.ValidBlockType(b.BlockType) {
		return fmt.Errorf("invalid block type: %s", b.BlockType)
	}

	b.ID = GenerateID()
	b.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO availability_blocks (id, unit_id, block_type, start_at, end_at, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.UnitID, b.BlockType, b.StartAt, b.EndAt, b.Note, b.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}

	return nil
}

// GetByID retrieves a block by its ID.
func (r *BlockRepository) GetByID(ctx context.Context, id string) (*models.AvailabilityBlock, error) {
	b := &models.AvailabilityBlock{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, unit_id, block_type, start_at, end_at, note, created_at
		FROM availability_blocks WHERE id = ?
	`, id).Scan(&b.ID, &b.UnitID, &b.BlockType, &b.StartAt, &b.EndAt, &b.Note, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying block: %w", err)
	}

	return b, nil
}

// ListWindow retrieves blocks overlapping [start, end), optionally scoped
// to one unit.
func (r *BlockRepository) ListWindow(ctx context.Context, start, end time.Time, unitID string) ([]models.AvailabilityBlock, error) {
	query := `
		SELECT id, unit_id, block_type, start_at, end_at, note, created_at
		FROM availability_blocks
		WHERE start_at < ? AND end_at > ?
	`
	args := []any{end, start}

	if unitID != "" {
		query += ` AND unit_id = ?`
		args = append(args, unitID)
	}

	query += ` ORDER BY unit_id, start_at ASC`

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying block window: %w", err)
	}
	defer rows.Close()

	var blocks []models.AvailabilityBlock
	for rows.Next() {
		var b models.AvailabilityBlock
		if err := rows.Scan(&b.ID, &b.UnitID, &b.BlockType, &b.StartAt, &b.EndAt, &b.Note, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

// Delete removes a block by ID.
func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM availability_blocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting block: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("block not found: %s", id)
	}

	return nil
}
