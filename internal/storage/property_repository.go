package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// PropertyRepository provides data access for properties and their units.
type PropertyRepository struct {
	BaseRepository
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new property.
func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	p.ID = GenerateID()
	p.CreatedAt = r.Now()
	p.UpdatedAt = r.Now()
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO properties (id, name, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Timezone, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}

	return nil
}

// GetByID retrieves a property by its ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p := &models.Property{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, name, timezone, created_at, updated_at
		FROM properties WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying property: %w", err)
	}

	return p, nil
}

// List retrieves all properties.
func (r *PropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, name, timezone, created_at, updated_at
		FROM properties ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Timezone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// Delete removes a property by ID. Units, connections, reservations and
// blocks underneath it go with it via foreign key cascades.
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("property not found: %s", id)
	}

	return nil
}

// CreateUnit inserts a new unit for a property.
func (r *PropertyRepository) CreateUnit(ctx context.Context, u *models.Unit) error {
	u.ID = GenerateID()
	u.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO units (id, property_id, name, is_primary, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.PropertyID, u.Name, u.IsPrimary, u.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting unit: %w", err)
	}

	return nil
}

// ListUnits retrieves all units for a property, primary unit first.
func (r *PropertyRepository) ListUnits(ctx context.Context, propertyID string) ([]models.Unit, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, property_id, name, is_primary, created_at
		FROM units WHERE property_id = ?
		ORDER BY is_primary DESC, created_at ASC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.PropertyID, &u.Name, &u.IsPrimary, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, u)
	}

	return units, rows.Err()
}

// PrimaryUnit retrieves the sync target unit for a property: the unit
// flagged primary, or the oldest unit when none is flagged. Returns nil
// when the property has no units at all.
func (r *PropertyRepository) PrimaryUnit(ctx context.Context, propertyID string) (*models.Unit, error) {
	u := &models.Unit{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, property_id, name, is_primary, created_at
		FROM units WHERE property_id = ?
		ORDER BY is_primary DESC, created_at ASC
		LIMIT 1
	`, propertyID).Scan(&u.ID, &u.PropertyID, &u.Name, &u.IsPrimary, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying primary unit: %w", err)
	}

	return u, nil
}
