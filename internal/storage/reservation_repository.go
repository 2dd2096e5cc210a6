package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// ReservationRepository provides data access for reservations.
type ReservationRepository struct {
	BaseRepository
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const reservationColumns = `
	id, unit_id, channel, guest_name, check_in, check_out,
	status, external_id, total_amount, created_at, updated_at
`

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	res := &models.Reservation{}

	err := row.Scan(
		&res.ID, &res.UnitID, &res.Channel, &res.GuestName,
		&res.CheckIn, &res.CheckOut, &res.Status,
		&res.ExternalID, &res.TotalAmount, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Create inserts a new reservation. Intervals where check-in is not strictly
// before check-out are rejected before touching the database.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if !res.CheckIn.Before(res.CheckOut) {
		return fmt.Errorf("invalid reservation interval: check-in %s is not before check-out %s",
			res.CheckIn.Format(time.RFC3339), res.CheckOut.Format(time.RFC3339))
	}

	res.ID = GenerateID()
	res.CreatedAt = r.Now()
	res.UpdatedAt = r.Now()
	if res.Status == "" {
		res.Status = models.ReservationStatusConfirmed
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reservations (
			id, unit_id, channel, guest_name, check_in, check_out,
			status, external_id, total_amount, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID, res.UnitID, res.Channel, res.GuestName, res.CheckIn, res.CheckOut,
		res.Status, res.ExternalID, res.TotalAmount, res.CreatedAt, res.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	return nil
}

// GetByID retrieves a reservation by its ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying reservation: %w", err)
	}

	return res, nil
}

// GetByExternalID retrieves a channel-sourced reservation by its dedup key.
// Returns nil when no reservation carries the external id.
func (r *ReservationRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Reservation, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE external_id = ?`, externalID)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying reservation by external id: %w", err)
	}

	return res, nil
}

// ListByUnit retrieves all reservations for a unit ordered by check-in.
func (r *ReservationRepository) ListByUnit(ctx context.Context, unitID string) ([]models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations WHERE unit_id = ?
		ORDER BY check_in ASC
	`, unitID)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// ListWindow retrieves reservations overlapping [start, end), optionally
// scoped to one unit. Statuses filters to the given set when non-empty.
func (r *ReservationRepository) ListWindow(ctx context.Context, start, end time.Time, unitID string, statuses []string) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE check_in < ? AND check_out > ?
	`
	args := []any{end, start}

	if unitID != "" {
		query += ` AND unit_id = ?`
		args = append(args, unitID)
	}

	if len(statuses) > 0 {
		query += ` AND status IN (?` + repeatPlaceholder(len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	query += ` ORDER BY unit_id, check_in ASC`

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservation window: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// UpdateStayDetails rewrites the channel-authoritative fields (dates and
// guest name) of an existing reservation. Status and total are never
// touched here; those may have been advanced locally.
func (r *ReservationRepository) UpdateStayDetails(ctx context.Context, id string, checkIn, checkOut time.Time, guestName string) error {
	if !checkIn.Before(checkOut) {
		return fmt.Errorf("invalid reservation interval: check-in %s is not before check-out %s",
			checkIn.Format(time.RFC3339), checkOut.Format(time.RFC3339))
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE reservations SET
			check_in = ?, check_out = ?, guest_name = ?, updated_at = ?
		WHERE id = ?
	`, checkIn, checkOut, guestName, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating reservation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}

	return nil
}

// UpdateStatus sets a reservation's status.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if !models.ValidReservationStatus(status) {
		return fmt.Errorf("invalid reservation status: %s", status)
	}

	result, err := r.DB().ExecContext(ctx, `
		UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?
	`, status, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}

	return nil
}

// Delete removes a reservation by ID. Only manual entries should be deleted
// through the API; the reconciler never deletes.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting reservation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}

	return nil
}

func collectReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

// repeatPlaceholder returns n copies of ", ?" for IN clauses.
func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
