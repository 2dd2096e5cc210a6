package models

import (
	"fmt"
	"time"
)

// Reservation status constants.
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusPending   = "pending"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

// ValidReservationStatus reports whether s is a known reservation status.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusPending,
		ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// Reservation is a committed booking on a unit.
//
// Channel-sourced reservations carry an ExternalID of the form
// "<channel>-<uid>", which is the sole deduplication key across sync runs.
// Manual reservations have a nil ExternalID.
type Reservation struct {
	ID          string     `json:"id"`
	UnitID      string     `json:"unit_id"`
	Channel     Channel    `json:"channel"`
	GuestName   string     `json:"guest_name"`
	CheckIn     time.Time  `json:"check_in"`
	CheckOut    time.Time  `json:"check_out"`
	Status      string     `json:"status"`
	ExternalID  *string    `json:"external_id,omitempty"`
	TotalAmount *float64   `json:"total_amount,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ExternalReservationID builds the deduplication key for a channel-sourced
// reservation. The "<channel>-<uid>" composition is load-bearing: it is the
// lookup key that keeps repeated syncs from duplicating bookings.
func ExternalReservationID(channel Channel, uid string) string {
	return fmt.Sprintf("%s-%s", channel, uid)
}

// IsChannelSourced reports whether the reservation was created by a sync run.
func (r *Reservation) IsChannelSourced() bool {
	return r.ExternalID != nil && *r.ExternalID != ""
}
