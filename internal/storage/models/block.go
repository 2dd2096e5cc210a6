package models

import (
	"time"
)

// Availability block type constants.
const (
	BlockTypeBooked      = "booked"
	BlockTypeBlocked     = "blocked"
	BlockTypeMaintenance = "maintenance"
	BlockTypeHold        = "hold"
)

// ValidBlockType reports whether t is a known block type.
func ValidBlockType(t string) bool {
	switch t {
	case BlockTypeBooked, BlockTypeBlocked, BlockTypeMaintenance, BlockTypeHold:
		return true
	}
	return false
}

// AvailabilityBlock withholds a unit from booking for an interval without
// being a reservation. Blocks participate in conflict detection exactly
// like reservations.
type AvailabilityBlock struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unit_id"`
	BlockType string    `json:"block_type"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
