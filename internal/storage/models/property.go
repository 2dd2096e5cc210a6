// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Property represents a rental property that owns units and channel connections.
type Property struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit represents a bookable unit belonging to a property.
// Most properties have exactly one unit; the primary unit is the
// sync target for all of the property's channel connections.
type Unit struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Name       string    `json:"name"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}
