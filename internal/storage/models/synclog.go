package models

import (
	"time"
)

// Sync log status constants.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailure = "failure"
)

// SyncLog is one durable record per reconciliation attempt against one
// channel connection. Append-only; never updated or deleted.
type SyncLog struct {
	ID            string    `json:"id"`
	ConnectionID  string    `json:"connection_id"`
	Status        string    `json:"status"`
	EventsFound   int       `json:"events_found"`
	EventsCreated int       `json:"events_created"`
	EventsUpdated int       `json:"events_updated"`
	EventsSkipped int       `json:"events_skipped"`
	Error         *string   `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SyncRunResult is the in-memory outcome of one reconciliation run,
// returned to the caller (manual trigger or scheduler).
type SyncRunResult struct {
	ConnectionID  string    `json:"connection_id"`
	Channel       Channel   `json:"channel"`
	PropertyID    string    `json:"property_id"`
	Success       bool      `json:"success"`
	EventsFound   int       `json:"events_found"`
	EventsCreated int       `json:"events_created"`
	EventsUpdated int       `json:"events_updated"`
	EventsSkipped int       `json:"events_skipped"`
	Error         string    `json:"error,omitempty"`
	SyncedAt      time.Time `json:"synced_at"`
}

// BatchSnapshot is the scheduler's latest aggregate state, overwritten by
// each completed batch and served from the status endpoint.
type BatchSnapshot struct {
	IsRunning bool            `json:"is_running"`
	LastRunAt *time.Time      `json:"last_run_at,omitempty"`
	NextRunAt *time.Time      `json:"next_run_at,omitempty"`
	Results   []SyncRunResult `json:"results"`
}
