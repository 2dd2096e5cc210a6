// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rental-calendar-hub/backend/internal/calendar"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	PropertiesCount   int                  `json:"properties_count"`
	ConnectionsCount  int                  `json:"connections_count"`
	ReservationsCount int                  `json:"reservations_count"`
	BlocksCount       int                  `json:"blocks_count"`
	Sync              models.BatchSnapshot `json:"sync"`
}

// Status returns a handler that provides system status information,
// including the latest sync batch snapshot.
func Status(db *storage.DB, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var properties, connections, reservations, blocks int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&properties)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM channel_connections").Scan(&connections)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations").Scan(&reservations)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM availability_blocks").Scan(&blocks)

		response := StatusResponse{
			PropertiesCount:   properties,
			ConnectionsCount:  connections,
			ReservationsCount: reservations,
			BlocksCount:       blocks,
		}
		if scheduler != nil {
			response.Sync = scheduler.Status()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
