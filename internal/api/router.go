// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/api/handlers"
	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/calendar"
	"github.com/rental-calendar-hub/backend/internal/conflict"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/websocket"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	DB              *storage.DB
	PropertyRepo    *storage.PropertyRepository
	ConnectionRepo  *storage.ConnectionRepository
	ReservationRepo *storage.ReservationRepository
	BlockRepo       *storage.BlockRepository
	SyncLogRepo     *storage.SyncLogRepository
	Reconciler      *calendar.Reconciler
	Scheduler       *calendar.Scheduler
	Conflicts       *conflict.Service
	Hub             *websocket.Hub
	Logger          *zap.Logger
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.ErrorRecovery(d.Logger))

	api := r.PathPrefix("/api").Subrouter()

	// Health and status
	api.HandleFunc("/health", handlers.HealthCheck(d.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(d.DB, d.Scheduler)).Methods("GET")

	// WebSocket event stream
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub, d.Logger)).Methods("GET")

	// Properties and units
	api.HandleFunc("/properties", handlers.ListProperties(d.PropertyRepo)).Methods("GET")
	api.HandleFunc("/properties", handlers.CreateProperty(d.PropertyRepo)).Methods("POST")
	api.HandleFunc("/properties/{id}", handlers.GetProperty(d.PropertyRepo)).Methods("GET")
	api.HandleFunc("/properties/{id}", handlers.DeleteProperty(d.PropertyRepo)).Methods("DELETE")
	api.HandleFunc("/properties/{id}/units", handlers.CreateUnit(d.PropertyRepo)).Methods("POST")

	// Channel connections
	api.HandleFunc("/connections", handlers.ListConnections(d.ConnectionRepo)).Methods("GET")
	api.HandleFunc("/connections", handlers.CreateConnection(d.ConnectionRepo)).Methods("POST")
	api.HandleFunc("/connections/{id}", handlers.GetConnection(d.ConnectionRepo)).Methods("GET")
	api.HandleFunc("/connections/{id}", handlers.UpdateConnection(d.ConnectionRepo)).Methods("PUT")
	api.HandleFunc("/connections/{id}", handlers.DeleteConnection(d.ConnectionRepo)).Methods("DELETE")
	api.HandleFunc("/connections/{id}/sync", handlers.SyncConnection(d.Reconciler)).Methods("POST")
	api.HandleFunc("/connections/{id}/logs", handlers.ListConnectionLogs(d.SyncLogRepo)).Methods("GET")

	// Batch sync
	api.HandleFunc("/sync/run", handlers.RunBatch(d.Scheduler)).Methods("POST")
	api.HandleFunc("/sync/status", handlers.SyncStatus(d.Scheduler)).Methods("GET")

	// Reservations
	api.HandleFunc("/reservations", handlers.ListReservations(d.ReservationRepo)).Methods("GET")
	api.HandleFunc("/reservations", handlers.CreateReservation(d.ReservationRepo)).Methods("POST")
	api.HandleFunc("/reservations/{id}", handlers.GetReservation(d.ReservationRepo)).Methods("GET")
	api.HandleFunc("/reservations/{id}/status", handlers.UpdateReservationStatus(d.ReservationRepo)).Methods("PATCH")
	api.HandleFunc("/reservations/{id}", handlers.DeleteReservation(d.ReservationRepo)).Methods("DELETE")

	// Availability blocks
	api.HandleFunc("/blocks", handlers.ListBlocks(d.BlockRepo)).Methods("GET")
	api.HandleFunc("/blocks", handlers.CreateBlock(d.BlockRepo)).Methods("POST")
	api.HandleFunc("/blocks/{id}", handlers.DeleteBlock(d.BlockRepo)).Methods("DELETE")

	// Unified calendar and conflicts
	api.HandleFunc("/calendar", handlers.CalendarView(d.Conflicts)).Methods("GET")
	api.HandleFunc("/conflicts", handlers.DetectConflicts(d.Conflicts)).Methods("GET")

	return r
}
