package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// ConnectionRequest is the request body for creating or updating a
// channel connection.
type ConnectionRequest struct {
	PropertyID        string              `json:"property_id"`
	Channel           models.Channel      `json:"channel"`
	FeedURL           string              `json:"feed_url"`
	ExternalListingID *string             `json:"external_listing_id"`
	Capabilities      models.Capabilities `json:"capabilities"`
}

// ListConnections returns all channel connections, optionally filtered by
// property via ?property_id=.
func ListConnections(repo *storage.ConnectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connections, err := repo.List(r.Context(), r.URL.Query().Get("property_id"))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query connections")
			return
		}

		if connections == nil {
			connections = []models.ChannelConnection{}
		}
		writeJSON(w, http.StatusOK, connections)
	}
}

// CreateConnection adds a new channel connection to a property.
func CreateConnection(repo *storage.ConnectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.PropertyID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "property_id is required")
			return
		}
		if !models.ValidChannel(req.Channel) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown channel type")
			return
		}

		conn := &models.ChannelConnection{
			PropertyID:        req.PropertyID,
			Channel:           req.Channel,
			FeedURL:           req.FeedURL,
			ExternalListingID: req.ExternalListingID,
			Capabilities:      req.Capabilities,
		}

		if err := repo.Create(r.Context(), conn); err != nil {
			// A property has at most one connection per channel type.
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "Failed to create connection")
			return
		}

		writeJSON(w, http.StatusCreated, conn)
	}
}

// GetConnection returns a single connection by ID.
func GetConnection(repo *storage.ConnectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		conn, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query connection")
			return
		}
		if conn == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Connection not found")
			return
		}

		writeJSON(w, http.StatusOK, conn)
	}
}

// UpdateConnection updates a connection's feed URL, listing id and
// capability flags.
func UpdateConnection(repo *storage.ConnectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		conn, err := repo.GetByID(ctx, id)
		if err != nil || conn == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Connection not found")
			return
		}

		var req ConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		conn.FeedURL = req.FeedURL
		conn.ExternalListingID = req.ExternalListingID
		conn.Capabilities = req.Capabilities

		if err := repo.Update(ctx, conn); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update connection")
			return
		}

		writeJSON(w, http.StatusOK, conn)
	}
}

// DeleteConnection removes a connection by ID.
func DeleteConnection(repo *storage.ConnectionRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := repo.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Connection not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListConnectionLogs returns the most recent sync logs for a connection.
func ListConnectionLogs(repo *storage.SyncLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		logs, err := repo.ListByConnection(r.Context(), id, limit)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query sync logs")
			return
		}

		if logs == nil {
			logs = []models.SyncLog{}
		}
		writeJSON(w, http.StatusOK, logs)
	}
}
