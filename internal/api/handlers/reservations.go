package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// CreateReservationRequest is the request body for a manual reservation.
// Manual entries carry no external id; the reconciler never touches them.
type CreateReservationRequest struct {
	UnitID      string         `json:"unit_id"`
	Channel     models.Channel `json:"channel"`
	GuestName   string         `json:"guest_name"`
	CheckIn     time.Time      `json:"check_in"`
	CheckOut    time.Time      `json:"check_out"`
	Status      string         `json:"status"`
	TotalAmount *float64       `json:"total_amount"`
}

// UpdateReservationStatusRequest is the request body for a status change.
type UpdateReservationStatusRequest struct {
	Status string `json:"status"`
}

// ListReservations returns reservations overlapping a time window, via
// ?start=&end=&unit_id=. All statuses are included; filtering cancelled
// entries out is the conflict path's concern, not this listing's.
func ListReservations(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := parseTimeParam(r, "start")
		end := parseTimeParam(r, "end")
		if start.IsZero() || end.IsZero() || !start.Before(end) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end are required and start must precede end")
			return
		}

		reservations, err := repo.ListWindow(r.Context(), start, end, r.URL.Query().Get("unit_id"), nil)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservations")
			return
		}

		if reservations == nil {
			reservations = []models.Reservation{}
		}
		writeJSON(w, http.StatusOK, reservations)
	}
}

// CreateReservation adds a manual reservation.
func CreateReservation(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.UnitID == "" || req.GuestName == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "unit_id and guest_name are required")
			return
		}
		if !req.CheckIn.Before(req.CheckOut) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "check_in must be before check_out")
			return
		}
		if req.Status != "" && !models.ValidReservationStatus(req.Status) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown reservation status")
			return
		}

		channel := req.Channel
		if channel == "" {
			channel = models.ChannelDirect
		}
		if !models.ValidChannel(channel) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown channel type")
			return
		}

		res := &models.Reservation{
			UnitID:      req.UnitID,
			Channel:     channel,
			GuestName:   req.GuestName,
			CheckIn:     req.CheckIn,
			CheckOut:    req.CheckOut,
			Status:      req.Status,
			TotalAmount: req.TotalAmount,
		}

		if err := repo.Create(r.Context(), res); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create reservation")
			return
		}

		writeJSON(w, http.StatusCreated, res)
	}
}

// GetReservation returns a single reservation by ID.
func GetReservation(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		res, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservation")
			return
		}
		if res == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Reservation not found")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// UpdateReservationStatus changes a reservation's status. This is the
// operator path for cancelling or completing a stay; channel syncs never
// touch status.
func UpdateReservationStatus(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req UpdateReservationStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if !models.ValidReservationStatus(req.Status) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown reservation status")
			return
		}

		if err := repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Reservation not found")
			return
		}

		res, err := repo.GetByID(r.Context(), id)
		if err != nil || res == nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to reload reservation")
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// DeleteReservation removes a reservation. Channel-sourced reservations
// are protected: the feed would just recreate them on the next sync.
func DeleteReservation(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		res, err := repo.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservation")
			return
		}
		if res == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Reservation not found")
			return
		}
		if res.IsChannelSourced() {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "Channel-sourced reservations cannot be deleted; cancel them instead")
			return
		}

		if err := repo.Delete(ctx, id); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete reservation")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
