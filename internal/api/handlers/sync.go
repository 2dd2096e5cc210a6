package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/calendar"
)

// SyncConnection reconciles one connection immediately and returns the run
// result. Configuration failures (no feed URL, missing capability) come
// back as 422; fetch/parse failures as 502.
func SyncConnection(reconciler *calendar.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		result, err := reconciler.Reconcile(r.Context(), id)
		if err != nil {
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, calendar.ErrConnectionNotFound):
				status = http.StatusNotFound
			case errors.Is(err, calendar.ErrNoFeedConfigured),
				errors.Is(err, calendar.ErrNoCalendarRead),
				errors.Is(err, calendar.ErrNoUnit):
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, result)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// RunBatch triggers a sync batch across all syncable connections. When a
// batch is already in flight, the previous snapshot is returned with 202
// and no second batch starts.
func RunBatch(scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrInternalError, "Scheduler not available")
			return
		}

		snapshot, started := scheduler.RunBatch(r.Context())
		status := http.StatusOK
		if !started {
			status = http.StatusAccepted
		}
		writeJSON(w, status, snapshot)
	}
}

// SyncStatus returns the scheduler's latest snapshot.
func SyncStatus(scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrInternalError, "Scheduler not available")
			return
		}

		writeJSON(w, http.StatusOK, scheduler.Status())
	}
}
