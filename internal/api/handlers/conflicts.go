package handlers

import (
	"net/http"

	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/conflict"
)

// CalendarEntry is one event on the unified calendar view, annotated with
// whether it appears in at least one conflict pair.
type CalendarEntry struct {
	conflict.TimedEvent
	HasConflict bool `json:"has_conflict"`
}

// DetectConflicts returns every conflict pair within a time window, via
// ?start=&end=&unit_id=. Pairs are recomputed on every request.
func DetectConflicts(service *conflict.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := parseTimeParam(r, "start")
		end := parseTimeParam(r, "end")
		if start.IsZero() || end.IsZero() || !start.Before(end) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end are required and start must precede end")
			return
		}

		pairs, err := service.DetectWindow(r.Context(), start, end, r.URL.Query().Get("unit_id"))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to detect conflicts")
			return
		}

		if pairs == nil {
			pairs = []conflict.ConflictPair{}
		}
		writeJSON(w, http.StatusOK, pairs)
	}
}

// CalendarView returns the unified reservation/block calendar for a window
// with per-event conflict flags.
func CalendarView(service *conflict.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := parseTimeParam(r, "start")
		end := parseTimeParam(r, "end")
		if start.IsZero() || end.IsZero() || !start.Before(end) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end are required and start must precede end")
			return
		}

		events, err := service.CollectEvents(r.Context(), start, end, r.URL.Query().Get("unit_id"))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		flagged := conflict.FlagConflicts(conflict.Detect(events))

		entries := make([]CalendarEntry, 0, len(events))
		for _, e := range events {
			entries = append(entries, CalendarEntry{
				TimedEvent:  e,
				HasConflict: flagged[e.ID],
			})
		}

		writeJSON(w, http.StatusOK, entries)
	}
}
