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

// CreateBlockRequest is the request body for creating an availability block.
type CreateBlockRequest struct {
	UnitID    string    `json:"unit_id"`
	BlockType string    `json:"block_type"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Note      *string   `json:"note"`
}

// ListBlocks returns availability blocks overlapping a time window, via
// ?start=&end=&unit_id=.
func ListBlocks(repo *storage.BlockRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := parseTimeParam(r, "start")
		end := parseTimeParam(r, "end")
		if start.IsZero() || end.IsZero() || !start.Before(end) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start and end are required and start must precede end")
			return
		}

		blocks, err := repo.ListWindow(r.Context(), start, end, r.URL.Query().Get("unit_id"))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query blocks")
			return
		}

		if blocks == nil {
			blocks = []models.AvailabilityBlock{}
		}
		writeJSON(w, http.StatusOK, blocks)
	}
}

// CreateBlock adds an availability block to a unit.
func CreateBlock(repo *storage.BlockRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.UnitID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "unit_id is required")
			return
		}
		if !models.ValidBlockType(req.BlockType) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown block type")
			return
		}
		if !req.StartAt.Before(req.EndAt) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start_at must be before end_at")
			return
		}

		block := &models.AvailabilityBlock{
			UnitID:    req.UnitID,
			BlockType: req.BlockType,
			StartAt:   req.StartAt,
			EndAt:     req.EndAt,
			Note:      req.Note,
		}

		if err := repo.Create(r.Context(), block); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create block")
			return
		}

		writeJSON(w, http.StatusCreated, block)
	}
}

// DeleteBlock removes an availability block by ID.
func DeleteBlock(repo *storage.BlockRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := repo.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Block not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
