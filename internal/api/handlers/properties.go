package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rental-calendar-hub/backend/internal/api/middleware"
	"github.com/rental-calendar-hub/backend/internal/storage"
	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// CreatePropertyRequest is the request body for creating a property.
type CreatePropertyRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// CreateUnitRequest is the request body for adding a unit to a property.
type CreateUnitRequest struct {
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
}

// ListProperties returns all properties.
func ListProperties(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := repo.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query properties")
			return
		}

		if properties == nil {
			properties = []models.Property{}
		}
		writeJSON(w, http.StatusOK, properties)
	}
}

// CreateProperty adds a new property with one primary unit of the same name.
func CreateProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		ctx := r.Context()
		property := &models.Property{Name: req.Name, Timezone: req.Timezone}
		if err := repo.Create(ctx, property); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create property")
			return
		}

		unit := &models.Unit{PropertyID: property.ID, Name: req.Name, IsPrimary: true}
		if err := repo.CreateUnit(ctx, unit); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create primary unit")
			return
		}

		writeJSON(w, http.StatusCreated, property)
	}
}

// GetProperty returns a single property with its units.
func GetProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		property, err := repo.GetByID(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query property")
			return
		}
		if property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		units, err := repo.ListUnits(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query units")
			return
		}
		if units == nil {
			units = []models.Unit{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"property": property,
			"units":    units,
		})
	}
}

// DeleteProperty removes a property and everything underneath it.
func DeleteProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := repo.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CreateUnit adds a unit to a property.
func CreateUnit(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		var req CreateUnitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		ctx := r.Context()
		property, err := repo.GetByID(ctx, propertyID)
		if err != nil || property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		unit := &models.Unit{PropertyID: propertyID, Name: req.Name, IsPrimary: req.IsPrimary}
		if err := repo.CreateUnit(ctx, unit); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create unit")
			return
		}

		writeJSON(w, http.StatusCreated, unit)
	}
}
