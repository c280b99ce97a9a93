package handlers

import (
	"log"
	"net/http"
	"time"

	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// UpdateLocation publishes the caller's position.
// POST /api/driver/location
func UpdateLocation(store livestore.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req LocationRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		pos := location.Position{Latitude: req.Latitude, Longitude: req.Longitude, Accuracy: req.Accuracy}
		if err := pos.Validate(); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		loc := location.NewDriverLocation(identity.UID, pos, now())
		if err := store.Write(r.Context(), location.LocationPath(identity.UID), loc); err != nil {
			writeError(w, "save location", err)
			return
		}
		log.Printf("📍 Location updated for driver %s", identity.UID)
		utils.Success(w, loc)
	}
}

// GetDriverLocation returns a driver's last published location.
// GET /api/drivers/{id}/location
func GetDriverLocation(store livestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		driverID := chi.URLParam(r, "id")
		if !mayRead(identity, driverID) {
			utils.Error(w, http.StatusForbidden, "Forbidden")
			return
		}

		rec, err := store.Get(r.Context(), location.LocationPath(driverID))
		if err != nil {
			writeError(w, "load location", err)
			return
		}
		if rec == nil {
			utils.Error(w, http.StatusNotFound, "No location published")
			return
		}
		var loc models.DriverLocation
		if err := rec.Decode(&loc); err != nil {
			writeError(w, "decode location", err)
			return
		}
		utils.Success(w, loc)
	}
}
