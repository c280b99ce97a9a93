package handlers

import (
	"log"
	"net/http"

	"fleetsync-backend/internal/feed"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/repository"
	"fleetsync-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetActiveTrips returns the caller's trips that are not completed.
// GET /api/driver/trips/active
func GetActiveTrips(store livestore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		recs, err := store.List(r.Context(), feed.DriverTripsQuery(identity.UID))
		if err != nil {
			writeError(w, "load trips", err)
			return
		}
		utils.Success(w, feed.ActiveTrips(recs))
	}
}

// UpdateTripStatus patches the status fields of one of the caller's trips.
// PATCH /api/trips/{id}/status
func UpdateTripStatus(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var update models.TripStatusUpdate
		if err := utils.DecodeJSON(r, &update); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		tripID := chi.URLParam(r, "id")
		trip, err := repo.UpdateTripStatus(r.Context(), identity.UID, tripID, update)
		if err != nil {
			writeError(w, "update trip", err)
			return
		}
		log.Printf("🚌 Trip %s updated by %s: %s", tripID, identity.UID, trip.Status)
		utils.Success(w, trip)
	}
}
