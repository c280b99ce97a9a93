package handlers

import (
	"net/http"

	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/repository"
	"fleetsync-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// GetSchedules GET /api/driver/schedules
func GetSchedules(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		schedules, err := repo.Schedules(r.Context(), identity.UID)
		if err != nil {
			writeError(w, "load schedules", err)
			return
		}
		utils.Success(w, schedules)
	}
}

// UpdateSchedule PATCH /api/driver/schedules/{id}
func UpdateSchedule(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var update models.ScheduleUpdate
		if err := utils.DecodeJSON(r, &update); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if update.Status != nil && !validScheduleStatus(*update.Status) {
			utils.Error(w, http.StatusBadRequest, "Status must be 'accepted', 'declined' or 'done'")
			return
		}

		schedule, err := repo.UpdateSchedule(r.Context(), identity.UID, chi.URLParam(r, "id"), update)
		if err != nil {
			writeError(w, "update schedule", err)
			return
		}
		utils.Success(w, schedule)
	}
}

func validScheduleStatus(status string) bool {
	switch status {
	case "accepted", "declined", "done":
		return true
	}
	return false
}

// GetRatings GET /api/driver/ratings
func GetRatings(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		ratings, err := repo.Ratings(r.Context(), identity.UID)
		if err != nil {
			writeError(w, "load ratings", err)
			return
		}
		utils.Success(w, ratings)
	}
}

type RatingRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment,omitempty"`
}

// RateTrip records the passenger rating for one of the caller's trips.
// PUT /api/driver/ratings/{tripId}
func RateTrip(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req RatingRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		rating, err := repo.RateTrip(r.Context(), identity.UID, chi.URLParam(r, "tripId"), req.Stars, req.Comment)
		if err != nil {
			writeError(w, "rate trip", err)
			return
		}
		utils.Success(w, rating)
	}
}

// GetDashboard GET /api/driver/dashboard
func GetDashboard(repo repository.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		summary, err := repo.Dashboard(r.Context(), identity.UID)
		if err != nil {
			writeError(w, "load dashboard", err)
			return
		}
		utils.Success(w, summary)
	}
}
