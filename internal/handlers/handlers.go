package handlers

import (
	"errors"
	"log"
	"net/http"

	"fleetsync-backend/internal/feed"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/profile"
	"fleetsync-backend/internal/repository"
	"fleetsync-backend/pkg/utils"
)

const roleAdmin = "admin"

// currentUser returns the caller or answers 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.Identity, bool) {
	identity, ok := middleware.GetUserFromContext(r)
	if !ok {
		log.Println("❌ No user in context")
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return identity, true
}

// mayRead reports whether caller may read driverID's records.
func mayRead(caller *models.Identity, driverID string) bool {
	return caller.Role == roleAdmin || caller.UID == driverID
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, action string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, profile.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrInvalidRating),
		errors.Is(err, repository.ErrEmptyUpdate),
		errors.Is(err, livestore.ErrInvalidPath),
		errors.Is(err, feed.ErrNoDriver),
		errors.Is(err, profile.ErrNoUID):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Failed to %s: %v", action, err)
		utils.Error(w, status, "Failed to "+action)
		return
	}
	log.Printf("⚠️  Could not %s: %v", action, err)
	utils.Error(w, status, err.Error())
}
