package handlers

import (
	"errors"
	"net/http"

	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/profile"
	"fleetsync-backend/pkg/utils"
)

// GetProfile returns the caller's driver profile.
// GET /api/driver/profile
func GetProfile(store profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		p, err := store.Get(r.Context(), identity.UID)
		if errors.Is(err, profile.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Profile not registered")
			return
		}
		if err != nil {
			writeError(w, "load profile", err)
			return
		}
		utils.Success(w, p)
	}
}

// UpdateProfile merge-writes the caller's driver profile.
// PUT /api/driver/profile
func UpdateProfile(store profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		var update models.ProfileUpdate
		if err := utils.DecodeJSON(r, &update); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		// Only dispatch may change the approval status.
		if identity.Role != roleAdmin {
			update.Status = nil
		}

		p, err := store.Upsert(r.Context(), identity.UID, update)
		if err != nil {
			writeError(w, "save profile", err)
			return
		}
		utils.Success(w, p)
	}
}
