package handlers

import (
	"errors"
	"log"
	"net/http"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/pkg/utils"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
	Error string               `json:"error,omitempty"`
}

// Signup creates a driver account and signs it in.
// POST /api/auth/signup
func Signup(provider auth.Provider, tokens *auth.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.JSON(w, http.StatusBadRequest, LoginResponse{Error: "Invalid request body"})
			return
		}

		log.Printf("📝 Signup attempt for: %s", req.Email)
		identity, err := provider.SignUp(r.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			utils.JSON(w, http.StatusConflict, LoginResponse{Error: err.Error()})
			return
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidCredentials):
			utils.JSON(w, http.StatusBadRequest, LoginResponse{Error: err.Error()})
			return
		case err != nil:
			log.Printf("❌ Signup failed for %s: %v", req.Email, err)
			utils.JSON(w, http.StatusInternalServerError, LoginResponse{Error: "Signup failed"})
			return
		}

		respondSession(w, http.StatusCreated, tokens, identity)
	}
}

// Login signs a user in and returns a bearer token.
// POST /api/auth/login
func Login(provider auth.Provider, tokens *auth.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.JSON(w, http.StatusBadRequest, LoginResponse{Error: "Invalid request body"})
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)
		identity, err := provider.SignIn(r.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Printf("❌ Invalid credentials for: %s", req.Email)
			utils.JSON(w, http.StatusUnauthorized, LoginResponse{Error: err.Error()})
			return
		}
		if err != nil {
			log.Printf("❌ Login failed for %s: %v", req.Email, err)
			utils.JSON(w, http.StatusInternalServerError, LoginResponse{Error: "Login failed"})
			return
		}

		log.Printf("✅ Login successful: %s (%s)", identity.Email, identity.Role)
		respondSession(w, http.StatusOK, tokens, identity)
	}
}

// AuthStatus returns the identity carried by the bearer token.
// GET /api/auth/status
func AuthStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentUser(w, r)
		if !ok {
			return
		}
		utils.Success(w, map[string]interface{}{"user": identity})
	}
}

func respondSession(w http.ResponseWriter, status int, tokens *auth.Tokens, identity *models.Identity) {
	token, err := tokens.Issue(identity)
	if err != nil {
		log.Printf("❌ Failed to create token: %v", err)
		utils.JSON(w, http.StatusInternalServerError, LoginResponse{Error: "Failed to create token"})
		return
	}
	user := models.UserResponse{ID: identity.UID, Email: identity.Email, Role: identity.Role}
	utils.JSON(w, status, LoginResponse{OK: true, Token: token, User: &user})
}
