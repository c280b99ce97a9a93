package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Auth validates the bearer token and puts the caller's identity on the
// request context.
func Auth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("❌ No authorization header: %s %s", r.Method, r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("❌ Invalid authorization header format (parts: %d)", len(parts))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := tokens.Parse(parts[1])
			if err != nil {
				log.Printf("❌ %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole checks the caller's role (must be used after Auth).
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetUserFromContext(r)
			if !ok {
				log.Println("❌ Identity not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if identity.Role != role {
				log.Printf("❌ Insufficient permissions: required %s, got %s", role, identity.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetUserFromContext returns the identity Auth stored on the request.
func GetUserFromContext(r *http.Request) (*models.Identity, bool) {
	identity, ok := r.Context().Value(identityContextKey).(*models.Identity)
	return identity, ok && identity != nil
}
