package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/models"
)

func newTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tokens
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetUserFromContext(r)
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(identity.UID))
}

func TestAuth(t *testing.T) {
	tokens := newTokens(t)
	token, err := tokens.Issue(&models.Identity{UID: "D1", Email: "d1@fleetsync.dev", Role: "driver"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	handler := Auth(tokens)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, ""},
		{"valid token", "Bearer " + token, http.StatusOK, "D1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/driver/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}

	req = req.WithContext(WithIdentity(req.Context(), &models.Identity{UID: "D1", Role: "driver"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for driver, got %d", rec.Code)
	}

	req = req.WithContext(WithIdentity(req.Context(), &models.Identity{UID: "A1", Role: "admin"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "A1" {
		t.Errorf("expected admin through, got %d %q", rec.Code, rec.Body.String())
	}
}
