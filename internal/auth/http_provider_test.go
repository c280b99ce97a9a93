package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetsync-backend/internal/models"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(authResponse{OK: false, Error: "invalid"})
			return
		}
		json.NewEncoder(w).Encode(authResponse{
			OK:    true,
			Token: "token-1",
			User:  &models.UserResponse{ID: "d1", Email: req.Email, Role: "driver"},
		})
	})
	mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":   true,
			"user": models.Identity{UID: "d1", Email: "d1@example.com", Role: "driver"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider_SignInStoresToken(t *testing.T) {
	srv := newAuthServer(t)
	p := NewHTTPProvider(srv.URL+"/", "")

	identity, err := p.SignIn(context.Background(), "d1@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if identity.UID != "d1" || p.Token() != "token-1" {
		t.Errorf("unexpected result: %+v token=%q", identity, p.Token())
	}

	p.SignOut(context.Background())
	if p.Token() != "" {
		t.Error("expected sign out to drop the token")
	}
}

func TestHTTPProvider_BadPassword(t *testing.T) {
	srv := newAuthServer(t)
	p := NewHTTPProvider(srv.URL, "")

	_, err := p.SignIn(context.Background(), "d1@example.com", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHTTPProvider_Restore(t *testing.T) {
	srv := newAuthServer(t)

	identity, err := NewHTTPProvider(srv.URL, "token-1").Restore(context.Background())
	if err != nil || identity == nil || identity.UID != "d1" {
		t.Fatalf("expected restored d1, got (%+v, %v)", identity, err)
	}

	stale := NewHTTPProvider(srv.URL, "stale")
	identity, err = stale.Restore(context.Background())
	if err != nil || identity != nil {
		t.Fatalf("expected (nil, nil) for a stale token, got (%+v, %v)", identity, err)
	}
	if stale.Token() != "" {
		t.Error("expected stale token to be dropped")
	}

	identity, err = NewHTTPProvider(srv.URL, "").Restore(context.Background())
	if err != nil || identity != nil {
		t.Fatalf("expected (nil, nil) without a token, got (%+v, %v)", identity, err)
	}
}
