package handlers

import (
	"net/http"
	"time"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/middleware"
	"fleetsync-backend/internal/profile"
	"fleetsync-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps wires the HTTP surface. WebSocket may be nil.
type RouterDeps struct {
	Provider  auth.Provider
	Tokens    *auth.Tokens
	LiveStore livestore.Store
	Profiles  profile.Store
	Repo      repository.Repository
	Emergency EmergencyDeps
	WebSocket http.Handler
	Now       func() time.Time
}

func NewRouter(deps RouterDeps) chi.Router {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", Signup(deps.Provider, deps.Tokens))
		r.Post("/auth/login", Login(deps.Provider, deps.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Tokens))

			r.Get("/auth/status", AuthStatus())

			r.Get("/driver/profile", GetProfile(deps.Profiles))
			r.Put("/driver/profile", UpdateProfile(deps.Profiles))

			r.Post("/driver/location", UpdateLocation(deps.LiveStore, deps.Now))
			r.Get("/drivers/{id}/location", GetDriverLocation(deps.LiveStore))

			r.Get("/driver/trips/active", GetActiveTrips(deps.LiveStore))
			r.Patch("/trips/{id}/status", UpdateTripStatus(deps.Repo))

			r.Get("/driver/schedules", GetSchedules(deps.Repo))
			r.Patch("/driver/schedules/{id}", UpdateSchedule(deps.Repo))

			r.Get("/driver/ratings", GetRatings(deps.Repo))
			r.Put("/driver/ratings/{tripId}", RateTrip(deps.Repo))

			r.Get("/driver/dashboard", GetDashboard(deps.Repo))

			r.Post("/driver/emergency", CreateEmergencyAlert(deps.Emergency))
		})
	})

	return r
}
