package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/handlers"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/repository"
	"fleetsync-backend/internal/services"
	"fleetsync-backend/internal/websocket"

	firebase "firebase.google.com/go/v4"
)

const (
	banner = "═══════════════════════════════════════════════════════════════════"
	rule   = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

func fatal(title string, err error) {
	log.Println(rule)
	log.Printf("❌ FATAL ERROR: %s", title)
	log.Printf("   Error: %v", err)
	log.Println(rule)
	log.Fatal(err)
}

func main() {
	log.Println(banner)
	log.Println("🚀 FLEETSYNC BACKEND SERVER STARTING")
	log.Println(banner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		fatal("Invalid configuration", err)
	}
	log.Printf("✅ Configuration loaded (live store: %s, profiles: %s)", cfg.LiveStoreBackend, cfg.ProfileBackend)

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		fatal("Database connection failed", err)
	}
	defer db.Close()

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		fatal("Database migrations failed", err)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		fatal("Token signer unavailable", err)
	}

	store, err := openLiveStore(ctx, cfg)
	if err != nil {
		fatal("Live store unavailable", err)
	}
	defer store.Close()

	// Firebase is optional unless profiles live in Firestore.
	var app *firebase.App
	app, err = services.NewFirebaseApp(ctx, cfg.FirebaseCredsBase64, cfg.FirebaseCredsFile)
	if err != nil {
		if cfg.ProfileBackend == config.ProfileFirestore {
			fatal("Firebase required for Firestore profiles", err)
		}
		log.Printf("⚠️  Firebase not initialized: %v (push notifications disabled)", err)
		app = nil
	}

	profiles, closeProfiles, err := openProfileStore(ctx, cfg, db, app)
	if err != nil {
		fatal("Profile store unavailable", err)
	}
	defer closeProfiles()

	repo := repository.NewStoreRepository(store)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	emergency := handlers.EmergencyDeps{Repo: repo, Broadcaster: wsHub}
	if app != nil {
		fcmService, err := services.NewFCMService(ctx, app)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM: %v (push notifications disabled)", err)
		} else {
			emergency.Notifier = fcmService
			log.Println("✅ Firebase Cloud Messaging initialized")
		}
	}
	if cfg.GoogleMapsAPIKey != "" {
		emergency.Geocoder = services.NewGeocoder(cfg.GoogleMapsAPIKey, services.NewAddressCache(1000, 24*time.Hour))
		log.Println("✅ Reverse geocoding enabled")
	} else {
		log.Println("⚠️  GOOGLE_MAPS_API_KEY not set, alerts will carry coordinates only")
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Provider:  auth.NewLocalProvider(db),
		Tokens:    tokens,
		LiveStore: store,
		Profiles:  profiles,
		Repo:      repo,
		Emergency: emergency,
		WebSocket: websocket.HandleWebSocket(wsHub, tokens, websocket.NewFeeds(store)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Shutdown error: %v", err)
		}
	}()

	log.Println(banner)
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("🔌 Ready to accept requests!")
	log.Println(banner)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal("Server failed to start", err)
	}
	log.Println("👋 Server stopped")
}

func openLiveStore(ctx context.Context, cfg *config.Config) (livestore.Store, error) {
	if cfg.LiveStoreBackend == config.LiveStoreMemory {
		log.Println("⚠️  Using in-process live store (single node only)")
		return livestore.NewMemory(), nil
	}
	client, err := livestore.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return livestore.NewRedis(client, ""), nil
}
