package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/feed"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/models"
	"fleetsync-backend/internal/navigation"
)

const (
	banner = "═══════════════════════════════════════════════════════════════════"

	// Bengaluru city loop, used when AGENT_WAYPOINTS is empty.
	defaultWaypoints = "12.9716,77.5946;12.9784,77.6408;12.9352,77.6245"
	stepsPerLeg      = 12
)

var fallbackRegion = location.Region{
	Latitude:       12.9716,
	Longitude:      77.5946,
	LatitudeDelta:  0.0922,
	LongitudeDelta: 0.0421,
}

func main() {
	log.Println(banner)
	log.Println("🚌 FLEETSYNC DRIVER AGENT STARTING")
	log.Println(banner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadEnv()
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Live store unavailable: %v", err)
	}
	defer store.Close()

	raw := cfg.Waypoints
	if raw == "" {
		raw = defaultWaypoints
	}
	waypoints, err := location.ParseWaypoints(raw)
	if err != nil || len(waypoints) == 0 {
		log.Fatalf("❌ Invalid AGENT_WAYPOINTS: %v", err)
	}
	device := location.NewSimulatedDevice(waypoints, stepsPerLeg, cfg.LocationPermission)

	provider, manager := newSession(cfg)

	pusher := location.NewPusher(store, device, location.WithInterval(cfg.LocationPushInterval))
	detachPusher := pusher.Attach(manager)
	defer detachPusher()

	ownLocation := feed.FollowLocation(feed.NewLocationSubscriber(store), func(loc *models.DriverLocation, err error) {
		switch {
		case err != nil:
			log.Printf("⚠️  [AGENT] Location feed error: %v", err)
		case loc == nil:
			log.Println("📍 [AGENT] No location published yet")
		default:
			log.Printf("📍 [AGENT] Live location %.5f, %.5f (%s)", loc.CurrentLatitude, loc.CurrentLongitude, loc.LastUpdated)
		}
	})
	detachLocation := ownLocation.Attach(ctx, manager)
	defer detachLocation()

	activeTrips := feed.FollowTrips(feed.NewTripSubscriber(store), func(trips []models.Trip, err error) {
		if err != nil {
			log.Printf("⚠️  [AGENT] Trip feed error: %v", err)
			return
		}
		log.Printf("🧾 [AGENT] %d active trip(s)", len(trips))
		for _, t := range trips {
			log.Printf("   • %s %s (%s, %d pax)", t.ID, t.RouteName, t.Status, t.PassengerCount)
		}
	})
	detachTrips := activeTrips.Attach(ctx, manager)
	defer detachTrips()

	unsubscribeAuth := manager.OnAuthChanged(func(identity *models.Identity) {
		if identity == nil {
			log.Println("🔓 [AGENT] Signed out")
			return
		}
		log.Printf("🔐 [AGENT] Signed in as %s (%s)", identity.Email, identity.UID)
	})
	defer unsubscribeAuth()

	nav := navigation.New()
	unsubscribeNav := nav.OnChange(func(s navigation.State) {
		log.Printf("🧭 [AGENT] View: %s, panel open: %v", s.CurrentView, s.PanelOpen)
	})
	defer unsubscribeNav()

	region := location.InitialRegion(ctx, device, fallbackRegion)
	log.Printf("🗺️  [AGENT] Map centred on %.4f, %.4f", region.Latitude, region.Longitude)

	manager.Start(ctx)
	if err := signIn(ctx, cfg, manager, provider); err != nil {
		log.Printf("❌ [AGENT] %v", err)
	}

	console := newConsole(nav, manager, pusher)
	console.Run(ctx, os.Stdin)
	log.Println("👋 Driver agent stopped")
}

// newSession builds the identity provider and session manager. A stored
// AGENT_TOKEN is restored by Start; without one the agent signs in fresh.
func newSession(cfg *config.AgentConfig) (*auth.HTTPProvider, *auth.Manager) {
	provider := auth.NewHTTPProvider(cfg.APIURL, cfg.Token)
	return provider, auth.NewManager(provider, cfg.AuthInitTimeout)
}

func openStore(ctx context.Context, cfg *config.AgentConfig) (livestore.Store, error) {
	if cfg.LiveStoreBackend == config.LiveStoreMemory {
		log.Println("⚠️  Using in-process live store; nothing leaves this agent")
		return livestore.NewMemory(), nil
	}
	client, err := livestore.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return livestore.NewRedis(client, ""), nil
}

// signIn registers or signs in with the configured credentials. A failed
// profile save during registration is logged and does not undo the
// sign-up.
func signIn(ctx context.Context, cfg *config.AgentConfig, manager *auth.Manager, provider *auth.HTTPProvider) error {
	if manager.Current() != nil || cfg.Email == "" {
		return nil
	}
	if !cfg.Register {
		_, err := manager.SignIn(ctx, cfg.Email, cfg.Password)
		return err
	}

	if _, err := manager.SignUp(ctx, cfg.Email, cfg.Password); err != nil {
		return err
	}
	fullName := cfg.FullName
	update := models.ProfileUpdate{FullName: &fullName}
	if err := saveProfile(ctx, cfg.APIURL, provider.Token(), update); err != nil {
		log.Printf("⚠️  [AGENT] Profile save failed: %v", err)
	}
	return nil
}
