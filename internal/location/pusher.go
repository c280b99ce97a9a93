package location

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"

	"github.com/mmcloughlin/geohash"
)

// DefaultInterval is how often an active driver's position is published.
const DefaultInterval = 7 * time.Second

const geohashPrecision = 7 // ~150m cells

type State int

const (
	StateIdle State = iota
	StatePermissionPending
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePermissionPending:
		return "permission_pending"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// LocationPath is where a driver's live position lives.
func LocationPath(driverID string) string {
	return livestore.Join("locations", driverID)
}

// Pusher publishes the signed-in driver's position on a fixed cadence.
// At most one push loop runs at a time; changing or clearing the identity
// stops the running loop before anything else happens.
type Pusher struct {
	store    livestore.Store
	device   Device
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    State
	identity *models.Identity
	session  *session
	gen      uint64

	running atomic.Int32
	onState func(State) // test hook
}

// session is one identity's permission request plus push loop.
type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Pusher)

// WithInterval overrides the publish cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Pusher) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pusher) { p.now = now }
}

func NewPusher(store livestore.Store, device Device, opts ...Option) *Pusher {
	p := &Pusher{
		store:    store,
		device:   device,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach drives the pusher from the session manager. The returned function
// detaches it and stops any running loop.
func (p *Pusher) Attach(manager *auth.Manager) func() {
	unsubscribe := manager.OnAuthChanged(p.SetIdentity)
	return func() {
		unsubscribe()
		p.Stop()
	}
}

// SetIdentity reacts to an identity transition. A nil identity stops
// pushing; a new identity restarts the permission flow for it.
func (p *Pusher) SetIdentity(identity *models.Identity) {
	if identity != nil && identity.UID == "" {
		log.Println("⚠️  [LOCATION] Ignoring identity without a user id")
		identity = nil
	}

	p.mu.Lock()
	if models.SameIdentity(p.identity, identity) {
		p.mu.Unlock()
		return
	}
	old := p.session
	p.session = nil
	p.identity = identity
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	stopSession(old)

	if identity == nil {
		p.setState(gen, StateIdle)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	if p.gen != gen {
		// Another transition won the race.
		p.mu.Unlock()
		cancel()
		return
	}
	p.session = s
	p.mu.Unlock()

	p.setState(gen, StatePermissionPending)
	go p.run(ctx, gen, identity.UID, s)
}

// Stop tears down the running session, if any, and returns to Idle.
func (p *Pusher) Stop() {
	p.SetIdentity(nil)
}

// State returns the current state.
func (p *Pusher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ActiveSessions returns the number of running push loops.
func (p *Pusher) ActiveSessions() int {
	return int(p.running.Load())
}

func stopSession(s *session) {
	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (p *Pusher) setState(gen uint64, state State) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.state = state
	hook := p.onState
	p.mu.Unlock()

	if hook != nil {
		hook(state)
	}
}

func (p *Pusher) run(ctx context.Context, gen uint64, driverID string, s *session) {
	defer close(s.done)
	if ctx.Err() != nil {
		return
	}

	granted, err := p.device.RequestForegroundPermission(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil || !granted {
		if err != nil {
			log.Printf("⚠️  [LOCATION] Permission request failed for %s: %v (location sharing off)", driverID, err)
		} else {
			log.Printf("⚠️  [LOCATION] Location permission denied for %s (location sharing off)", driverID)
		}
		p.setState(gen, StateIdle)
		return
	}

	p.running.Add(1)
	defer p.running.Add(-1)
	p.setState(gen, StateActive)
	log.Printf("📍 [LOCATION] Sharing location for %s every %s", driverID, p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.publish(ctx, driverID)
	for {
		select {
		case <-ctx.Done():
			log.Printf("🔴 [LOCATION] Stopped sharing location for %s", driverID)
			return
		case <-ticker.C:
			p.publish(ctx, driverID)
		}
	}
}

// publish reads one position and writes it. Failures are logged and the
// loop carries on with the next tick.
func (p *Pusher) publish(ctx context.Context, driverID string) {
	pos, err := p.device.CurrentPosition(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️  [LOCATION] Position read failed: %v", err)
		}
		return
	}

	if err := Publish(ctx, p.store, driverID, pos, p.now()); err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️  [LOCATION] Publish failed for %s: %v", driverID, err)
		}
	}
}

// NewDriverLocation builds the record published for driverID at pos.
func NewDriverLocation(driverID string, pos Position, at time.Time) models.DriverLocation {
	return models.DriverLocation{
		DriverID:         driverID,
		CurrentLatitude:  pos.Latitude,
		CurrentLongitude: pos.Longitude,
		LastUpdated:      at.UTC().Format(time.RFC3339Nano),
		Geohash:          geohash.EncodeWithPrecision(pos.Latitude, pos.Longitude, geohashPrecision),
	}
}

// Publish overwrites driverID's location record with pos.
func Publish(ctx context.Context, store livestore.Store, driverID string, pos Position, at time.Time) error {
	return store.Write(ctx, LocationPath(driverID), NewDriverLocation(driverID, pos, at))
}
