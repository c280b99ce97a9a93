package feed

import (
	"context"
	"log"
	"sync"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"
)

// SubscribeFunc opens a subscription for one driver.
type SubscribeFunc func(ctx context.Context, driverID string) (livestore.Subscription, error)

// Follower holds at most one subscription and moves it from driver to
// driver. The previous subscription is always torn down before the next
// one opens.
type Follower struct {
	subscribe SubscribeFunc

	mu       sync.Mutex
	driverID string
	sub      livestore.Subscription
}

func NewFollower(subscribe SubscribeFunc) *Follower {
	return &Follower{subscribe: subscribe}
}

// FollowLocation returns a Follower delivering driver locations to fn.
func FollowLocation(s *LocationSubscriber, fn LocationFunc) *Follower {
	return NewFollower(func(ctx context.Context, driverID string) (livestore.Subscription, error) {
		return s.Subscribe(ctx, driverID, fn)
	})
}

// FollowTrips returns a Follower delivering active trips to fn.
func FollowTrips(s *TripSubscriber, fn TripsFunc) *Follower {
	return NewFollower(func(ctx context.Context, driverID string) (livestore.Subscription, error) {
		return s.Subscribe(ctx, driverID, fn)
	})
}

// Follow switches to driverID. Following the current driver is a no-op; an
// empty id only tears the current subscription down.
func (f *Follower) Follow(ctx context.Context, driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sub != nil && f.driverID == driverID {
		return nil
	}
	if f.sub != nil {
		f.sub.Unsubscribe()
		f.sub = nil
	}
	f.driverID = ""
	if driverID == "" {
		return nil
	}

	sub, err := f.subscribe(ctx, driverID)
	if err != nil {
		return err
	}
	f.sub = sub
	f.driverID = driverID
	return nil
}

// Driver returns the driver currently followed, or "".
func (f *Follower) Driver() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.driverID
}

// Stop tears down the current subscription.
func (f *Follower) Stop() {
	f.Follow(context.Background(), "")
}

// Attach makes the follower track the signed-in driver. The returned
// function detaches it and stops following.
func (f *Follower) Attach(ctx context.Context, manager *auth.Manager) func() {
	unsubscribe := manager.OnAuthChanged(func(identity *models.Identity) {
		driverID := ""
		if identity != nil {
			driverID = identity.UID
		}
		if err := f.Follow(ctx, driverID); err != nil {
			log.Printf("⚠️  [FEED] Could not follow driver %s: %v", driverID, err)
		}
	})
	return func() {
		unsubscribe()
		f.Stop()
	}
}
