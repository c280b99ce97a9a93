package profile

import (
	"context"
	"sync"
	"time"

	"fleetsync-backend/internal/models"
)

type Memory struct {
	mu       sync.Mutex
	profiles map[string]models.DriverProfile
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]models.DriverProfile), now: time.Now}
}

// WithClock replaces the timestamp source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Upsert(ctx context.Context, uid string, update models.ProfileUpdate) (*models.DriverProfile, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	p, ok := m.profiles[uid]
	if !ok {
		p = models.DriverProfile{UID: uid, Status: "pending", CreatedAt: now}
	}
	update.Apply(&p)
	p.UpdatedAt = now
	m.profiles[uid] = p

	out := p
	return &out, nil
}

func (m *Memory) Get(ctx context.Context, uid string) (*models.DriverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
