package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"fleetsync-backend/internal/models"
)

const defaultInitTimeout = 10 * time.Second

// Listener receives the signed-in identity, or nil when signed out.
type Listener func(identity *models.Identity)

// Unsubscribe removes a listener. Calling it more than once is harmless.
type Unsubscribe func()

// Manager owns the signed-in identity and fans every transition out to its
// listeners. Listeners run one at a time in registration order and must
// not block.
type Manager struct {
	provider    Provider
	initTimeout time.Duration

	mu        sync.Mutex
	ready     bool
	identity  *models.Identity
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64

	// notifyMu keeps transitions from interleaving their callbacks.
	notifyMu sync.Mutex
}

// NewManager creates a manager over provider. A nil provider is allowed
// and means the identity service failed to initialise: Start still makes
// the manager ready, signed out.
func NewManager(provider Provider, initTimeout time.Duration) *Manager {
	if initTimeout <= 0 {
		initTimeout = defaultInitTimeout
	}
	return &Manager{
		provider:    provider,
		initTimeout: initTimeout,
		listeners:   make(map[uint64]Listener),
	}
}

// Start restores any persisted session and marks the manager ready. Every
// listener registered so far receives the resulting state. Failures or a
// provider that does not answer within the init timeout leave the manager
// signed out rather than pending.
func (m *Manager) Start(ctx context.Context) {
	var identity *models.Identity

	if m.provider == nil {
		log.Println("⚠️  [AUTH] No identity provider available, continuing signed out")
	} else {
		restoreCtx, cancel := context.WithTimeout(ctx, m.initTimeout)
		defer cancel()

		type result struct {
			identity *models.Identity
			err      error
		}
		done := make(chan result, 1)
		go func() {
			id, err := m.provider.Restore(restoreCtx)
			done <- result{id, err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				log.Printf("⚠️  [AUTH] Session restore failed: %v (continuing signed out)", r.err)
			} else {
				identity = r.identity
			}
		case <-restoreCtx.Done():
			log.Printf("⚠️  [AUTH] Session restore timed out after %s (continuing signed out)", m.initTimeout)
		}
	}

	m.transition(identity, true)
}

// OnAuthChanged registers fn. If the manager is ready, fn is called right
// away with the current identity; otherwise it is called once Start
// finishes. fn is called again on every sign-in and sign-out.
func (m *Manager) OnAuthChanged(fn Listener) Unsubscribe {
	m.notifyMu.Lock()
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.order = append(m.order, id)
	ready, current := m.ready, m.identity
	m.mu.Unlock()

	if ready {
		fn(current)
	}
	m.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			for i, lid := range m.order {
				if lid == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
			m.mu.Unlock()
		})
	}
}

// Current returns the signed-in identity, or nil.
func (m *Manager) Current() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

func (m *Manager) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	if m.provider == nil {
		return nil, ErrNotSignedIn
	}
	identity, err := m.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.transition(identity, false)
	return identity, nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	if m.provider == nil {
		return nil, ErrNotSignedIn
	}
	identity, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.transition(identity, false)
	return identity, nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	if m.provider != nil {
		if err := m.provider.SignOut(ctx); err != nil {
			return err
		}
	}
	m.transition(nil, false)
	return nil
}

// transition stores identity and notifies listeners when the state changed
// (or unconditionally when the manager becomes ready).
func (m *Manager) transition(identity *models.Identity, becomingReady bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	wasReady := m.ready
	if becomingReady && wasReady {
		// A sign-in already made the manager ready; keep that state.
		m.mu.Unlock()
		return
	}
	changed := !models.SameIdentity(m.identity, identity)
	m.identity = identity
	m.ready = true
	listeners := make([]Listener, 0, len(m.order))
	for _, id := range m.order {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	if wasReady && !changed {
		return
	}
	if identity != nil {
		log.Printf("🔐 [AUTH] Signed in: %s (%s)", identity.Email, identity.UID)
	} else {
		log.Println("🔓 [AUTH] Signed out")
	}
	for _, fn := range listeners {
		fn(identity)
	}
}
