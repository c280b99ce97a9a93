package livestore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It backs tests and single-node runs.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	watchers    map[string]map[*watcher]struct{} // collection -> watchers
	closed      bool
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]interface{}),
		watchers:    make(map[string]map[*watcher]struct{}),
	}
}

func (m *Memory) Write(ctx context.Context, path string, value interface{}) error {
	collection, id, err := Split(path)
	if err != nil {
		return err
	}
	fields, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.child(collection)[id] = fields
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	collection, id, err := Split(path)
	if err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	children := m.child(collection)
	current, ok := children[id]
	if !ok {
		current = make(map[string]interface{})
	} else {
		current = copyFields(current)
	}
	for k, v := range patch {
		current[k] = v
	}
	children[id] = current
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Get(ctx context.Context, path string) (*Record, error) {
	collection, id, err := Split(path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	fields, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return &Record{ID: id, Data: copyFields(fields)}, nil
}

func (m *Memory) List(ctx context.Context, q Query) ([]Record, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	recs := make([]Record, 0, len(m.collections[q.Collection]))
	for id, fields := range m.collections[q.Collection] {
		recs = append(recs, Record{ID: id, Data: copyFields(fields)})
	}
	return q.filter(recs), nil
}

func (m *Memory) Subscribe(ctx context.Context, path string, fn RecordFunc) (Subscription, error) {
	collection, _, err := Split(path)
	if err != nil {
		return nil, err
	}
	return m.watch(ctx, collection, func(ctx context.Context) {
		fn(m.Get(ctx, path))
	})
}

func (m *Memory) SubscribeQuery(ctx context.Context, q Query, fn QueryFunc) (Subscription, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	return m.watch(ctx, q.Collection, func(ctx context.Context) {
		fn(m.List(ctx, q))
	})
}

// Watchers returns the number of live subscriptions.
func (m *Memory) Watchers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, set := range m.watchers {
		n += len(set)
	}
	return n
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	var all []*watcher
	for _, set := range m.watchers {
		for w := range set {
			all = append(all, w)
		}
	}
	m.mu.Unlock()

	for _, w := range all {
		w.Unsubscribe()
	}
	return nil
}

func (m *Memory) watch(ctx context.Context, collection string, deliver func(ctx context.Context)) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	var w *watcher
	w = startWatcher(ctx, deliver, func() {
		m.mu.Lock()
		delete(m.watchers[collection], w)
		if len(m.watchers[collection]) == 0 {
			delete(m.watchers, collection)
		}
		m.mu.Unlock()
	})
	if m.watchers[collection] == nil {
		m.watchers[collection] = make(map[*watcher]struct{})
	}
	m.watchers[collection][w] = struct{}{}
	return w, nil
}

func (m *Memory) notify(collection string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for w := range m.watchers[collection] {
		w.notify()
	}
}

// child returns the children map of collection; m.mu must be held.
func (m *Memory) child(collection string) map[string]map[string]interface{} {
	children, ok := m.collections[collection]
	if !ok {
		children = make(map[string]map[string]interface{})
		m.collections[collection] = children
	}
	return children
}
