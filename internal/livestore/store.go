package livestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths with fewer than two segments or
	// with an empty segment. A missing driver id therefore never resolves
	// to a shared key.
	ErrInvalidPath = errors.New("livestore: invalid path")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("livestore: store closed")
)

// Record is one stored child: its id (last path segment) and its fields.
type Record struct {
	ID   string
	Data map[string]interface{}
}

// Decode converts the record into v, injecting the id under "id".
func (r *Record) Decode(v interface{}) error {
	merged := make(map[string]interface{}, len(r.Data)+1)
	for k, val := range r.Data {
		merged[k] = val
	}
	merged["id"] = r.ID

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return nil
}

// Query selects the children of a collection, optionally filtered by a
// single equality condition. The store supports no more than one filter.
type Query struct {
	Collection string
	Field      string      // empty means no filter
	Equals     interface{} // compared after JSON normalisation
}

// Subscription is the handle returned by every subscribe call.
// Unsubscribe stops delivery and waits for an in-flight callback to return,
// so it must not be called from inside the subscription's own callback.
type Subscription interface {
	Unsubscribe()
}

// RecordFunc receives the latest state of a single record (nil if absent).
type RecordFunc func(rec *Record, err error)

// QueryFunc receives the full result set of a query on every change.
type QueryFunc func(recs []Record, err error)

// Store is the realtime record store the driver feeds run on.
type Store interface {
	// Write replaces the record at path.
	Write(ctx context.Context, path string, value interface{}) error
	// Patch merges fields into the record at path, creating it if needed.
	Patch(ctx context.Context, path string, fields map[string]interface{}) error
	// Get returns the record at path, or nil if there is none.
	Get(ctx context.Context, path string) (*Record, error)
	// List runs q once.
	List(ctx context.Context, q Query) ([]Record, error)
	// Subscribe delivers the record at path now and after every change.
	Subscribe(ctx context.Context, path string, fn RecordFunc) (Subscription, error)
	// SubscribeQuery delivers the result of q now and after every change
	// in the collection.
	SubscribeQuery(ctx context.Context, q Query, fn QueryFunc) (Subscription, error)
	Close() error
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split validates path and returns its collection (everything but the last
// segment) and child id.
func Split(path string) (collection, id string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

func validCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidPath)
	}
	for _, s := range strings.Split(collection, "/") {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
		}
	}
	return nil
}

// normalize turns any JSON-encodable value into a field map.
func normalize(value interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("value must encode to an object: %w", err)
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return fields, nil
}

// matches reports whether rec satisfies the equality filter of q.
func (q Query) matches(rec Record) bool {
	if q.Field == "" {
		return true
	}
	got, ok := rec.Data[q.Field]
	if !ok {
		return false
	}
	a, errA := json.Marshal(got)
	b, errB := json.Marshal(q.Equals)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

// filter applies q to recs and orders the result by id.
func (q Query) filter(recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if q.matches(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyFields(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
