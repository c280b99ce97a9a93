package livestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "livestore"

// maxPatchRetries bounds optimistic-lock retries when two writers patch the
// same record at once.
const maxPatchRetries = 5

// Redis is a Store backed by Redis. Each collection is one hash whose
// fields are child ids and whose values are JSON objects. Every change is
// announced with PUBLISH on the collection's channel carrying the child id.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. prefix namespaces keys and channels.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// ConnectRedis opens a client from a redis:// URL and checks it with PING.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Printf("✅ Connected to Redis at %s", opts.Addr)
	return client, nil
}

func (s *Redis) key(collection string) string     { return s.prefix + ":data:" + collection }
func (s *Redis) channel(collection string) string { return s.prefix + ":changes:" + collection }

func (s *Redis) Write(ctx context.Context, path string, value interface{}) error {
	collection, id, err := Split(path)
	if err != nil {
		return err
	}
	fields, err := normalize(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(collection), id, raw)
		pipe.Publish(ctx, s.channel(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *Redis) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	collection, id, err := Split(path)
	if err != nil {
		return err
	}
	patch, err := normalize(fields)
	if err != nil {
		return err
	}
	key := s.key(collection)

	apply := func(tx *redis.Tx) error {
		current := make(map[string]interface{})
		raw, err := tx.HGet(ctx, key, id).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("corrupt record %s: %w", path, err)
			}
		}
		for k, v := range patch {
			current[k] = v
		}
		merged, err := json.Marshal(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, merged)
			pipe.Publish(ctx, s.channel(collection), id)
			return nil
		})
		return err
	}

	for i := 0; i < maxPatchRetries; i++ {
		err = s.client.Watch(ctx, apply, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", path, err)
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, path string) (*Record, error) {
	collection, id, err := Split(path)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.HGet(ctx, s.key(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec := Record{ID: id}
	if err := json.Unmarshal(raw, &rec.Data); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", path, err)
	}
	return &rec, nil
}

func (s *Redis) List(ctx context.Context, q Query) ([]Record, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	all, err := s.client.HGetAll(ctx, s.key(q.Collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Collection, err)
	}
	recs := make([]Record, 0, len(all))
	for id, raw := range all {
		rec := Record{ID: id}
		if err := json.Unmarshal([]byte(raw), &rec.Data); err != nil {
			log.Printf("⚠️  Skipping corrupt record %s/%s: %v", q.Collection, id, err)
			continue
		}
		recs = append(recs, rec)
	}
	return q.filter(recs), nil
}

func (s *Redis) Subscribe(ctx context.Context, path string, fn RecordFunc) (Subscription, error) {
	collection, id, err := Split(path)
	if err != nil {
		return nil, err
	}
	return s.watch(ctx, collection, func(changed string) bool { return changed == id }, func(ctx context.Context) {
		fn(s.Get(ctx, path))
	})
}

func (s *Redis) SubscribeQuery(ctx context.Context, q Query, fn QueryFunc) (Subscription, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	return s.watch(ctx, q.Collection, func(string) bool { return true }, func(ctx context.Context) {
		fn(s.List(ctx, q))
	})
}

// watch subscribes to the collection channel before the first read so no
// change between the read and the subscription is lost.
func (s *Redis) watch(ctx context.Context, collection string, relevant func(id string) bool, deliver func(ctx context.Context)) (Subscription, error) {
	pubsub := s.client.Subscribe(ctx, s.channel(collection))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	w := startWatcher(ctx, deliver, func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("⚠️  Error closing subscription on %s: %v", collection, err)
		}
	})

	messages := pubsub.Channel()
	go func() {
		for msg := range messages {
			if relevant(msg.Payload) {
				w.notify()
			}
		}
	}()
	return w, nil
}

// Close closes the underlying client.
func (s *Redis) Close() error {
	return s.client.Close()
}
