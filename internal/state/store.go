// Package state holds the per-user reactive stores: session and onboarding
// accumulator, display theme, and language. Each store exposes synchronous
// getters over an in-memory mirror and asynchronous setters that persist to
// Redis first and then update memory. There is no cross-store
// transactionality; a crash between the two steps leaves the persisted and
// in-memory values briefly inconsistent until the next load, which is
// acceptable for preference data.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Store persists one small value per key and mirrors it in memory.
type Store[T any] struct {
	client   rueidis.Client
	prefix   string
	fallback T
	logger   *zap.Logger

	mu      sync.RWMutex
	cache   map[string]T
	subs    map[int]func(key string, value T)
	nextSub int
}

// NewStore creates a store under the given Redis key prefix. Keys that were
// never set read as the fallback value.
func NewStore[T any](client rueidis.Client, prefix string, fallback T, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		client:   client,
		prefix:   prefix,
		fallback: fallback,
		logger:   logger.Named("state_" + prefix),
		cache:    make(map[string]T),
		subs:     make(map[int]func(key string, value T)),
	}
}

// Get returns the in-memory value for the key, or the fallback when the key
// was never set or loaded. Never blocks.
func (s *Store[T]) Get(key string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.cache[key]; ok {
		return value
	}

	return s.fallback
}

// Fetch returns the in-memory value for the key, falling back to the
// persisted copy on a miss so values survive process restarts. Load
// failures yield the fallback; preference reads never fail a request.
func (s *Store[T]) Fetch(ctx context.Context, key string) T {
	s.mu.RLock()
	value, ok := s.cache[key]
	s.mu.RUnlock()

	if ok {
		return value
	}

	value, err := s.Load(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to load persisted value",
			zap.String("key", key),
			zap.Error(err))

		return s.fallback
	}

	return value
}

// Load fetches the persisted value into memory and returns it. A missing key
// is a valid empty result yielding the fallback, not an error.
func (s *Store[T]) Load(ctx context.Context, key string) (T, error) {
	cmd := s.client.B().Get().Key(s.redisKey(key)).Build()

	raw, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return s.fallback, nil
		}

		return s.fallback, fmt.Errorf("failed to load %s: %w", s.redisKey(key), err)
	}

	var value T
	if err := sonic.Unmarshal(raw, &value); err != nil {
		return s.fallback, fmt.Errorf("failed to decode %s: %w", s.redisKey(key), err)
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return value, nil
}

// Set persists the value and then updates the in-memory mirror. Subscribers
// are notified only after both steps succeed.
func (s *Store[T]) Set(ctx context.Context, key string, value T) error {
	payload, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.redisKey(key), err)
	}

	cmd := s.client.B().Set().Key(s.redisKey(key)).Value(string(payload)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to persist %s: %w", s.redisKey(key), err)
	}

	s.mu.Lock()
	s.cache[key] = value

	subs := make([]func(string, T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key, value)
	}

	return nil
}

// Delete removes the persisted value and the in-memory mirror.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	cmd := s.client.B().Del().Key(s.redisKey(key)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.redisKey(key), err)
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	return nil
}

// Subscribe registers a callback invoked after every successful Set. The
// returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func(key string, value T)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store[T]) redisKey(key string) string {
	return s.prefix + ":" + key
}
