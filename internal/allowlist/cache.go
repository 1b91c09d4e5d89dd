package allowlist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// notFoundMarker is cached for unknown IPs so repeated probes from the same
// address do not hammer the database.
const notFoundMarker = "__not_found__"

// CachedStore decorates a Store with a Redis cache. Cache errors degrade to
// the underlying store; they never fail a lookup on their own.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(ip string) string {
	return "allowlist:ip:" + ip
}

// FindByIP serves from cache when possible, falling back to the store.
func (s *CachedStore) FindByIP(ctx context.Context, ip string) (System, error) {
	key := cacheKey(ip)

	cached, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == notFoundMarker {
			return System{}, ErrNotFound
		}
		var system System
		if err := json.Unmarshal([]byte(cached), &system); err == nil {
			return system, nil
		}
		// Corrupt entry; fall through to the store and rewrite it.
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("allowlist cache read failed", "error", err)
	}

	system, err := s.next.FindByIP(ctx, ip)
	if errors.Is(err, ErrNotFound) {
		s.set(ctx, key, notFoundMarker)
		return System{}, ErrNotFound
	}
	if err != nil {
		return System{}, err
	}

	if payload, err := json.Marshal(system); err == nil {
		s.set(ctx, key, string(payload))
	}
	return system, nil
}

func (s *CachedStore) set(ctx context.Context, key, value string) {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.Warn("allowlist cache write failed", "error", err)
	}
}
