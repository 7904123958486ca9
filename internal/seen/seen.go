// Package seen remembers content fingerprints across runs in Redis, so a job
// first ingested last week is still flagged when it shows up again today.
// Within a single run the dedup detector owns repost grouping; this store
// only adds the cross-run signal and the pipeline works without it.
package seen

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "careercopilot:seen:"

// Store is a Redis-backed fingerprint set with a TTL, so stale postings age
// out instead of flagging forever.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL (redis://host:port) and verifies
// connectivity.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("seen store: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("seen store: redis ping failed: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// Seen reports whether the fingerprint was stored by an earlier run. Lookup
// failures read as not-seen; the signal is best-effort.
func (s *Store) Seen(ctx context.Context, fingerprint string) bool {
	n, err := s.client.Exists(ctx, keyPrefix+fingerprint).Result()
	return err == nil && n > 0
}

// Mark stores the fingerprint with the listing id that first carried it.
func (s *Store) Mark(ctx context.Context, fingerprint, listingID string) error {
	return s.client.Set(ctx, keyPrefix+fingerprint, listingID, s.ttl).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
