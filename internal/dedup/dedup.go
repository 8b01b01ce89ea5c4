// Package dedup remembers which alert candidates have already been sent so
// consecutive daily runs do not re-announce the same event.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Alert keys expire once the event is long past; 60 days comfortably covers
// the 30-day collection window.
const keyTTL = 60 * 24 * time.Hour

// Deduplicator checks and records whether an alert candidate has been sent.
type Deduplicator struct {
	rdb *redis.Client
}

// New creates a Deduplicator backed by Redis.
func New(redisURL, password string) (*Deduplicator, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Deduplicator{rdb: rdb}, nil
}

// Close shuts down the Redis connection.
func (d *Deduplicator) Close() error {
	return d.rdb.Close()
}

// AlreadySent reports whether key was recorded by an earlier run. Redis
// being unreachable reads as "not sent": alerting is best-effort and a
// duplicate beats a silently dropped alert.
func (d *Deduplicator) AlreadySent(ctx context.Context, key string) bool {
	exists, err := d.rdb.Exists(ctx, key).Result()
	return err == nil && exists > 0
}

// Record marks key as sent.
func (d *Deduplicator) Record(ctx context.Context, key string) {
	d.rdb.Set(ctx, key, "1", keyTTL)
}

// Clear removes a key so the candidate can be alerted again.
func (d *Deduplicator) Clear(ctx context.Context, key string) {
	d.rdb.Del(ctx, key) //nolint:errcheck
}
