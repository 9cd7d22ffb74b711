// Package slotlock provides a short-lived Redis lock per (doctor, instant)
// so booking checks for one slot run one at a time across instances.
package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrTimeout is returned when the slot stayed locked for the whole wait.
var ErrTimeout = errors.New("slotlock: timed out waiting for slot lock")

// release deletes the key only if it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
	log    zerolog.Logger
}

type Option func(*RedisLocker)

// WithLogger reports releases that failed; such a key stays until its TTL.
func WithLogger(l zerolog.Logger) Option {
	return func(r *RedisLocker) { r.log = l }
}

// NewRedisLocker holds each lock for at most ttl and waits up to wait to get
// one. Prefix may be empty.
func NewRedisLocker(client *redis.Client, prefix string, ttl, wait time.Duration, opts ...Option) *RedisLocker {
	if prefix == "" {
		prefix = "slot:"
	}
	l := &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
		poll:   25 * time.Millisecond,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *RedisLocker) key(doctorID string, at time.Time) string {
	return l.prefix + doctorID + ":" + at.UTC().Format(time.RFC3339Nano)
}

// Lock blocks until the slot is free, ctx is done or the wait runs out.
func (l *RedisLocker) Lock(ctx context.Context, doctorID string, at time.Time) (func(), error) {
	key := l.key(doctorID, at)
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("slotlock: acquire %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	// the caller's ctx may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := release.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Dur("ttl", l.ttl).Msg("slot lock release failed")
	}
}
