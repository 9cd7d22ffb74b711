package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"doctor-booking-api/internal/config"
	"doctor-booking-api/internal/slotlock"
	"doctor-booking-api/internal/store"
	"doctor-booking-api/internal/store/memory"
	"doctor-booking-api/internal/store/mongostore"
	"doctor-booking-api/internal/store/postgres"
)

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		st, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMongo:
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoTimeout)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// openLocker connects the Redis slot lock when REDIS_URL is set. A nil
// locker and a nil client mean none is configured.
func openLocker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*slotlock.RedisLocker, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("slot lock enabled")
	return slotlock.NewRedisLocker(client, "", cfg.SlotLockTTL, cfg.SlotLockWait, slotlock.WithLogger(log)), client, nil
}
