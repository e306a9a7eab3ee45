package database

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type DB struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
}

// Connect opens the activity log pool (skipped when postgresURL is empty) and
// the session Redis client. An unreachable Redis is not fatal: callers fall
// back to in-process state.
func Connect(ctx context.Context, postgresURL, redisAddr, redisPassword string) (*DB, error) {
	var pool *pgxpool.Pool
	if postgresURL != "" {
		p, err := pgxpool.New(ctx, postgresURL)
		if err != nil {
			return nil, err
		}
		pool = p
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing with degraded functionality", slog.Any("error", err))
		_ = rdb.Close()
		rdb = nil
	}

	return &DB{
		Postgres: pool,
		Redis:    rdb,
	}, nil
}

func (db *DB) Close() {
	if db.Postgres != nil {
		db.Postgres.Close()
	}
	if db.Redis != nil {
		db.Redis.Close()
	}
}
