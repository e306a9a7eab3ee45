package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per session, keyed session:{id}, holding the
// storage keys. Entries expire after the session window.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	fields, err := r.rdb.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return Session{}, err
	}
	if len(fields) == 0 {
		return Session{}, nil
	}
	return FromFields(fields), nil
}

// Set replaces the whole hash so keys dropped from s do not linger.
func (r *RedisStore) Set(ctx context.Context, id string, s Session) error {
	key := redisKey(id)
	fields := s.Fields()
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	return err
}

func (r *RedisStore) Clear(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, redisKey(id)).Err()
}
