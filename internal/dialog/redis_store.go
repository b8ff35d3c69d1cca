package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "toolbot:dialog:"

// RedisStore держит сессию под ключом с TTL = idle-таймаут; каждый Save продлевает его.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string { return redisKeyPrefix + strconv.FormatInt(userID, 10) }

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(s.Requester.UserID), raw, r.ttl).Err()
}

func (r *RedisStore) Reset(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, redisKey(userID)).Err()
}

// Expire ничего не делает: просроченные ключи удаляет сам redis.
func (r *RedisStore) Expire(context.Context, time.Duration) (int, error) { return 0, nil }

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
