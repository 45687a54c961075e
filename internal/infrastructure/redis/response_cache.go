package redisstore

import (
	"context"
	"errors"
	"time"

	"fxrates-etl/internal/infrastructure/httpx"

	"github.com/redis/go-redis/v9"
)

var _ httpx.Cache = (*ResponseCache)(nil)

// ResponseCache keeps upstream response bodies for TTL so reruns within the window
// do not hit the archive APIs again.
type ResponseCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{Client: client, TTL: ttl}
}

func (s *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *ResponseCache) Set(ctx context.Context, key string, body []byte) error {
	return s.Client.Set(ctx, key, body, s.TTL).Err()
}
