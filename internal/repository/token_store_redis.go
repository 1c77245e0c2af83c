package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore returns a store keeping the token under prefix+TokenKey.
// The key has no TTL; expiry is the server's decision, not the store's.
func NewRedisTokenStore(client *redis.Client, prefix string) TokenStore {
	return &redisTokenStore{client: client, key: prefix + TokenKey}
}

func (s *redisTokenStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get token: %w", err)
	}
	return token, true, nil
}

func (s *redisTokenStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (s *redisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
