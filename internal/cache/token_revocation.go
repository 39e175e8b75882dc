package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TokenRevocationList remembers logged-out token ids until the tokens would
// have expired anyway.
type TokenRevocationList struct {
	client *redisv9.Client
	prefix string
}

func NewTokenRevocationList(client *redisv9.Client, prefix string) *TokenRevocationList {
	if prefix == "" {
		prefix = "warbler:auth:revoked"
	}
	return &TokenRevocationList{client: client, prefix: prefix}
}

func (l *TokenRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token failed: %w", err)
	}
	return nil
}

func (l *TokenRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	exists, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check revoked token failed: %w", err)
	}
	return exists > 0, nil
}

func (l *TokenRevocationList) key(tokenID string) string {
	return fmt.Sprintf("%s:%s", l.prefix, tokenID)
}
