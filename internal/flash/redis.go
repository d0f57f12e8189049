package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps flash messages in Redis so any instance behind a load
// balancer can serve the page after the redirect.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(token string) string {
	return "flash:" + token
}

func (s *RedisStore) Put(ctx context.Context, msg Message) (string, error) {
	if msg.Text == "" {
		return "", ErrEmptyMessage
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode flash: %w", err)
	}

	token := newToken()
	if err := s.client.Set(ctx, key(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store flash: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Take(ctx context.Context, token string) (Message, bool, error) {
	if !validToken(token) {
		return Message{}, false, nil
	}

	data, err := s.client.GetDel(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, fmt.Errorf("take flash: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, false, fmt.Errorf("decode flash: %w", err)
	}
	return msg, true, nil
}
