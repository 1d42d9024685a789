package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a TTL matching the session lifetime.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis wraps an existing Redis client.
func NewRedis(client *redis.Client) *RedisStore {
	if client == nil {
		panic("store: redis client cannot be nil")
	}
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return fmt.Sprintf("participant:%s", id)
}

// Load retrieves a session.
func (s *RedisStore) Load(ctx context.Context, id string) (*domain.Participant, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load participant session: %w", err)
	}
	p, err := decodeParticipant(data)
	if err != nil {
		return nil, err
	}
	if p.Expired(s.now()) {
		return nil, nil
	}
	return p, nil
}

// Save stores the session until its expiry.
func (s *RedisStore) Save(ctx context.Context, id string, p *domain.Participant) error {
	data, err := encodeParticipant(p)
	if err != nil {
		return err
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if p.ExpiresAt.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return s.Clear(ctx, id)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("save participant session: %w", err)
	}
	return nil
}

// Clear removes the session.
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("clear participant session: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
