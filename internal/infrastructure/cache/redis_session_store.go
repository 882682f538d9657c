package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps the session in Redis so several terminals on a
// shared host see the same login. Keys are scoped per profile.
type RedisSessionStore struct {
	client    *redis.Client
	key       string
	ttl       time.Duration
	ownClient bool
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSessionStore connects to Redis and creates a store
func NewRedisSessionStore(cfg RedisConfig, keyPrefix, profile string, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := NewRedisSessionStoreWithClient(client, keyPrefix, profile, ttl)
	store.ownClient = true
	return store, nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix, profile string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = "dashboard:session:"
	}
	if profile == "" {
		profile = "default"
	}
	return &RedisSessionStore{
		client: client,
		key:    keyPrefix + profile,
		ttl:    ttl,
	}
}

// Save implements auth.SessionStore. The key expires with the token when the expiry is known.
func (s *RedisSessionStore) Save(ctx context.Context, snap auth.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ttl := s.ttl
	if !snap.ExpiresAt.IsZero() {
		if until := time.Until(snap.ExpiresAt); until > 0 && (ttl == 0 || until < ttl) {
			ttl = until
		}
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load implements auth.SessionStore
func (s *RedisSessionStore) Load(ctx context.Context) (*auth.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var snap auth.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &snap, nil
}

// Delete implements auth.SessionStore
func (s *RedisSessionStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis client when the store created it
func (s *RedisSessionStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

var _ auth.SessionStore = (*RedisSessionStore)(nil)
