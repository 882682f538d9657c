//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisSessionStore_Integration(t *testing.T) {
	client := startRedis(t)
	store := NewRedisSessionStoreWithClient(client, "test:session:", "ops", time.Hour)

	exerciseStore(t, store)

	ctx := context.Background()
	snap := sampleSnapshot()
	snap.ExpiresAt = time.Now().Add(10 * time.Minute)
	require.NoError(t, store.Save(ctx, snap))

	ttl, err := client.TTL(ctx, "test:session:ops").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
	assert.Greater(t, ttl, 9*time.Minute)

	other := NewRedisSessionStoreWithClient(client, "test:session:", "sales", time.Hour)
	_, err = other.Load(ctx)
	assert.Error(t, err, "profiles do not share sessions")
}
