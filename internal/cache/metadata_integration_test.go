//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/papersources"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestMetadataCache_RoundTrip(t *testing.T) {
	addr := startRedis(t)
	client := redis.NewClient(&redis.Options{Addr: addr})
	c := newMetadataCache(client, time.Minute, zerolog.Nop())
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	id := domain.Identifier{Kind: domain.IdentifierDOI, Value: "10.1/x"}
	_, ok := c.Get(ctx, id)
	assert.False(t, ok)

	year := 2020
	c.Set(ctx, id, &papersources.Metadata{Source: "openalex", Title: "X", Year: &year, Authors: []string{"A"}})

	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, []string{"A"}, got.Authors)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2020, *got.Year)

	ttl, err := client.TTL(ctx, MetadataKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 30*time.Second)

	require.NoError(t, client.Set(ctx, MetadataKey(id), "{broken", time.Minute).Err())
	_, ok = c.Get(ctx, id)
	assert.False(t, ok)
	exists, err := client.Exists(ctx, MetadataKey(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
