//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/kmedi-tour/internal/storage"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Options{Addr: startRedis(t), TTL: time.Hour})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "kmedi-wishlist/a")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "kmedi-wishlist/a", []byte(`{"items":[]}`)))
	got, err := s.Get(ctx, "kmedi-wishlist/a")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(got))

	ttl, err := s.client.TTL(ctx, "kmedi-wishlist/a").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, "kmedi-wishlist/a"))
	_, err = s.Get(ctx, "kmedi-wishlist/a")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
