package main

import (
	"context"
	"net"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	client := redis.NewClient(&redis.Options{Addr: addr})
	rs := NewRedisCatalogStorage(zap.NewNop(), client, "library:test:books")
	defer rs.Close()

	t.Run("Load Missing Catalog", func(t *testing.T) {
		books, err := rs.Load(context.Background())
		assert.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("Save And Load Catalog", func(t *testing.T) {
		books := []Book{bookDune, bookSapiens}
		require.NoError(t, rs.Save(context.Background(), books))
		loaded, err := rs.Load(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, books, loaded)
	})

	t.Run("Save Empty Catalog", func(t *testing.T) {
		require.NoError(t, rs.Save(context.Background(), nil))
		raw, err := client.Get(context.Background(), "library:test:books").Result()
		assert.NoError(t, err)
		assert.Equal(t, "[]", raw)
	})

	t.Run("Load Malformed Catalog", func(t *testing.T) {
		require.NoError(t, client.Set(context.Background(), "library:test:books", "[{", 0).Err())
		books, err := rs.Load(context.Background())
		assert.ErrorIs(t, err, ErrCatalogParse)
		assert.Nil(t, books)
	})
}
