package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCatalogStorage struct {
	logger *zap.Logger
	client *redis.Client
	key    string
}

// NewRedisCatalogStorage provides a redis-based catalog store. The whole
// catalog document is kept as a single string value.
func NewRedisCatalogStorage(logger *zap.Logger, client *redis.Client, key string) CatalogStore {
	return &redisCatalogStorage{
		logger: logger,
		client: client,
		key:    key,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		PoolTimeout:  config.PoolTimeout,
		Password:     config.Password,
		Username:     config.Username,
		DB:           config.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Load fetches and decodes the catalog document.
func (rs *redisCatalogStorage) Load(ctx context.Context) ([]Book, error) {
	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", ErrCatalogIO, rs.key, err)
	}
	return decodeCatalog(data)
}

// Save overwrites the catalog document.
func (rs *redisCatalogStorage) Save(ctx context.Context, books []Book) error {
	data, err := encodeCatalog(books, 0)
	if err != nil {
		return err
	}
	if err = rs.client.Set(ctx, rs.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrCatalogIO, rs.key, err)
	}
	return nil
}

// Close releases the redis connections pool.
func (rs *redisCatalogStorage) Close() error {
	return rs.client.Close()
}
