package main

import (
	"fmt"

	"go.uber.org/zap"
)

// NewCatalogStore opens the catalog store selected by the storage driver setting.
func NewCatalogStore(logger *zap.Logger, config *Config) (CatalogStore, error) {
	switch config.Storage.Driver {
	case StorageDriverFile, "":
		return NewFileCatalogStorage(logger, &config.File), nil

	case StorageDriverBolt:
		client, err := GetBoltDBClient(&config.BoltDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
		}
		return NewBoltCatalogStorage(logger, &config.BoltDB, client), nil

	case StorageDriverRedis:
		client, err := GetRedisClient(&config.Redis)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		return NewRedisCatalogStorage(logger, client, config.Redis.Key), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
}
