package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltCatalogStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database folder, %v", err)
	}
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltCatalogStorage provides a bolt-based catalog store. The whole
// catalog document lives under a single key of the configured bucket.
func NewBoltCatalogStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) CatalogStore {
	return &boltCatalogStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based catalog storage.
func (bs *boltCatalogStorage) Close() error {
	return bs.client.Close()
}

// Load retrieves and decodes the catalog document from boltdb store.
func (bs *boltCatalogStorage) Load(_ context.Context) ([]Book, error) {
	// initialize a readable transaction.
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("%w: begin read transaction: %v", ErrCatalogIO, err)
	}
	defer tx.Rollback()

	bucket := tx.Bucket([]byte(bs.config.BucketName))
	if bucket == nil {
		return []Book{}, nil
	}
	// the returned slice is only valid during the transaction.
	return decodeCatalog(bucket.Get([]byte(bs.config.Key)))
}

// Save replaces the catalog document inside a single write transaction.
func (bs *boltCatalogStorage) Save(_ context.Context, books []Book) error {
	data, err := encodeCatalog(books, 0)
	if err != nil {
		return err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		bucket, errB := tx.CreateBucketIfNotExists([]byte(bs.config.BucketName))
		if errB != nil {
			return errB
		}
		return bucket.Put([]byte(bs.config.Key), data)
	})
	if err != nil {
		return fmt.Errorf("%w: bolt update: %v", ErrCatalogIO, err)
	}
	return nil
}
