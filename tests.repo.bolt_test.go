package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltStore returns a new instance of the bolt store in a temporary path.
func newTestBoltStore(t *testing.T) *boltCatalogStorage {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	testConfig := &BoltDBConfig{
		FilePath:   f.Name(),
		Timeout:    5 * time.Second,
		BucketName: "test.catalog",
		Key:        "books",
	}

	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt store")

	bs := &boltCatalogStorage{
		logger: zap.NewNop(),
		client: client,
		config: testConfig,
	}
	t.Cleanup(func() {
		bs.Close()
		os.Remove(testConfig.FilePath)
	})
	return bs
}

// Ensure a fresh bolt store holds an empty catalog.
func TestBoltStore_LoadEmpty(t *testing.T) {
	bs := newTestBoltStore(t)
	books, err := bs.Load(context.TODO())
	assert.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

// Ensure bolt store keeps the whole catalog under a single key.
func TestBoltStore_SaveAndLoad(t *testing.T) {
	bs := newTestBoltStore(t)
	books := []Book{bookDune, bookSapiens, bookCosmos}

	err := bs.Save(context.TODO(), books)
	require.NoError(t, err)

	loaded, err := bs.Load(context.TODO())
	assert.NoError(t, err)
	assert.Equal(t, books, loaded)

	// overwrite with a shorter catalog.
	err = bs.Save(context.TODO(), books[:1])
	require.NoError(t, err)
	loaded, err = bs.Load(context.TODO())
	assert.NoError(t, err)
	assert.Equal(t, books[:1], loaded)

	var keys int
	err = bs.client.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).ForEach(func(_, _ []byte) error {
			keys++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, keys)
}

// Ensure a corrupted document is reported as a parse failure.
func TestBoltStore_LoadMalformed(t *testing.T) {
	bs := newTestBoltStore(t)
	err := bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(bs.config.Key), []byte("{not json"))
	})
	require.NoError(t, err)

	books, err := bs.Load(context.TODO())
	assert.ErrorIs(t, err, ErrCatalogParse)
	assert.Nil(t, books)
}
