package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketDocstrings = []byte("docstrings")

// BoltCache persists generated docstrings across runs, keyed by a digest of
// model, unit kind and source snippet. Opt-in: the default pipeline sends one
// fresh request per flagged unit and never consults a cache.
type BoltCache struct {
	db *bbolt.DB
}

func NewBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocstrings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

// Key derives the cache key for one generation request.
func Key(model, kindLabel, snippet string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + kindLabel + "\x00" + snippet))
	return hex.EncodeToString(hash[:])
}

func (c *BoltCache) Get(key string) (string, bool, error) {
	var text string
	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketDocstrings).Get([]byte(key)); v != nil {
			text = string(v)
			found = true
		}
		return nil
	})
	return text, found, err
}

func (c *BoltCache) Put(key, text string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocstrings).Put([]byte(key), []byte(text))
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
