package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const (
	metadataBucket = "metadata" // bucket for feature-metadata documents
	modelsBucket   = "models"   // bucket for serialized model blobs
)

// Cache is a bbolt fetch-through wrapper around another Store. A fetch
// that succeeds upstream refreshes the cached copy; a fetch that fails
// upstream falls back to the cached copy when one exists, so a restart
// can survive an artifact-server outage. The cache holds artifacts
// only, never request data.
type Cache struct {
	upstream Store
	db       *bbolt.DB
}

// NewCache opens or creates the cache file at path and wraps upstream.
func NewCache(upstream Store, path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open artifact cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return fmt.Errorf("create metadata bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(modelsBucket)); err != nil {
			return fmt.Errorf("create models bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{upstream: upstream, db: db}, nil
}

// Close closes the cache file.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Cache) Metadata(ctx context.Context, name string) ([]byte, error) {
	return c.through(ctx, metadataBucket, name, c.upstream.Metadata)
}

func (c *Cache) Model(ctx context.Context, name string) ([]byte, error) {
	return c.through(ctx, modelsBucket, name, c.upstream.Model)
}

func (c *Cache) through(ctx context.Context, bucket, name string, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	raw, err := fetch(ctx, name)
	if err == nil {
		if putErr := c.put(bucket, name, raw); putErr != nil {
			log.Warn().Err(putErr).Str("artifact", name).Msg("artifact cache write failed")
		}
		return raw, nil
	}

	cached, getErr := c.get(bucket, name)
	if getErr != nil {
		// No cached copy: surface the upstream failure.
		return nil, err
	}
	log.Warn().Err(err).Str("artifact", name).Msg("artifact fetch failed, serving cached copy")
	return cached, nil
}

func (c *Cache) put(bucket, name string, raw []byte) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(name), raw)
	})
}

func (c *Cache) get(bucket, name string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("artifact %s not cached", name)
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}
