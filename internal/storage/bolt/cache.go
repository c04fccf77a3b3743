// Package bolt provides a bbolt-backed cache for upstream API responses.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("pokeapi_resources")

type entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Body      json.RawMessage `json:"body"`
}

// Cache persists response bodies to a BoltDB file keyed by URL.
// It is safe for concurrent use.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) a BoltDB database at path. Entries older than ttl
// are reported as misses; ttl <= 0 keeps entries forever.
//
// Postcondition: Returns an open Cache whose bucket exists, or a non-nil error.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt cache %q: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bolt bucket: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source used for expiry.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }

// Get returns the body stored for key. Stale or undecodable entries are misses.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if raw == nil {
			return nil
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil
		}
		if c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl {
			return nil
		}
		// raw is only valid inside the transaction.
		out = append([]byte(nil), e.Body...)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	return out, out != nil, nil
}

// Put stores body for key, stamped with the current time.
//
// Precondition: body must be valid JSON.
func (c *Cache) Put(_ context.Context, key string, body []byte) error {
	raw, err := json.Marshal(entry{FetchedAt: c.now().UTC(), Body: body})
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
}

// Purge deletes every entry older than the TTL and returns how many were removed.
func (c *Cache) Purge(_ context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	var removed int64
	err := c.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		var stale [][]byte
		if err := bkt.ForEach(func(k, v []byte) error {
			var e entry
			if json.Unmarshal(v, &e) != nil || c.now().Sub(e.FetchedAt) > c.ttl {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		removed = int64(len(stale))
		return nil
	})
	return removed, err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
