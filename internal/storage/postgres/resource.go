package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceRepository caches upstream API response bodies in the
// pokeapi_resources table. It satisfies pokeapi.Cache.
type ResourceRepository struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

// NewResourceRepository creates a ResourceRepository backed by the given pool.
// Rows older than ttl are reported as misses; ttl <= 0 keeps rows forever.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewResourceRepository(db *pgxpool.Pool, ttl time.Duration) *ResourceRepository {
	return &ResourceRepository{db: db, ttl: ttl}
}

// Get returns the cached body for url.
//
// Postcondition: Returns (nil, false, nil) on a miss or a stale row.
func (r *ResourceRepository) Get(ctx context.Context, url string) ([]byte, bool, error) {
	var (
		body      []byte
		fetchedAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT body, fetched_at FROM pokeapi_resources WHERE url = $1`,
		url,
	).Scan(&body, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying resource: %w", err)
	}
	if r.ttl > 0 && time.Since(fetchedAt) > r.ttl {
		return nil, false, nil
	}
	return body, true, nil
}

// Put upserts body for url and refreshes its fetch time.
//
// Precondition: body must be valid JSON.
func (r *ResourceRepository) Put(ctx context.Context, url string, body []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pokeapi_resources (url, body, fetched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (url) DO UPDATE SET body = EXCLUDED.body, fetched_at = NOW()`,
		url, body,
	)
	if err != nil {
		return fmt.Errorf("saving resource: %w", err)
	}
	return nil
}

// Purge deletes rows older than the TTL and returns how many were removed.
func (r *ResourceRepository) Purge(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM pokeapi_resources WHERE fetched_at < NOW() - make_interval(secs => $1)`,
		r.ttl.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging resources: %w", err)
	}
	return tag.RowsAffected(), nil
}
