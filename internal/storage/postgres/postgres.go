// Package postgres stores upstream PokeAPI responses in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/pokemcp/internal/config"
)

// DefaultHealthTimeout bounds Check.
const DefaultHealthTimeout = 2 * time.Second

// applicationName tags server-side sessions so cache traffic is identifiable
// in pg_stat_activity.
const applicationName = "pokemcp-cache"

// Pool is the connection pool shared by the cache repository and the health
// route.
type Pool struct {
	pool *pgxpool.Pool
	host string
}

// NewPool connects to the cache database described by cfg.
//
// Precondition: cfg must pass config.Config.Validate for the postgres backend.
// Postcondition: Returns a pinged Pool or a non-nil error naming the host.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool for %s: %w", cfg.Host, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database at %s: %w", cfg.Host, err)
	}
	return &Pool{pool: pool, host: cfg.Host}, nil
}

// Resources returns the response cache repository over this pool.
func (p *Pool) Resources(ttl time.Duration) *ResourceRepository {
	return NewResourceRepository(p.pool, ttl)
}

// Health pings the database within timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database at %s unreachable: %w", p.host, err)
	}
	return nil
}

// Check is Health with DefaultHealthTimeout, shaped for the /healthz route.
func (p *Pool) Check(ctx context.Context) error {
	return p.Health(ctx, DefaultHealthTimeout)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
