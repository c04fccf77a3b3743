package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/config"
	"github.com/cory-johannsen/pokemcp/internal/game/condition"
	"github.com/cory-johannsen/pokemcp/internal/mcpserver"
	"github.com/cory-johannsen/pokemcp/internal/observability"
	"github.com/cory-johannsen/pokemcp/internal/pokeapi"
	"github.com/cory-johannsen/pokemcp/internal/scripting"
	"github.com/cory-johannsen/pokemcp/internal/storage/bolt"
	"github.com/cory-johannsen/pokemcp/internal/storage/postgres"
	"github.com/cory-johannsen/pokemcp/internal/tools"
)

// purger is implemented by both cache backends.
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// components holds everything a command needs, built from one Config.
type components struct {
	cfg     config.Config
	logger  *zap.Logger
	cache   pokeapi.Cache
	client  *pokeapi.Client
	service *tools.Service
	// health holds dependency checks for the /healthz route.
	health map[string]mcpserver.HealthCheck

	closers []func()
}

// build wires logger, cache, classifier, client and tool service from cfg.
// The caller must Close the result.
func build(ctx context.Context, cfg config.Config) (*components, error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	c := &components{cfg: cfg, logger: logger, health: map[string]mcpserver.HealthCheck{}}
	c.closers = append(c.closers, func() { _ = logger.Sync() })

	if err := c.openCache(ctx); err != nil {
		c.Close()
		return nil, err
	}

	classifier, err := c.newClassifier()
	if err != nil {
		c.Close()
		return nil, err
	}

	c.client = pokeapi.NewClient(pokeapi.Options{
		BaseURL:     cfg.PokeAPI.BaseURL,
		Timeout:     cfg.PokeAPI.Timeout,
		MoveLimit:   cfg.PokeAPI.MoveLimit,
		Concurrency: cfg.PokeAPI.Concurrency,
		UserAgent:   cfg.PokeAPI.UserAgent,
		Cache:       c.cache,
		Logger:      logger.Named("pokeapi"),
	})
	c.service = tools.NewService(c.client,
		tools.WithClassifier(classifier),
		tools.WithSeed(cfg.Battle.Seed),
		tools.WithLogger(logger.Named("tools")),
	)
	return c, nil
}

func (c *components) openCache(ctx context.Context) error {
	switch c.cfg.Cache.Backend {
	case "bolt":
		cache, err := bolt.Open(c.cfg.Cache.BoltPath, c.cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("opening bolt cache: %w", err)
		}
		c.cache = cache
		c.closers = append(c.closers, func() {
			if err := cache.Close(); err != nil {
				c.logger.Warn("closing bolt cache", zap.Error(err))
			}
		})
		c.logger.Info("bolt cache opened",
			zap.String("path", c.cfg.Cache.BoltPath),
			zap.Duration("ttl", c.cfg.Cache.TTL),
		)
	case "postgres":
		pool, err := postgres.NewPool(ctx, c.cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		c.cache = pool.Resources(c.cfg.Cache.TTL)
		c.health["database"] = pool.Check
		c.closers = append(c.closers, pool.Close)
		c.logger.Info("postgres cache connected",
			zap.String("host", c.cfg.Database.Host),
			zap.Duration("ttl", c.cfg.Cache.TTL),
		)
	}
	return nil
}

func (c *components) newClassifier() (condition.Classifier, error) {
	if c.cfg.Battle.Classifier != "lua" {
		return condition.KeywordClassifier{}, nil
	}
	sc, err := scripting.LoadStatusClassifier(c.cfg.Battle.ClassifierScript, c.cfg.Battle.InstructionLimit, c.logger.Named("scripting"))
	if err != nil {
		return nil, fmt.Errorf("loading status classifier: %w", err)
	}
	c.closers = append(c.closers, sc.Close)
	return sc, nil
}

// Close releases resources in reverse order of acquisition.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
