// Package pokeapi adapts the public PokeAPI REST service into the shapes the
// tool server needs: the get_pokemon_info payload and battle combatants.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults applied by NewClient to zero-valued Options fields.
const (
	DefaultBaseURL     = "https://pokeapi.co/api/v2"
	DefaultTimeout     = 30 * time.Second
	DefaultMoveLimit   = 10
	DefaultConcurrency = 4
	DefaultUserAgent   = "poke-mcp"
)

// Cache stores raw response bodies keyed by absolute URL. Implementations own
// expiry; Get reports a miss for stale entries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// MoveLimit caps the moves described by GetPokemonInfo. Zero uses
	// DefaultMoveLimit; negative describes no moves.
	MoveLimit int
	// Concurrency bounds parallel ability and move lookups.
	Concurrency int
	UserAgent   string
	// Cache is optional.
	Cache Cache
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a read-only PokeAPI client. It is safe for concurrent use.
type Client struct {
	client      *http.Client
	baseURL     string
	moveLimit   int
	concurrency int
	userAgent   string
	cache       Cache
	logger      *zap.Logger
}

// NewClient builds a Client, filling unset Options with the package defaults.
//
// Postcondition: Returns a non-nil Client.
func NewClient(opts Options) *Client {
	c := &Client{
		client:      opts.HTTPClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		moveLimit:   opts.MoveLimit,
		concurrency: opts.Concurrency,
		userAgent:   opts.UserAgent,
		cache:       opts.Cache,
		logger:      opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.moveLimit == 0 {
		c.moveLimit = DefaultMoveLimit
	}
	if c.moveLimit < 0 {
		c.moveLimit = 0
	}
	if c.concurrency < 1 {
		c.concurrency = DefaultConcurrency
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// resourceURL builds base/kind/name with name lowercased, trimmed and escaped.
func (c *Client) resourceURL(kind, name string) (string, error) {
	name = normalizeName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return fmt.Sprintf("%s/%s/%s", c.baseURL, kind, url.PathEscape(name)), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// get fetches url and decodes the JSON body into v, consulting the cache first.
//
// Postcondition: Returns *RequestError on transport failure, *UpstreamError on
// a non-200 status, and an ErrMalformed-wrapped error on undecodable bodies.
func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	if body, ok := c.cached(ctx, rawURL); ok {
		if err := json.Unmarshal(body, v); err == nil {
			return nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("url", rawURL))
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &RequestError{URL: rawURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &RequestError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("pokeapi request",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{URL: rawURL, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrMalformed, rawURL, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, rawURL, body); err != nil {
			c.logger.Warn("cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, rawURL string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, rawURL)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}
	if ok {
		c.logger.Debug("pokeapi cache hit", zap.String("url", rawURL))
	}
	return body, ok
}

func (c *Client) fetchPokemon(ctx context.Context, name string) (pokemonResource, error) {
	u, err := c.resourceURL("pokemon", name)
	if err != nil {
		return pokemonResource{}, err
	}
	var p pokemonResource
	if err := c.get(ctx, u, &p); err != nil {
		return pokemonResource{}, err
	}
	return p, nil
}
