// Package config provides Viper-based configuration loading for the Pokémon
// tool server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	// Name is the server name advertised to MCP clients.
	Name string `mapstructure:"name"`
	// Version is the server version advertised to MCP clients.
	Version string `mapstructure:"version"`
	// Transport selects the MCP transport: "stdio" or "sse".
	Transport string `mapstructure:"transport"`
	// Host is the bind address for the SSE transport.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the SSE transport.
	Port int `mapstructure:"port"`
	// BaseURL is the externally reachable URL advertised in SSE endpoint events.
	// Empty derives it from Host and Port.
	BaseURL string `mapstructure:"base_url"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PublicURL returns BaseURL, or http://Addr() when BaseURL is empty.
func (s ServerConfig) PublicURL() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	return "http://" + s.Addr()
}

// PokeAPIConfig holds upstream data-source settings.
type PokeAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// MoveLimit caps the number of moves described by get_pokemon_info.
	MoveLimit int `mapstructure:"move_limit"`
	// Concurrency bounds parallel ability and move lookups.
	Concurrency int    `mapstructure:"concurrency"`
	UserAgent   string `mapstructure:"user_agent"`
}

// CacheConfig selects and tunes the upstream response cache.
type CacheConfig struct {
	// Backend is "none", "bolt", or "postgres".
	Backend  string        `mapstructure:"backend"`
	BoltPath string        `mapstructure:"bolt_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig tunes the battle simulator.
type BattleConfig struct {
	// Classifier selects the status classifier: "keyword" or "lua".
	Classifier string `mapstructure:"classifier"`
	// ClassifierScript is the Lua script path; empty uses the built-in script.
	ClassifierScript string `mapstructure:"classifier_script"`
	// InstructionLimit caps Lua opcodes per classification; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// Seed makes every battle reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	PokeAPI  PokeAPIConfig  `mapstructure:"pokeapi"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePokeAPI(c.PokeAPI); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCache(c.Cache); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Cache.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}
	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[s.Transport] {
		errs = append(errs, fmt.Sprintf("server.transport must be one of [stdio, sse], got %q", s.Transport))
	}
	if s.Transport == "sse" && (s.Port < 1 || s.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePokeAPI(p PokeAPIConfig) error {
	var errs []string
	if !strings.HasPrefix(p.BaseURL, "http://") && !strings.HasPrefix(p.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("pokeapi.base_url must be an http(s) URL, got %q", p.BaseURL))
	}
	if p.Timeout <= 0 {
		errs = append(errs, "pokeapi.timeout must be positive")
	}
	if p.MoveLimit < 0 {
		errs = append(errs, fmt.Sprintf("pokeapi.move_limit must be >= 0, got %d", p.MoveLimit))
	}
	if p.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("pokeapi.concurrency must be >= 1, got %d", p.Concurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCache(c CacheConfig) error {
	var errs []string
	validBackends := map[string]bool{"none": true, "bolt": true, "postgres": true}
	if !validBackends[c.Backend] {
		errs = append(errs, fmt.Sprintf("cache.backend must be one of [none, bolt, postgres], got %q", c.Backend))
	}
	if c.Backend == "bolt" && c.BoltPath == "" {
		errs = append(errs, "cache.bolt_path must not be empty when cache.backend is bolt")
	}
	if c.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	validClassifiers := map[string]bool{"keyword": true, "lua": true}
	if !validClassifiers[b.Classifier] {
		errs = append(errs, fmt.Sprintf("battle.classifier must be one of [keyword, lua], got %q", b.Classifier))
	}
	if b.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("battle.instruction_limit must be >= 0, got %d", b.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and POKEMCP_ environment
// overrides applied. Callers may bind flags onto it before LoadFromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("POKEMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "poke-mcp")
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "")

	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.timeout", "30s")
	v.SetDefault("pokeapi.move_limit", 10)
	v.SetDefault("pokeapi.concurrency", 4)
	v.SetDefault("pokeapi.user_agent", "poke-mcp")

	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.bolt_path", "pokemcp-cache.db")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pokemcp")
	v.SetDefault("database.password", "pokemcp")
	v.SetDefault("database.name", "pokemcp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.classifier", "keyword")
	v.SetDefault("battle.classifier_script", "")
	v.SetDefault("battle.instruction_limit", 0)
	v.SetDefault("battle.seed", 0)
}
