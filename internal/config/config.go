// Package config loads modfeed configuration.
//
// Settings are resolved in order: built-in defaults, then a TOML file,
// then MODFEED_* environment variables. Command-line flags are applied by
// the CLI on top of the result.
//
//	[server]
//	addr = ":8080"
//	s_maxage = "1h"
//
//	[feed]
//	list_url = "https://raw.githubusercontent.com/blockversemc/blockverse-mc/main/modrinth-slugs.json"
//	concurrency = 8
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/blockversemc/modfeed/pkg/cache"
	apierrors "github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/feed"
	"github.com/blockversemc/modfeed/pkg/httputil"
	"github.com/blockversemc/modfeed/pkg/integrations"
	"github.com/blockversemc/modfeed/pkg/integrations/modrinth"
	"github.com/blockversemc/modfeed/pkg/modlist"
)

const appName = "modfeed"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Feed     FeedConfig     `toml:"feed"`
	Modrinth ModrinthConfig `toml:"modrinth"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr                 string        `toml:"addr"`
	ReadTimeout          time.Duration `toml:"read_timeout"`
	WriteTimeout         time.Duration `toml:"write_timeout"`
	ShutdownTimeout      time.Duration `toml:"shutdown_timeout"`
	CORSOrigin           string        `toml:"cors_origin"`
	SharedMaxAge         time.Duration `toml:"s_maxage"`
	StaleWhileRevalidate bool          `toml:"stale_while_revalidate"`
	Metrics              bool          `toml:"metrics"`
}

// FeedConfig configures feed builds.
type FeedConfig struct {
	ListURL     string        `toml:"list_url"`
	Platform    string        `toml:"platform"`
	DefaultType string        `toml:"default_type"`
	Concurrency int           `toml:"concurrency"`
	TTL         time.Duration `toml:"feed_ttl"`
}

// ModrinthConfig configures the Modrinth client.
type ModrinthConfig struct {
	BaseURL   string  `toml:"base_url"`
	UserAgent string  `toml:"user_agent"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `toml:"burst"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend         string        `toml:"backend"`
	Dir             string        `toml:"dir"`
	TTL             time.Duration `toml:"ttl"`
	KeyPrefix       string        `toml:"key_prefix"` // prepended to every key
	RedisAddr       string        `toml:"redis_addr"`
	RedisPassword   string        `toml:"redis_password"`
	RedisDB         int           `toml:"redis_db"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                 ":8080",
			ReadTimeout:          10 * time.Second,
			WriteTimeout:         2 * time.Minute,
			ShutdownTimeout:      15 * time.Second,
			CORSOrigin:           "*",
			SharedMaxAge:         httputil.DefaultSharedMaxAge,
			StaleWhileRevalidate: true,
			Metrics:              true,
		},
		Feed: FeedConfig{
			ListURL:     modlist.DefaultURL,
			Platform:    feed.DefaultPlatform,
			DefaultType: modlist.DefaultType,
			Concurrency: feed.DefaultConcurrency,
			TTL:         feed.DefaultTTL,
		},
		Modrinth: ModrinthConfig{
			BaseURL:   modrinth.DefaultBaseURL,
			UserAgent: integrations.DefaultUserAgent,
			RateLimit: 5,
			Burst:     10,
		},
		Cache: CacheConfig{
			Backend:         cache.BackendFile,
			TTL:             time.Hour,
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "cache",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/modfeed/config.toml, falling back
// to ~/.config/modfeed/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load resolves the configuration from defaults, the file at path and the
// process environment. An empty path reads [DefaultPath] if it exists; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		err := cfg.LoadFile(path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the TOML file at path into c. Keys absent from the file
// keep their current values; unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.decode(path, string(data))
}

func (c *Config) decode(name, data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return apierrors.New(apierrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return apierrors.New(apierrors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	if c.Server.SharedMaxAge < 0 {
		return invalid("server.s_maxage must not be negative")
	}
	if err := apierrors.ValidateURL(c.Feed.ListURL); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "feed.list_url")
	}
	if c.Feed.Concurrency < 1 {
		return invalid("feed.concurrency must be at least 1, got %d", c.Feed.Concurrency)
	}
	if err := apierrors.ValidateURL(c.Modrinth.BaseURL); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "modrinth.base_url")
	}
	if c.Modrinth.RateLimit < 0 {
		return invalid("modrinth.rate_limit must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return invalid("cache.backend must be one of file, redis, mongo, none; got %q", c.Cache.Backend)
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// ParseLevel returns the configured log level.
func (l LogConfig) ParseLevel() (log.Level, error) {
	if l.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(l.Level)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// CacheOptions returns the settings for [cache.New].
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		RedisAddr:       c.Cache.RedisAddr,
		RedisPassword:   c.Cache.RedisPassword,
		RedisDB:         c.Cache.RedisDB,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// OpenCache opens the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	backend, err := cache.New(ctx, c.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Cache.Backend, err)
	}
	return backend, nil
}

// Keyer returns the cache keyer for both the Modrinth client and the feed
// builder, scoped by cache.key_prefix.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, c.Cache.KeyPrefix)
}

// CacheControl returns the header directives for successful feed responses.
func (c *Config) CacheControl() httputil.CacheControl {
	return httputil.CacheControl{
		SharedMaxAge: c.Server.SharedMaxAge,
		Stale:        c.Server.StaleWhileRevalidate,
	}
}

// FeedOptions returns builder options; the caller supplies cache and logger.
func (c *Config) FeedOptions(backend cache.Cache, logger *log.Logger) feed.Options {
	return feed.Options{
		Platform:    c.Feed.Platform,
		DefaultType: c.Feed.DefaultType,
		Concurrency: c.Feed.Concurrency,
		TTL:         c.Feed.TTL,
		ListID:      c.Feed.ListURL,
		Cache:       backend,
		Logger:      logger,
	}
}
