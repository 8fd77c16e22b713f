package config

import (
	"strconv"
	"time"

	apierrors "github.com/blockversemc/modfeed/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MODFEED_"

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *field(c) = v; return nil }
}

func dur(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

var envVars = []envVar{
	{"SERVER_ADDR", str(func(c *Config) *string { return &c.Server.Addr })},
	{"SERVER_READ_TIMEOUT", dur(func(c *Config) *time.Duration { return &c.Server.ReadTimeout })},
	{"SERVER_WRITE_TIMEOUT", dur(func(c *Config) *time.Duration { return &c.Server.WriteTimeout })},
	{"SERVER_SHUTDOWN_TIMEOUT", dur(func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout })},
	{"SERVER_CORS_ORIGIN", str(func(c *Config) *string { return &c.Server.CORSOrigin })},
	{"SERVER_S_MAXAGE", dur(func(c *Config) *time.Duration { return &c.Server.SharedMaxAge })},
	{"SERVER_STALE_WHILE_REVALIDATE", boolean(func(c *Config) *bool { return &c.Server.StaleWhileRevalidate })},
	{"SERVER_METRICS", boolean(func(c *Config) *bool { return &c.Server.Metrics })},

	{"FEED_LIST_URL", str(func(c *Config) *string { return &c.Feed.ListURL })},
	{"FEED_PLATFORM", str(func(c *Config) *string { return &c.Feed.Platform })},
	{"FEED_DEFAULT_TYPE", str(func(c *Config) *string { return &c.Feed.DefaultType })},
	{"FEED_CONCURRENCY", integer(func(c *Config) *int { return &c.Feed.Concurrency })},
	{"FEED_TTL", dur(func(c *Config) *time.Duration { return &c.Feed.TTL })},

	{"MODRINTH_BASE_URL", str(func(c *Config) *string { return &c.Modrinth.BaseURL })},
	{"MODRINTH_USER_AGENT", str(func(c *Config) *string { return &c.Modrinth.UserAgent })},
	{"MODRINTH_RATE_LIMIT", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Modrinth.RateLimit = f
		return nil
	}},
	{"MODRINTH_BURST", integer(func(c *Config) *int { return &c.Modrinth.Burst })},

	{"CACHE_BACKEND", str(func(c *Config) *string { return &c.Cache.Backend })},
	{"CACHE_DIR", str(func(c *Config) *string { return &c.Cache.Dir })},
	{"CACHE_TTL", dur(func(c *Config) *time.Duration { return &c.Cache.TTL })},
	{"CACHE_KEY_PREFIX", str(func(c *Config) *string { return &c.Cache.KeyPrefix })},
	{"CACHE_REDIS_ADDR", str(func(c *Config) *string { return &c.Cache.RedisAddr })},
	{"CACHE_REDIS_PASSWORD", str(func(c *Config) *string { return &c.Cache.RedisPassword })},
	{"CACHE_REDIS_DB", integer(func(c *Config) *int { return &c.Cache.RedisDB })},
	{"CACHE_MONGO_URI", str(func(c *Config) *string { return &c.Cache.MongoURI })},
	{"CACHE_MONGO_DATABASE", str(func(c *Config) *string { return &c.Cache.MongoDatabase })},
	{"CACHE_MONGO_COLLECTION", str(func(c *Config) *string { return &c.Cache.MongoCollection })},

	{"LOG_LEVEL", str(func(c *Config) *string { return &c.Log.Level })},
}

// ApplyEnv overrides settings from MODFEED_* variables found by lookup
// (usually os.LookupEnv). PORT, as set by most hosting platforms, is
// honoured when MODFEED_SERVER_ADDR is not.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		if _, set := lookup(EnvPrefix + "SERVER_ADDR"); !set {
			c.Server.Addr = ":" + port
		}
	}
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok {
			continue
		}
		if err := ev.apply(c, v); err != nil {
			return apierrors.Wrap(apierrors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, ev.name)
		}
	}
	return nil
}
