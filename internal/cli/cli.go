package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blockversemc/modfeed/internal/config"
	"github.com/blockversemc/modfeed/pkg/buildinfo"
	"github.com/blockversemc/modfeed/pkg/cache"
	"github.com/blockversemc/modfeed/pkg/feed"
	"github.com/blockversemc/modfeed/pkg/httputil"
	"github.com/blockversemc/modfeed/pkg/integrations"
	"github.com/blockversemc/modfeed/pkg/integrations/modrinth"
	"github.com/blockversemc/modfeed/pkg/modlist"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "modfeed"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (feeds, tables, paths).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "modfeed serves a flat download feed of Modrinth mods",
		Long:         `modfeed reads a list of Modrinth projects, fetches every version of each, and serves the downloads as a flat JSON feed for the website.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/modfeed/config.toml)")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration once per invocation. The configured log
// level applies unless --verbose already lowered it to debug.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.Logger.GetLevel() != log.DebugLevel {
		if level, err := cfg.Log.ParseLevel(); err == nil {
			c.SetLogLevel(level)
		}
	}
	return nil
}

// settings returns the loaded configuration, or defaults before loading.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Builder Factory
// =============================================================================

// builderOptions are per-command overrides on top of the configuration.
type builderOptions struct {
	list    string // URL or local path of the mod list
	noCache bool
}

// newBuilder wires the configured cache, Modrinth client and list source
// into a feed builder. The returned close function releases the cache.
func (c *CLI) newBuilder(ctx context.Context, opts builderOptions) (*feed.Builder, func() error, error) {
	cfg := c.settings()

	backend, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return nil, nil, err
	}

	keyer := cfg.Keyer()
	limiter := httputil.NewLimiter(cfg.Modrinth.RateLimit, cfg.Modrinth.Burst)
	client := modrinth.NewClientWithBaseURL(backend, cfg.Cache.TTL, cfg.Modrinth.BaseURL, cfg.Modrinth.UserAgent,
		integrations.WithLimiter(limiter), integrations.WithKeyer(keyer))
	c.Logger.Debug("modrinth client",
		"base_url", cfg.Modrinth.BaseURL,
		"rate_limit", limiter.RPS(),
		"burst", limiter.Burst(),
		"key_prefix", cfg.Cache.KeyPrefix)

	source, listID, err := c.newSource(opts.list)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	feedOpts := cfg.FeedOptions(backend, c.Logger)
	feedOpts.ListID = listID
	feedOpts.Keyer = keyer
	return feed.NewBuilder(source, client, feedOpts), backend.Close, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	backend, err := c.settings().OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		return cache.NewNullCache(), nil
	}
	return backend, nil
}

// newSource picks a list source: an http(s) URL is fetched, anything else
// is read as a local file. An empty list uses the configured URL.
func (c *CLI) newSource(list string) (modlist.Source, string, error) {
	if list == "" {
		list = c.settings().Feed.ListURL
	}
	if strings.HasPrefix(list, "http://") || strings.HasPrefix(list, "https://") {
		src, err := modlist.NewHTTPSource(list, c.Logger)
		if err != nil {
			return nil, "", err
		}
		return src, list, nil
	}
	return modlist.NewFileSource(list, c.Logger), "file:" + list, nil
}
