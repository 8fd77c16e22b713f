package cli

import (
	"github.com/spf13/cobra"

	"github.com/blockversemc/modfeed/internal/metrics"
	"github.com/blockversemc/modfeed/internal/server"
	"github.com/blockversemc/modfeed/pkg/buildinfo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		warm      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed over HTTP",
		Long: `Serve the feed over HTTP.

GET /api/mod-data returns the feed with a shared-cache header so a CDN can
absorb traffic. GET /healthz reports liveness and GET /metrics exposes
Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := c.settings()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if noMetrics {
				cfg.Server.Metrics = false
			}

			builder, closeCache, err := c.newBuilder(ctx, builderOptions{})
			if err != nil {
				return err
			}
			defer closeCache()

			var m *metrics.Manager
			if cfg.Server.Metrics {
				m = metrics.NewManager()
				m.Install()
			}

			if warm {
				go func() {
					if _, err := builder.Build(ctx, false); err != nil {
						logger.Warn("initial feed build failed", "err", err)
					}
				}()
			}

			logger.Info("starting modfeed",
				"version", buildinfo.Version,
				"list", cfg.Feed.ListURL,
				"cache", cfg.Cache.Backend)

			srv := server.New(builder, logger, server.Options{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				CORSOrigin:      cfg.Server.CORSOrigin,
				CacheControl:    cfg.CacheControl(),
				Version:         buildinfo.Version,
				Metrics:         m,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&warm, "warm", false, "build the feed at startup")

	return cmd
}
