package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/adapters/store"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/api"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP server",
	Long: `Serve /spheres, /checklists and /tasks over HTTP, exactly as the
serverless gateway would, plus /health and /metrics.

Examples:
  # Start with defaults (localhost:8080)
  lifeboard serve

  # Start on custom host and port
  lifeboard serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

var (
	serveHost      string
	servePort      int
	serveApplyDDL  bool
	poolStatsEvery = time.Minute
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"host address to bind to (default: server.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"port to listen on (default: server.port)")
	serveCmd.Flags().BoolVar(&serveApplyDDL, "apply-schema", false,
		"create missing tables before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveOverrides())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	if serveApplyDDL {
		if err := st.ApplySchema(ctx); err != nil {
			return err
		}
		logger.Info("schema applied", slog.String("dialect", string(st.Dialect())))
	}

	metrics := service.NewMetricsCollector()
	server := api.NewServer(buildHandlers(st, cfg, logger, metrics),
		api.WithLogger(logger.Logger),
		api.WithCORS(corsPolicy(cfg)),
		api.WithHealthCheck(st),
		api.WithMetrics(metrics),
		api.WithMaxBodyBytes(cfg.API.MaxBodyBytes),
		api.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(gctx, addr); err != nil {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		reportPoolStats(gctx, st, logger)
		return nil
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

// serveOverrides maps the flags that were set onto config keys.
func serveOverrides() map[string]any {
	overrides := map[string]any{}
	if serveHost != "" {
		overrides["server.host"] = serveHost
	}
	if servePort != 0 {
		overrides["server.port"] = servePort
	}
	return overrides
}

// reportPoolStats logs connection pool usage at debug level until ctx ends.
func reportPoolStats(ctx context.Context, st *store.Store, logger *logging.Logger) {
	ticker := time.NewTicker(poolStatsEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := st.Stats()
			logger.Debug("database pool",
				slog.Int("open", stats.OpenConnections),
				slog.Int("in_use", stats.InUse),
				slog.Int("idle", stats.Idle),
				slog.Int64("wait_count", stats.WaitCount),
				slog.Duration("wait_duration", stats.WaitDuration),
			)
		}
	}
}
