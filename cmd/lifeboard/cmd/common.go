package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/adapters/store"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/service"
)

// openStore opens the shared pool and logs where it points.
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.RedactedURL(), err)
	}
	logger.Info("database connected",
		slog.String("url", cfg.Database.RedactedURL()),
		slog.String("dialect", string(st.Dialect())),
	)
	return st, nil
}

func closeStore(st *store.Store, logger *logging.Logger) {
	if err := st.Close(); err != nil {
		logger.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// buildHandlers creates one handler per entity function over st.
func buildHandlers(st *store.Store, cfg *config.Config, logger *logging.Logger, metrics *service.MetricsCollector) map[string]gateway.Handler {
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithNotFoundMode(cfg.API.NotFoundMode),
		service.WithRequestTimeout(cfg.API.RequestTimeout),
		service.WithMetrics(metrics),
		service.WithCORS(corsPolicy(cfg)),
	}
	return map[string]gateway.Handler{
		service.FunctionSpheres:    service.NewSphereService(st, opts...),
		service.FunctionChecklists: service.NewChecklistService(st, opts...),
		service.FunctionTasks:      service.NewTaskService(st, opts...),
	}
}

// corsPolicy applies the configured origin and preflight cache to the
// default policy.
func corsPolicy(cfg *config.Config) gateway.CORSPolicy {
	p := gateway.DefaultCORSPolicy()
	p.AllowOrigin = cfg.API.CORS.AllowOrigin
	p.MaxAge = cfg.API.CORS.MaxAge
	return p
}

// resolveFunction picks the entity function from the flag, then
// LIFEBOARD_FUNCTION, then the suffix of AWS_LAMBDA_FUNCTION_NAME
// (for example "lifeboard-prod-checklists").
func resolveFunction(flag string) (string, error) {
	candidates := []string{
		flag,
		os.Getenv("LIFEBOARD_FUNCTION"),
	}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if isFunction(c) {
			return c, nil
		}
		return "", fmt.Errorf("unknown function %q (want one of %s)", c, strings.Join(service.Functions, ", "))
	}

	if name := strings.ToLower(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")); name != "" {
		for _, fn := range service.Functions {
			if name == fn || strings.HasSuffix(name, "-"+fn) || strings.HasSuffix(name, "_"+fn) {
				return fn, nil
			}
		}
		return "", fmt.Errorf("cannot infer function from AWS_LAMBDA_FUNCTION_NAME %q", name)
	}

	return "", fmt.Errorf("no function selected: use --function or LIFEBOARD_FUNCTION")
}

func isFunction(name string) bool {
	for _, fn := range service.Functions {
		if fn == name {
			return true
		}
	}
	return false
}
