// Package api serves the entity handlers over a local HTTP server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	lbmiddleware "github.com/hugo-lorenzo-mato/lifeboard/internal/api/middleware"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/service"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server provides the HTTP endpoints of every entity function.
type Server struct {
	router          chi.Router
	handlers        map[string]gateway.Handler
	db              Pinger
	metrics         *service.MetricsCollector
	logger          *slog.Logger
	cors            gateway.CORSPolicy
	maxBodyBytes    int64
	shutdownTimeout time.Duration
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHealthCheck sets the database checked by /health.
func WithHealthCheck(db Pinger) ServerOption {
	return func(s *Server) {
		s.db = db
	}
}

// WithMetrics exposes m at /metrics.
func WithMetrics(m *service.MetricsCollector) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithCORS overrides the CORS policy.
func WithCORS(p gateway.CORSPolicy) ServerOption {
	return func(s *Server) {
		s.cors = p
	}
}

// NewServer creates a server mounting each handler at /<function name>.
func NewServer(handlers map[string]gateway.Handler, opts ...ServerOption) *Server {
	s := &Server{
		handlers:        handlers,
		logger:          slog.Default(),
		cors:            gateway.DefaultCORSPolicy(),
		maxBodyBytes:    gateway.DefaultMaxBodyBytes,
		shutdownTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(lbmiddleware.UserID)
	r.Use(s.loggingMiddleware)
	r.Use(cors.New(s.cors.CORSOptions()).Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	// Each function takes every method at its collection path, like the
	// gateway route in front of it.
	for name, h := range s.handlers {
		r.Handle("/"+name, gateway.HTTPHandler(h,
			gateway.WithMaxBodyBytes(s.maxBodyBytes),
			gateway.WithHTTPLogger(s.logger),
		))
	}

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if uid := lbmiddleware.GetUserID(r.Context()); uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			s.logger.Info("http request", attrs...)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// handleHealth reports server and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			body["status"] = "unhealthy"
			body["database"] = "unreachable"
			respondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}

	respondJSON(w, http.StatusOK, body)
}

// handleMetrics returns per-function invocation metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "metrics disabled"})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
