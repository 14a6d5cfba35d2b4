// Package service implements the sphere, checklist and task request
// handlers. Each service is a gateway.Handler that branches on the HTTP
// method, resolves body fields, runs one repository call and serializes the
// result.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
)

// Function names, used for logging, metrics and entry point selection.
const (
	FunctionSpheres    = "spheres"
	FunctionChecklists = "checklists"
	FunctionTasks      = "tasks"
)

// Functions lists every entity function.
var Functions = []string{FunctionSpheres, FunctionChecklists, FunctionTasks}

// Options configures a service.
type Options struct {
	Logger         *logging.Logger
	NotFoundMode   string
	RequestTimeout time.Duration
	CORS           gateway.CORSPolicy
	Metrics        *MetricsCollector
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithNotFoundMode selects legacy or uniform not-found responses.
func WithNotFoundMode(mode string) Option {
	return func(o *Options) {
		o.NotFoundMode = mode
	}
}

// WithRequestTimeout bounds each invocation.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = d
	}
}

// WithMetrics records every invocation in m.
func WithMetrics(m *MetricsCollector) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithCORS overrides the CORS policy.
func WithCORS(p gateway.CORSPolicy) Option {
	return func(o *Options) {
		o.CORS = p
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		Logger:       logging.NewNop(),
		NotFoundMode: config.NotFoundLegacy,
		CORS:         gateway.DefaultCORSPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds what every entity service shares.
type base struct {
	name    string
	mux     *gateway.Mux
	opts    Options
	logger  *logging.Logger
	metrics *MetricsCollector
}

func newBase(name string, opts []Option) base {
	o := buildOptions(opts)
	return base{
		name:    name,
		mux:     gateway.NewMux(o.CORS),
		opts:    o,
		logger:  o.Logger.WithFunction(name),
		metrics: o.Metrics,
	}
}

// Handle implements gateway.Handler.
func (b *base) Handle(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	start := time.Now()

	if b.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.RequestTimeout)
		defer cancel()
	}

	resp, err := b.mux.Handle(ctx, req)

	status := resp.StatusCode
	if err != nil {
		status = http.StatusInternalServerError
	}
	b.metrics.RecordInvocation(b.name, req.HTTPMethod, status, time.Since(start))
	return resp, err
}

// requestLogger tags the function logger with per-invocation fields.
// X-User-Id is recorded as sent; it is never validated.
func (b *base) requestLogger(req gateway.Request) *logging.Logger {
	l := b.logger.WithRequest(gateway.RequestID(req), req.HTTPMethod)
	if uid := gateway.Header(req, gateway.HeaderUserID); uid != "" {
		l = l.With("user_id", uid)
	}
	return l
}

// ok serializes v with status.
func (b *base) ok(status int, v interface{}) (gateway.Response, error) {
	return b.mux.JSON(status, v), nil
}

// fail turns err into an error response. When nullOnMissing is set and the
// service runs in legacy mode, a not-found error becomes 200 with a null body.
func (b *base) fail(req gateway.Request, err error, nullOnMissing bool) (gateway.Response, error) {
	if core.IsNotFound(err) {
		if nullOnMissing && b.opts.NotFoundMode != config.NotFoundUniform {
			return b.ok(http.StatusOK, nil)
		}
		b.requestLogger(req).Debug("entity not found", "error", err)
		return b.mux.Error(err), nil
	}

	l := b.requestLogger(req)
	var domErr *core.DomainError
	if errors.As(err, &domErr) && len(domErr.Details) > 0 {
		l = l.With("details", b.logger.Sanitizer().SanitizeMap(domErr.Details))
	}
	switch core.GetCategory(err) {
	case core.ErrCatValidation:
		l.Warn("rejected request", "error", err)
	default:
		l.Error("request failed", "error", err, "category", core.GetCategory(err))
	}
	return b.mux.Error(err), nil
}

// deleted is the unconditional delete envelope. The id is echoed exactly as
// received in the query string.
type deleted struct {
	Success bool    `json:"success"`
	ID      *string `json:"id"`
}

// idParam parses the optional id query parameter.
func idParam(req gateway.Request, key string) (id int64, raw string, present bool, err error) {
	raw, present = gateway.QueryParam(req, key)
	if !present {
		return 0, "", false, nil
	}
	id, err = core.ParseID(raw)
	return id, raw, true, err
}

// deleteByID runs del for the id query parameter and returns the success
// envelope. A missing or empty id matches no row.
func (b *base) deleteByID(ctx context.Context, req gateway.Request, del func(context.Context, *int64) error) (gateway.Response, error) {
	id, raw, present, err := idParam(req, "id")
	if err != nil {
		return b.fail(req, err, false)
	}

	var idPtr *int64
	var echo *string
	if present {
		idPtr = &id
		echo = &raw
	} else if sent, ok := req.QueryStringParameters["id"]; ok {
		// An empty id matches no row but is still echoed as sent.
		echo = &sent
	}

	if err := del(ctx, idPtr); err != nil {
		return b.fail(req, err, false)
	}
	return b.ok(http.StatusOK, deleted{Success: true, ID: echo})
}
