package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"
)

// Response header names.
const (
	HeaderContentType  = "Content-Type"
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderMaxAge       = "Access-Control-Max-Age"
	HeaderUserID       = "X-User-Id"
)

// CORSPolicy is the cross-origin policy applied to every response. The same
// policy drives the gateway envelope headers and the local HTTP server.
type CORSPolicy struct {
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int // seconds
}

// DefaultCORSPolicy allows any origin with a 24 hour preflight cache.
func DefaultCORSPolicy() CORSPolicy {
	return CORSPolicy{
		AllowOrigin: "*",
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{HeaderContentType, HeaderUserID},
		MaxAge:       86400,
	}
}

// Headers returns the headers carried by every non-preflight response.
func (p CORSPolicy) Headers() map[string]string {
	return map[string]string{
		HeaderAllowOrigin: p.AllowOrigin,
	}
}

// PreflightHeaders returns the headers of an OPTIONS response.
func (p CORSPolicy) PreflightHeaders() map[string]string {
	return map[string]string{
		HeaderAllowOrigin:  p.AllowOrigin,
		HeaderAllowMethods: strings.Join(p.AllowMethods, ", "),
		HeaderAllowHeaders: strings.Join(p.AllowHeaders, ", "),
		HeaderMaxAge:       strconv.Itoa(p.MaxAge),
	}
}

// CORSOptions converts the policy for rs/cors. Preflight requests are passed
// through so the gateway mux answers them with the same headers it uses
// behind the serverless gateway.
func (p CORSPolicy) CORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:       []string{p.AllowOrigin},
		AllowedMethods:       p.AllowMethods,
		AllowedHeaders:       p.AllowHeaders,
		AllowCredentials:     false,
		MaxAge:               p.MaxAge,
		OptionsPassthrough:   true,
		OptionsSuccessStatus: http.StatusOK,
	}
}
