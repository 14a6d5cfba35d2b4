// Package gateway implements the request/response envelope of an
// HTTP-triggered serverless gateway, the method dispatch shared by every
// entity handler, and adapters that serve the same handlers over net/http
// and the Lambda runtime.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Request is the inbound gateway event.
type Request = events.APIGatewayProxyRequest

// Response is the envelope returned to the gateway.
type Response = events.APIGatewayProxyResponse

// Handler serves one gateway event.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Mux dispatches on the HTTP method. OPTIONS is answered from the CORS
// policy without calling any route; methods without a route get 405.
type Mux struct {
	routes map[string]HandlerFunc
	cors   CORSPolicy
}

// NewMux creates a mux with the given CORS policy.
func NewMux(policy CORSPolicy) *Mux {
	return &Mux{
		routes: make(map[string]HandlerFunc),
		cors:   policy,
	}
}

// HandleFunc registers fn for method.
func (m *Mux) HandleFunc(method string, fn HandlerFunc) {
	m.routes[strings.ToUpper(method)] = fn
}

// CORS returns the mux policy.
func (m *Mux) CORS() CORSPolicy {
	return m.cors
}

// Handle implements Handler.
func (m *Mux) Handle(ctx context.Context, req Request) (Response, error) {
	method := strings.ToUpper(req.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}

	if method == http.MethodOptions {
		return Response{
			StatusCode: http.StatusOK,
			Headers:    m.cors.PreflightHeaders(),
			Body:       "",
		}, nil
	}

	fn, ok := m.routes[method]
	if !ok {
		return m.JSON(http.StatusMethodNotAllowed, ErrorBody{Error: "Method not allowed"}), nil
	}
	return fn(ctx, req)
}

// JSON builds a response with a JSON body. A nil value encodes as null.
func (m *Mux) JSON(status int, v interface{}) Response {
	return JSONResponse(m.cors, status, v)
}

// JSONResponse builds a JSON response carrying the policy's CORS headers.
func JSONResponse(policy CORSPolicy, status int, v interface{}) Response {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error","kind":"internal"}`)
	}

	headers := policy.Headers()
	headers[HeaderContentType] = "application/json"
	return Response{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

// QueryParam returns a non-empty query string parameter.
func QueryParam(req Request, key string) (string, bool) {
	if req.QueryStringParameters == nil {
		return "", false
	}
	v, ok := req.QueryStringParameters[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Header returns a request header, matched case-insensitively.
func Header(req Request, name string) string {
	if v, ok := req.Headers[name]; ok {
		return v
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// RequestID returns the gateway request id, if any.
func RequestID(req Request) string {
	return req.RequestContext.RequestID
}
