package gateway

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultMaxBodyBytes bounds request bodies read by the HTTP adapter.
const DefaultMaxBodyBytes int64 = 1 << 20

// HTTPOption configures an HTTP adapter.
type HTTPOption func(*httpAdapter)

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(a *httpAdapter) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

// WithHTTPLogger sets the adapter logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(a *httpAdapter) {
		a.logger = logger
	}
}

type httpAdapter struct {
	handler      Handler
	cors         CORSPolicy
	maxBodyBytes int64
	logger       *slog.Logger
}

// HTTPHandler serves a gateway Handler over net/http, translating each
// request into a gateway event and the envelope back into a response.
func HTTPHandler(h Handler, opts ...HTTPOption) http.Handler {
	a := &httpAdapter{
		handler:      h,
		cors:         DefaultCORSPolicy(),
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	if m, ok := h.(*Mux); ok {
		a.cors = m.CORS()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *httpAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := a.toRequest(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeEnvelope(w, a.errorResponse(http.StatusRequestEntityTooLarge, ErrorBody{Error: "request body too large", Kind: "validation"}))
			return
		}
		a.logger.Warn("reading request body failed", "error", err)
		writeEnvelope(w, a.errorResponse(http.StatusBadRequest, ErrorBody{Error: "unreadable request body", Kind: "validation"}))
		return
	}

	resp, err := a.handler.Handle(r.Context(), req)
	if err != nil {
		a.logger.Error("handler failed", "error", err, "request_id", req.RequestContext.RequestID)
		status, body := StatusForError(err)
		resp = a.errorResponse(status, body)
	}
	writeEnvelope(w, resp)
}

func (a *httpAdapter) toRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodyBytes))
		if err != nil {
			return Request{}, err
		}
	}

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return Request{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Headers:                         headers,
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           params,
		MultiValueQueryStringParameters: query,
		Body:                            string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  requestID,
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
		},
	}, nil
}

func (a *httpAdapter) errorResponse(status int, body ErrorBody) Response {
	return JSONResponse(a.cors, status, body)
}

func writeEnvelope(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}
