package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/testutil"
)

func newTestMux(called *int) *Mux {
	m := NewMux(DefaultCORSPolicy())
	m.HandleFunc(http.MethodGet, func(_ context.Context, req Request) (Response, error) {
		*called++
		id, _ := QueryParam(req, "id")
		return m.JSON(http.StatusOK, map[string]string{"id": id}), nil
	})
	m.HandleFunc(http.MethodPost, func(_ context.Context, req Request) (Response, error) {
		*called++
		var body map[string]interface{}
		if err := DecodeBody(req, &body); err != nil {
			return m.Error(err), nil
		}
		return m.JSON(http.StatusCreated, body), nil
	})
	return m
}

func TestMux_Options(t *testing.T) {
	called := 0
	m := newTestMux(&called)

	resp, err := m.Handle(context.Background(), Request{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "*", resp.Headers[HeaderAllowOrigin])
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Headers[HeaderAllowMethods])
	assert.Equal(t, "Content-Type, X-User-Id", resp.Headers[HeaderAllowHeaders])
	assert.Equal(t, "86400", resp.Headers[HeaderMaxAge])
	assert.Zero(t, called, "OPTIONS must not reach a route")
}

func TestMux_MethodNotAllowed(t *testing.T) {
	called := 0
	m := newTestMux(&called)

	for _, method := range []string{http.MethodPatch, "HEAD", "BREW"} {
		resp, err := m.Handle(context.Background(), Request{HTTPMethod: method})
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, method)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, resp.Body)
		assert.Equal(t, "*", resp.Headers[HeaderAllowOrigin])
	}
	assert.Zero(t, called)
}

func TestMux_DispatchLowercaseAndDefault(t *testing.T) {
	called := 0
	m := newTestMux(&called)

	resp, err := m.Handle(context.Background(), Request{
		HTTPMethod:            "get",
		QueryStringParameters: map[string]string{"id": "7"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers[HeaderContentType])

	_, err = m.Handle(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, called, "missing method defaults to GET")
}

func TestMux_JSONNull(t *testing.T) {
	m := NewMux(DefaultCORSPolicy())
	resp := m.JSON(http.StatusOK, nil)
	assert.Equal(t, "null", resp.Body)
}

func TestDecodeBody(t *testing.T) {
	var v map[string]interface{}

	require.NoError(t, DecodeBody(Request{Body: ""}, &v))
	assert.Empty(t, v)

	require.NoError(t, DecodeBody(Request{Body: "eyJhIjoxfQ==", IsBase64Encoded: true}, &v))
	assert.Equal(t, float64(1), v["a"])

	err := DecodeBody(Request{Body: "{not json"}, &v)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDecodeBody_TypeMismatchNamesField(t *testing.T) {
	var body struct {
		Title string `json:"title"`
		Done  bool   `json:"done"`
	}

	err := DecodeBody(Request{Body: `{"title":5}`}, &body)
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "title must be a string")

	var domErr *core.DomainError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, "title", domErr.Details["field"])
	assert.Equal(t, "number", domErr.Details["got"])

	status, envelope := StatusForError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title must be a string", envelope.Error)

	err = DecodeBody(Request{Body: `{"done":"yes"}`}, &body)
	testutil.AssertContains(t, err.Error(), "done must be a boolean")

	err = DecodeBody(Request{Body: `"just a string"`}, &body)
	testutil.AssertContains(t, err.Error(), "request body must be a JSON object")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        core.ErrValidation(core.CodeInvalidID, `invalid id "x"`),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid id \"x\"","kind":"validation"}`,
		},
		{
			name:       "not found",
			err:        core.ErrNotFound("checklist", "9"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Not found"}`,
		},
		{
			name:       "constraint",
			err:        fmt.Errorf("creating task: %w", core.ErrConstraint("violates constraint tasks_checklist_id_fkey")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"violates constraint tasks_checklist_id_fkey","kind":"constraint"}`,
		},
		{
			name:       "timeout",
			err:        core.ErrTimeout("slow"),
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"error":"request timed out","kind":"timeout"}`,
		},
		{
			name:       "bare deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"error":"request timed out","kind":"timeout"}`,
		},
		{
			name:       "database hides driver text",
			err:        core.ErrDatabase("database operation failed").WithCause(errors.New("dial tcp 10.0.0.1:5432")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error","kind":"database"}`,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error","kind":"internal"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusForError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, string(encoded))
		})
	}
}

func TestHeader_CaseInsensitive(t *testing.T) {
	req := Request{Headers: map[string]string{"x-user-id": "u-1"}}
	assert.Equal(t, "u-1", Header(req, HeaderUserID))
	assert.Empty(t, Header(req, "Authorization"))
}

func TestQueryParam(t *testing.T) {
	_, ok := QueryParam(Request{}, "id")
	assert.False(t, ok)

	_, ok = QueryParam(Request{QueryStringParameters: map[string]string{"id": ""}}, "id")
	assert.False(t, ok, "empty value counts as absent")

	v, ok := QueryParam(Request{QueryStringParameters: map[string]string{"id": "3"}}, "id")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestHTTPHandler_RoundTrip(t *testing.T) {
	called := 0
	srv := httptest.NewServer(HTTPHandler(newTestMux(&called)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/spheres", "application/json", strings.NewReader(`{"name":"Health"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Health"}`, string(body))
	assert.Equal(t, "*", resp.Header.Get(HeaderAllowOrigin))
	assert.Equal(t, "application/json", resp.Header.Get(HeaderContentType))
}

func TestHTTPHandler_QueryAndOptions(t *testing.T) {
	called := 0
	h := HTTPHandler(newTestMux(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checklists?id=12", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"12"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/checklists", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "86400", rec.Header().Get(HeaderMaxAge))
}

func TestHTTPHandler_BodyTooLarge(t *testing.T) {
	called := 0
	h := HTTPHandler(newTestMux(&called), WithMaxBodyBytes(8))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"far too long"}`)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, called)
}

func TestHTTPHandler_HandlerError(t *testing.T) {
	h := HTTPHandler(HandlerFunc(func(context.Context, Request) (Response, error) {
		return Response{}, core.ErrDatabase("down")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/spheres", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error","kind":"database"}`, rec.Body.String())
}

func TestInvoke(t *testing.T) {
	called := 0
	out, err := Invoke(context.Background(), newTestMux(&called), []byte(`{"httpMethod":"GET","queryStringParameters":{"id":"5"}}`))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"5"}`, resp.Body)

	_, err = Invoke(context.Background(), newTestMux(&called), []byte(`not json`))
	assert.Error(t, err)
}

func TestCORSPolicy_Options(t *testing.T) {
	opts := DefaultCORSPolicy().CORSOptions()
	assert.Equal(t, []string{"*"}, opts.AllowedOrigins)
	assert.True(t, opts.OptionsPassthrough)
	assert.Equal(t, 86400, opts.MaxAge)
	assert.Contains(t, opts.AllowedHeaders, HeaderUserID)
}
