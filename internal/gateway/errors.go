package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusForError maps an error to its status code and envelope. Database
// failures never expose driver messages.
func StatusForError(err error) (int, ErrorBody) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		if core.IsCategory(err, core.ErrCatTimeout) {
			return http.StatusGatewayTimeout, ErrorBody{Error: "request timed out", Kind: string(core.ErrCatTimeout)}
		}
		return http.StatusInternalServerError, ErrorBody{Error: "internal error", Kind: string(core.ErrCatInternal)}
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusBadRequest, ErrorBody{Error: domErr.Message, Kind: string(core.ErrCatValidation)}
	case core.ErrCatNotFound:
		return http.StatusNotFound, ErrorBody{Error: "Not found"}
	case core.ErrCatConstraint:
		return http.StatusInternalServerError, ErrorBody{Error: domErr.Message, Kind: string(core.ErrCatConstraint)}
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, ErrorBody{Error: "request timed out", Kind: string(core.ErrCatTimeout)}
	case core.ErrCatDatabase:
		return http.StatusInternalServerError, ErrorBody{Error: "internal error", Kind: string(core.ErrCatDatabase)}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal error", Kind: string(core.ErrCatInternal)}
	}
}

// Error builds the error response for err.
func (m *Mux) Error(err error) Response {
	status, body := StatusForError(err)
	return m.JSON(status, body)
}

// DecodeBody unmarshals a JSON request body into v. An empty body decodes as
// an empty object.
func DecodeBody(req Request, v interface{}) error {
	raw := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return core.ErrValidation(core.CodeInvalidBody, "request body is not valid base64").WithCause(err)
		}
		raw = string(decoded)
	}
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return bodyError(err)
	}
	return nil
}

// bodyError distinguishes malformed JSON from well-formed JSON whose values
// have the wrong type, naming the offending field.
func bodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return core.ErrValidation(core.CodeInvalidBody, "request body is not valid JSON").WithCause(err)
	}
	if typeErr.Field == "" {
		return core.ErrValidation(core.CodeInvalidBody, "request body must be a JSON object").WithCause(err)
	}
	return core.ErrValidation(core.CodeInvalidBody, fmt.Sprintf("%s must be %s", typeErr.Field, describeType(typeErr.Type))).
		WithCause(err).
		WithDetail("field", typeErr.Field).
		WithDetail("got", typeErr.Value)
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return "of type " + t.String()
	}
}
