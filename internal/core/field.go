package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Field is a request body value that remembers whether its key was sent.
//
// Absent keys and explicit nulls both resolve to SQL NULL on update; only
// absent keys pick up creation defaults.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Of returns a present, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null returns a field sent as an explicit JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Valid = false
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// Ptr returns a pointer to the value, or nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// PtrOr is Ptr with def substituted when the key was absent.
func (f Field[T]) PtrOr(def T) *T {
	if !f.Set {
		return &def
	}
	return f.Ptr()
}

// ID is an entity identity key. It decodes from a JSON number or a numeric
// string, since clients send both.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(int64(0))}
	}
	*id = ID(n)
	return nil
}

// IDPtr converts an ID field into the nullable column value.
func IDPtr(f Field[ID]) *int64 {
	if !f.Valid {
		return nil
	}
	v := int64(f.Value)
	return &v
}

// ParseID parses an identity key from a query string parameter.
func ParseID(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrValidation(CodeInvalidID, fmt.Sprintf("invalid id %q", raw)).WithCause(err)
	}
	return n, nil
}
