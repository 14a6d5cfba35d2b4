package core

import (
	"encoding/json"
	"errors"
	"testing"
)

type sphereBody struct {
	ID    Field[ID]     `json:"id"`
	Name  Field[string] `json:"name"`
	Icon  Field[string] `json:"icon"`
	Color Field[string] `json:"color"`
}

func TestField_AbsentNullAndValue(t *testing.T) {
	t.Parallel()
	var body sphereBody
	if err := json.Unmarshal([]byte(`{"name":"Health","icon":null}`), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !body.Name.Set || !body.Name.Valid || body.Name.Value != "Health" {
		t.Errorf("name = %+v, want present value", body.Name)
	}
	if !body.Icon.Set || body.Icon.Valid {
		t.Errorf("icon = %+v, want explicit null", body.Icon)
	}
	if body.Color.Set {
		t.Errorf("color = %+v, want absent", body.Color)
	}
}

func TestField_PtrOr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		field Field[string]
		want  *string
	}{
		{"absent uses default", Field[string]{}, strPtr("Circle")},
		{"null stays null", Null[string](), nil},
		{"value wins", Of("Star"), strPtr("Star")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.PtrOr("Circle")
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("PtrOr() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("PtrOr() = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestField_PtrIgnoresDefault(t *testing.T) {
	t.Parallel()
	var f Field[string]
	if f.Ptr() != nil {
		t.Fatal("absent field must resolve to nil")
	}
}

func TestID_AcceptsNumberAndString(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{`3`, `"3"`, `" 3 "`} {
		var id ID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", raw, err)
		}
		if id != 3 {
			t.Errorf("Unmarshal(%s) = %d, want 3", raw, id)
		}
	}

	var id ID
	err := json.Unmarshal([]byte(`"abc"`), &id)
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("Unmarshal(abc) error = %v, want *json.UnmarshalTypeError", err)
	}
}

func TestIDPtr(t *testing.T) {
	t.Parallel()
	if IDPtr(Field[ID]{}) != nil {
		t.Error("absent id must be nil")
	}
	if got := IDPtr(Of(ID(7))); got == nil || *got != 7 {
		t.Errorf("IDPtr() = %v, want 7", got)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()
	if n, err := ParseID("42"); err != nil || n != 42 {
		t.Fatalf("ParseID(42) = %d, %v", n, err)
	}
	_, err := ParseID("forty-two")
	if !IsCategory(err, ErrCatValidation) {
		t.Fatalf("ParseID(forty-two) error = %v, want validation", err)
	}
}

func strPtr(s string) *string { return &s }
