package store

import (
	"fmt"
	"strings"
	"time"
)

// Layouts sqlite may hand back for TIMESTAMP columns when the driver does not
// convert them itself.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timestampDest scans a timestamp column into a time.Time, or into a
// *time.Time when nullable is set. Drivers return time.Time, string or
// []byte depending on dialect.
type timestampDest struct {
	value    *time.Time
	nullable **time.Time
}

func scanTime(t *time.Time) *timestampDest {
	return &timestampDest{value: t}
}

func scanNullTime(t **time.Time) *timestampDest {
	return &timestampDest{nullable: t}
}

func (d *timestampDest) Scan(src any) error {
	if src == nil {
		if d.nullable != nil {
			*d.nullable = nil
			return nil
		}
		return fmt.Errorf("scanning timestamp: unexpected NULL")
	}

	var t time.Time
	switch v := src.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := parseTimestamp(v)
		if err != nil {
			return err
		}
		t = parsed
	case []byte:
		parsed, err := parseTimestamp(string(v))
		if err != nil {
			return err
		}
		t = parsed
	default:
		return fmt.Errorf("scanning timestamp: unsupported type %T", src)
	}

	t = t.UTC()
	if d.nullable != nil {
		*d.nullable = &t
		return nil
	}
	*d.value = t
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("scanning timestamp: unrecognized format %q", s)
}
