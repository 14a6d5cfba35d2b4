package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/adapters/store"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
)

// ErrTest is a generic test error.
var ErrTest = errors.New("test error")

// PostgresURLEnv names the variable that enables Postgres integration tests.
const PostgresURLEnv = "LIFEBOARD_TEST_DATABASE_URL"

// TempDir creates a temporary directory for tests.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "lifeboard-test-*")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// TempFile creates a temporary file with content.
func TempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

// NewTestStore opens a fresh SQLite database under t.TempDir with the
// schema applied. The store is closed when the test ends.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	cfg := config.DatabaseConfig{
		URL:            "sqlite:" + filepath.Join(t.TempDir(), "lifeboard.db"),
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		ConnectTimeout: 5 * time.Second,
	}
	return openAndApply(t, cfg)
}

// RequirePostgres returns a store connected to the database named by
// LIFEBOARD_TEST_DATABASE_URL, skipping the test when it is unset.
func RequirePostgres(t *testing.T) *store.Store {
	t.Helper()

	url := strings.TrimSpace(os.Getenv(PostgresURLEnv))
	if url == "" {
		t.Skipf("%s not set; skipping Postgres integration test", PostgresURLEnv)
	}

	cfg := config.DatabaseConfig{
		URL:            url,
		MaxOpenConns:   4,
		MaxIdleConns:   2,
		ConnectTimeout: 10 * time.Second,
	}
	s := openAndApply(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.DB().ExecContext(ctx, `TRUNCATE tasks, checklists, life_spheres RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
	return s
}

func openAndApply(t *testing.T, cfg config.DatabaseConfig) *store.Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.ApplySchema(ctx); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return s
}

// AssertNoError fails if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails if got != want.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// AssertContains fails if s does not contain substr.
func AssertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("expected %q to contain %q", s, substr)
	}
}

// AssertLen fails if len(s) != want.
func AssertLen[T any](t *testing.T, s []T, want int) {
	t.Helper()
	if len(s) != want {
		t.Fatalf("len() = %d, want %d", len(s), want)
	}
}

// AssertTrue fails if b is false.
func AssertTrue(t *testing.T, b bool, msg string) {
	t.Helper()
	if !b {
		t.Fatalf("expected true: %s", msg)
	}
}

// AssertFalse fails if b is true.
func AssertFalse(t *testing.T, b bool, msg string) {
	t.Helper()
	if b {
		t.Fatalf("expected false: %s", msg)
	}
}
