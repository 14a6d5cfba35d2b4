package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavor spoken by the connected database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// driverSpec is a resolved database/sql driver registration.
type driverSpec struct {
	name    string // database/sql driver name
	dialect Dialect
	dsn     string
}

// sqlitePragmas are appended to every sqlite DSN. Foreign keys are off by
// default in sqlite and the schema relies on them.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// resolveDriver picks the database/sql driver for a connection string.
// An empty driver infers one from the URL scheme.
func resolveDriver(driver, rawURL string) (driverSpec, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return driverSpec{}, fmt.Errorf("database url is empty")
	}

	if driver == "" {
		driver = inferDriver(rawURL)
		if driver == "" {
			return driverSpec{}, fmt.Errorf("cannot infer database driver from url scheme")
		}
	}

	switch driver {
	case "pgx":
		return driverSpec{name: "pgx", dialect: DialectPostgres, dsn: rawURL}, nil
	case "pq":
		return driverSpec{name: "postgres", dialect: DialectPostgres, dsn: rawURL}, nil
	case "sqlite":
		return driverSpec{name: "sqlite", dialect: DialectSQLite, dsn: sqliteDSN(rawURL)}, nil
	default:
		return driverSpec{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func inferDriver(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx"
	case strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"):
		return "sqlite"
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		// keyword/value DSN
		return "pgx"
	default:
		return ""
	}
}

// sqliteDSN turns sqlite:///abs.db, sqlite:rel.db, file:x.db or a bare path
// into a modernc DSN with the required pragmas.
func sqliteDSN(rawURL string) string {
	path := rawURL
	switch {
	case strings.HasPrefix(path, "sqlite://"):
		path = strings.TrimPrefix(path, "sqlite://")
	case strings.HasPrefix(path, "sqlite:"):
		path = strings.TrimPrefix(path, "sqlite:")
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i+1:]
	}
	params := make([]string, 0, len(sqlitePragmas)+1)
	if query != "" {
		params = append(params, query)
	}
	for _, p := range sqlitePragmas {
		key := p[:strings.IndexByte(p, '(')]
		if !strings.Contains(query, key) {
			params = append(params, p)
		}
	}
	return path + "?" + strings.Join(params, "&")
}

// now returns the current-time expression used to stamp updated_at. It
// matches the precision of the created_at column default.
func (d Dialect) now() string {
	if d == DialectSQLite {
		return "strftime('%Y-%m-%d %H:%M:%f', 'now')"
	}
	return "CURRENT_TIMESTAMP"
}

// rebind rewrites ? placeholders into the dialect's positional form.
// Queries in this package never contain a literal question mark.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
