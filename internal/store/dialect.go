// internal/store/dialect.go
//
// SQL dialects for the kv backend.
// Queries are written once with ? placeholders; each dialect rewrites them
// and supplies the statements whose syntax differs between engines.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect covers the engine-specific parts of the kv backend.
type Dialect interface {
	// Name is the STORE_BACKEND value that selects this dialect.
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN turns the configured path or URL into a driver DSN.
	DSN(target string) (string, error)

	// RewriteQuery converts ? placeholders if needed.
	RewriteQuery(query string) string

	// UpsertQuery writes (k, v, updated_at), replacing an existing row.
	UpsertQuery() string

	// ConfigureConnection applies pool and session settings.
	ConfigureConnection(db *sql.DB) error
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported store backend: %s", name)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}

// ---- sqlite ----

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite3" }

// DSN ensures the parent directory exists for relative paths like
// ./data/wordibble.db and adds busy timeout and WAL journaling.
func (sqliteDialect) DSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite: empty DB_PATH")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL", nil
}

func (sqliteDialect) RewriteQuery(q string) string { return q }

func (sqliteDialect) UpsertQuery() string {
	return `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
}

func (sqliteDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return fmt.Errorf("set pragmas: %w", err)
	}
	return nil
}

// ---- postgres ----

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("postgres: empty DATABASE_URL")
	}
	return url, nil
}

func (postgresDialect) RewriteQuery(q string) string { return rewritePlaceholdersToNumbered(q) }

func (postgresDialect) UpsertQuery() string {
	return `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = EXCLUDED.updated_at`
}

func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

// ---- mysql ----

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("mysql: empty DATABASE_URL")
	}
	return url, nil
}

func (mysqlDialect) RewriteQuery(q string) string { return q }

func (mysqlDialect) UpsertQuery() string {
	return `INSERT INTO kv (k, v, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`
}

func (mysqlDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}
