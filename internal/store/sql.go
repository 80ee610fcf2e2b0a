// internal/store/sql.go
//
// SQL implementation of Backend.
// Responsibilities:
//   - Opening the database with dialect-specific DSN and connection settings.
//   - Applying embedded migrations from sql/<dialect>/*.sql (idempotent,
//     recorded in _migrations).
//   - Serving Get/Set/Delete/DeletePrefix over a single kv table.
//
// MySQL runs each migration file as one Exec without multiStatements, so
// migration files hold a single statement each.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed sql
var migrationsFS embed.FS

// SQL is a Backend over database/sql.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens the database selected by backend ("sqlite", "postgres",
// "mysql") at target (a file path for sqlite, a URL otherwise) and applies
// migrations.
func OpenSQL(backend, target string) (*SQL, error) {
	d, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}
	dsn, err := d.DSN(target)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	if err := d.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure %s: %w", d.Name(), err)
	}
	s := &SQL{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies sql/<dialect>/*.sql in lexical order, skipping files
// already recorded in _migrations. Each file runs in its own transaction.
func (s *SQL) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name VARCHAR(255) PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	dir := path.Join("sql", s.dialect.Name())
	files, err := fs.Glob(migrationsFS, dir+"/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		name := path.Base(f)

		var done int
		err := s.db.QueryRow(s.dialect.RewriteQuery(`SELECT 1 FROM _migrations WHERE name = ?`), name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrationsFS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(s.dialect.RewriteQuery(`INSERT INTO _migrations (name) VALUES (?)`), name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Str("dialect", s.dialect.Name()).Msg("applied")
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, s.dialect.RewriteQuery(`SELECT v FROM kv WHERE k = ?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.RewriteQuery(s.dialect.UpsertQuery()),
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.RewriteQuery(`DELETE FROM kv WHERE k = ?`), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes keys by LIKE with '!' as escape, so % and _ in the
// prefix match literally.
func (s *SQL) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := likeEscaper.Replace(prefix) + "%"
	if _, err := s.db.ExecContext(ctx, s.dialect.RewriteQuery(`DELETE FROM kv WHERE k LIKE ? ESCAPE '!'`), pattern); err != nil {
		return fmt.Errorf("delete prefix %s: %w", prefix, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (s *SQL) Close() error { return s.db.Close() }
