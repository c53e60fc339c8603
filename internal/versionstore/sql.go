package versionstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

// Dialect selects placeholder syntax and driver for the SQL store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Driver returns the database/sql driver name for the dialect.
func (d Dialect) Driver() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	default:
		return "sqlite3"
	}
}

// placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d Dialect) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore keeps records in the type_versions table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore opens dsn with the dialect's driver and ensures the table
// exists.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}

	s := NewSQLStore(db, dialect)
	if err := s.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. Call Initialize before use.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Initialize ensures the type_versions table exists
func (s *SQLStore) Initialize(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS type_versions (
	name VARCHAR(512) PRIMARY KEY,
	kind VARCHAR(16) NOT NULL,
	version VARCHAR(16) NOT NULL,
	user_version INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize type_versions table: %w", err)
	}
	return nil
}

// Load returns the record for name
func (s *SQLStore) Load(ctx context.Context, name string) (Record, error) {
	query := s.dialect.bind(`
SELECT name, kind, version, user_version, recorded_at
FROM type_versions
WHERE name = ?`)

	var rec Record
	err := s.db.QueryRowContext(ctx, query, name).
		Scan(&rec.Name, &rec.Kind, &rec.Version, &rec.UserVersion, &rec.RecordedAt)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound{Name: name}
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load version of %s: %w", name, err)
	}
	return rec, nil
}

// Save upserts records in a single transaction
func (s *SQLStore) Save(ctx context.Context, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	query := s.dialect.bind(`
INSERT INTO type_versions (name, kind, version, user_version, recorded_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
	kind = excluded.kind,
	version = excluded.version,
	user_version = excluded.user_version,
	recorded_at = excluded.recorded_at`)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, query, rec.Name, rec.Kind, rec.Version, rec.UserVersion, rec.RecordedAt.UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record version of %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit versions: %w", err)
	}
	return nil
}

// All returns every record ordered by name
func (s *SQLStore) All(ctx context.Context) ([]Record, error) {
	query := `
SELECT name, kind, version, user_version, recorded_at
FROM type_versions
ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Kind, &rec.Version, &rec.UserVersion, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	return out, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
