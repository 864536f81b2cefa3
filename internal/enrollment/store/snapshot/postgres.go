package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"biogate/pkg/platform/sentinel"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS record_snapshots (
	name       TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the snapshot as one row of a PostgreSQL table.
type PostgresStore struct {
	db   *sql.DB
	name string
}

// NewPostgres wraps an existing connection pool. Call EnsureSchema before use.
func NewPostgres(db *sql.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

// OpenPostgres connects to dsn and creates the snapshot table if missing.
func OpenPostgres(ctx context.Context, dsn, name string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgres(db, name)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the snapshot table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM record_snapshots WHERE name = $1`, s.name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read postgres snapshot: %w", err)
	}
	return payload, nil
}

func (s *PostgresStore) Write(ctx context.Context, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO record_snapshots (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		s.name, payload,
	)
	if err != nil {
		return fmt.Errorf("write postgres snapshot: %w", err)
	}
	return nil
}
