package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"

	"github.com/AccelByte/extend-runner-progression/pkg/errors"

	"github.com/lib/pq" // PostgreSQL driver and array support
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore implements Store on a two-column PostgreSQL table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore creates a PostgreSQL-backed store on the given table.
// The table name is interpolated into queries, so it must be a plain identifier.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, errors.ErrValidationFailed("table", fmt.Sprintf("invalid table name %q", table))
	}
	return &PostgresStore{db: db, table: table}, nil
}

// EnsureSchema creates the backing table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key VARCHAR(255) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.ErrStoreError("ensure schema", err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.ErrStoreError("get", err)
	}
	return value, true, nil
}

// Set upserts the value under key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return errors.ErrStoreError("set", err)
	}
	return nil
}

// Delete removes key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return errors.ErrStoreError("delete", err)
	}
	return nil
}

// GetMany retrieves several keys in a single query using a text array parameter.
func (s *PostgresStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT key, value FROM %s WHERE key = ANY($1)`, s.table)

	rows, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, errors.ErrStoreError("get many", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.ErrStoreError("scan", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrStoreError("iterate", err)
	}

	return result, nil
}
