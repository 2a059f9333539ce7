package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that mean the server has no room for the write.
const (
	pgDiskFull    = "53100"
	pgOutOfMemory = "53200"
)

// SQLStore is a Postgres-backed implementation of the KeyValueStore port.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// Initialize the key/value table on Postgres.
func InitSQLSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init sql schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("init sql schema: create kv_store: %w", err)
	}

	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sql.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("sql kv store: db is nil")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sql kv key=%q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) (err error) {
	defer obs.Time(ctx, "kv.sql.Set")(&err)

	if s.DB == nil {
		return errors.New("sql kv store: db is nil")
	}

	query := `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set sql kv key=%q: %w", key, classifyPgError(err))
	}

	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sql kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete sql kv key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("sql kv store: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key;`)
	if err != nil {
		return nil, fmt.Errorf("list sql kv keys: query kv_store table: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, 8)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list sql kv keys: scan row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sql kv keys: row iteration: %w", err)
	}

	return keys, nil
}

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgDiskFull || pgErr.Code == pgOutOfMemory) {
		return fmt.Errorf("%w: %v", ports.ErrQuotaExceeded, err)
	}
	return err
}
