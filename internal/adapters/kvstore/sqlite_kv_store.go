package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"package-organizer/internal/platform/obs"
	"package-organizer/internal/ports"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite-backed implementation of the KeyValueStore port.
type SqliteStore struct {
	DB *sql.DB
}

func NewSqliteStore(db *sql.DB) *SqliteStore {
	return &SqliteStore{DB: db}
}

// Initialize the key/value table.
func InitSqliteSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite schema: DB is nil")
	}

	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("init sqlite schema: create kv_store: %w", err)
	}

	return nil
}

func (s *SqliteStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sqlite.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("sqlite kv store: DB is nil")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sqlite kv key=%q: %w", key, err)
	}

	return value, true, nil
}

func (s *SqliteStore) Set(ctx context.Context, key, value string) (err error) {
	defer obs.Time(ctx, "kv.sqlite.Set")(&err)

	if s.DB == nil {
		return errors.New("sqlite kv store: DB is nil")
	}

	query := `
	INSERT OR REPLACE INTO kv_store (
		key,
		value
	)
	VALUES (?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set sqlite kv key=%q: %w", key, classifySqliteError(err))
	}

	return nil
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sqlite kv store: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete sqlite kv key=%q: %w", key, err)
	}

	return nil
}

func (s *SqliteStore) Keys(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite kv store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key;`)
	if err != nil {
		return nil, fmt.Errorf("list sqlite kv keys: query kv_store table: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, 8)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list sqlite kv keys: scan row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sqlite kv keys: row iteration: %w", err)
	}

	return keys, nil
}

// classifySqliteError maps SQLITE_FULL to ports.ErrQuotaExceeded.
func classifySqliteError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL {
		return fmt.Errorf("%w: %v", ports.ErrQuotaExceeded, err)
	}
	return err
}
