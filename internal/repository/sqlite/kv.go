package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/profile-lookup/internal/repository"
)

// compile-time check that *DB implements repository.KVStore
var _ repository.KVStore = (*DB)(nil)

// Get reads the value stored under key.
// A missing row is not an error: it returns found = false.
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: getting %s: %w", key, err)
	}

	return value, true, nil
}

// Set writes value under key, overwriting any previous value.
//
// ON CONFLICT ... DO UPDATE keeps the original created_at, so the row
// records when the handle was first looked up and when it was last written.
func (db *DB) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %s: %w", key, err)
	}

	return nil
}

// Count returns the number of stored entries.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting entries: %w", err)
	}
	return n, nil
}
