package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/shared"
)

// StorageRepository is a string key/value store backed by the storage table.
type StorageRepository struct {
	db *sql.DB
}

// NewStorageRepository creates a new StorageRepository with the given database connection
func NewStorageRepository(db *sql.DB) *StorageRepository {
	return &StorageRepository{db: db}
}

// Get returns the value stored under key and whether it exists.
func (r *StorageRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *StorageRepository) Set(key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (r *StorageRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	if _, err := r.db.Exec("DELETE FROM storage WHERE key IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("%w: failed to delete keys: %v", shared.ErrStorage, err)
	}
	return nil
}

// Clear removes every key.
func (r *StorageRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM storage"); err != nil {
		return fmt.Errorf("%w: failed to clear storage: %v", shared.ErrStorage, err)
	}
	return nil
}

// Keys lists the stored keys in alphabetical order.
func (r *StorageRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM storage ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}
