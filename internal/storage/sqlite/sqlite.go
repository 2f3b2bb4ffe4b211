// Package sqlite provides a SQLite-backed implementation of storage.SuggestionCache.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/mealsplit/internal/storage"
)

// Ensure Cache implements storage.SuggestionCache
var _ storage.SuggestionCache = (*Cache)(nil)

// Cache implements storage.SuggestionCache using SQLite.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Cache with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Cache, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached entries for key if they have not expired.
func (c *Cache) Get(ctx context.Context, key string) ([]string, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		"SELECT entries FROM suggestions WHERE key = ? AND expires_at > ?",
		key, c.now().UnixNano(),
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get suggestion: %w", err)
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode suggestion: %w", err)
	}
	return entries, true, nil
}

// Put stores entries under key, replacing any previous value.
func (c *Cache) Put(ctx context.Context, key string, entries []string, ttl time.Duration) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode suggestion: %w", err)
	}

	now := c.now()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO suggestions (key, entries, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET entries = excluded.entries,
		     created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, string(raw), now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store suggestion: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired entries and returns how many were removed.
func (c *Cache) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM suggestions WHERE expires_at <= ?",
		c.now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge suggestions: %w", err)
	}
	return res.RowsAffected()
}
