// Package uniqueness backs the validateUnique capability with a store of
// values already taken, one namespace (scope) per field kind.
package uniqueness

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

// Store answers whether a value is taken within a scope. Values compare
// case-insensitively after trimming.
type Store interface {
	Exists(ctx context.Context, scope, value string) (bool, error)
}

// Key is the normalized form under which a value is stored
func Key(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// OpenSQLite opens or creates the store
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageError(err, "failed to create directory").WithDetail("path", dir)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageError(err, "failed to open database").WithDetail("path", cfg.Path)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storageError(err, "failed to initialize schema").WithDetail("path", cfg.Path)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS taken_values (
		scope TEXT NOT NULL,
		value_key TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (scope, value_key)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Exists reports whether value is taken in scope
func (s *SQLiteStore) Exists(ctx context.Context, scope, value string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM taken_values WHERE scope = ? AND value_key = ?`,
		scope, Key(value)).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, storageError(err, "failed to query value").WithDetail("scope", scope)
	default:
		return true, nil
	}
}

// Add marks value as taken in scope. Adding a taken value is a no-op and
// reports false.
func (s *SQLiteStore) Add(ctx context.Context, scope, value string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO taken_values (scope, value_key, value, created_at)
		VALUES (?, ?, ?, ?)
	`, scope, Key(value), strings.TrimSpace(value), time.Now().UTC())
	if err != nil {
		return false, storageError(err, "failed to insert value").WithDetail("scope", scope)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// Remove releases value in scope
func (s *SQLiteStore) Remove(ctx context.Context, scope, value string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM taken_values WHERE scope = ? AND value_key = ?`,
		scope, Key(value))
	if err != nil {
		return false, storageError(err, "failed to delete value").WithDetail("scope", scope)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// List returns the values of scope as originally added, sorted by key
func (s *SQLiteStore) List(ctx context.Context, scope string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM taken_values WHERE scope = ? ORDER BY value_key`, scope)
	if err != nil {
		return nil, storageError(err, "failed to list values").WithDetail("scope", scope)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageError(err, "failed to scan value").WithDetail("scope", scope)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func storageError(err error, message string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeStorageError).
		WithOperation("uniqueness.SQLiteStore")
}

// Memory is an in-memory Store for tests and dry runs
type Memory struct {
	mu     sync.RWMutex
	scopes map[string]map[string]bool
}

// NewMemory creates a memory store preloaded with taken values per scope
func NewMemory(taken map[string][]string) *Memory {
	m := &Memory{scopes: make(map[string]map[string]bool)}
	for scope, values := range taken {
		for _, v := range values {
			m.add(scope, v)
		}
	}
	return m
}

// Exists reports whether value is taken in scope
func (m *Memory) Exists(_ context.Context, scope, value string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scopes[scope][Key(value)], nil
}

// Add marks value as taken in scope
func (m *Memory) Add(_ context.Context, scope, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(scope, value), nil
}

func (m *Memory) add(scope, value string) bool {
	set, ok := m.scopes[scope]
	if !ok {
		set = make(map[string]bool)
		m.scopes[scope] = set
	}
	key := Key(value)
	if set[key] {
		return false
	}
	set[key] = true
	return true
}

// List returns the normalized values of scope in sorted order
func (m *Memory) List(_ context.Context, scope string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]string, 0, len(m.scopes[scope]))
	for v := range m.scopes[scope] {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}
