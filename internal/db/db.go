// Package db is the optional SQLite store for local client state. It holds
// only small key/value settings such as the onboarding flag; campaign and
// user data are never persisted.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbFile = "state.db"

// Well-known keys
const (
	KeyOnboardingCompleted = "onboarding_completed"
	KeyLastView            = "last_view"
	KeySearchQuery         = "search_query"
)

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	baseDir string
}

// Open opens (creating if needed) the state database under baseDir
func Open(baseDir string) (*DB, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dbPath := filepath.Join(baseDir, dbFile)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	db := &DB{conn: conn, baseDir: baseDir}
	if err := db.checkVersion(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// BaseDir returns the base directory for the database
func (db *DB) BaseDir() string {
	return db.baseDir
}

func (db *DB) checkVersion() error {
	v, ok, err := db.Get(keySchemaVersion)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if !ok {
		return db.Set(keySchemaVersion, fmt.Sprint(SchemaVersion))
	}
	if v != fmt.Sprint(SchemaVersion) {
		return fmt.Errorf("state database schema v%s is not supported (want v%d)", v, SchemaVersion)
	}
	return nil
}

// Get returns the value stored under key. ok is false when the key is unset.
func (db *DB) Get(key string) (value string, ok bool, err error) {
	err = db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts key
func (db *DB) Set(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes key; deleting an unset key is not an error
func (db *DB) Delete(key string) error {
	_, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// GetBool reads a boolean flag, false when unset
func (db *DB) GetBool(key string) (bool, error) {
	v, ok, err := db.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return v == "1" || v == "true", nil
}

// SetBool stores a boolean flag
func (db *DB) SetBool(key string, v bool) error {
	if v {
		return db.Set(key, "1")
	}
	return db.Set(key, "0")
}
