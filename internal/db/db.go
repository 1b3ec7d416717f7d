package db

import (
	"database/sql"
	_ "embed"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// schemaVersion is stored in the settings table of every saved file
const schemaVersion = "1"

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// openDB opens the SQLite file at path. When readOnly is false the schema
// is created; a read-only handle never changes the file.
func openDB(path string, readOnly bool) (*DB, error) {
	db, err := sql.Open("sqlite3", dataSource(path, readOnly))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &DB{db}, nil
}

// dataSource builds the URI for path. The path is escaped so that '?', '#'
// and '%' in a file name stay part of the name.
func dataSource(path string, readOnly bool) string {
	q := url.Values{"_foreign_keys": {"on"}}
	if readOnly {
		q.Set("mode", "ro")
	}
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String()
}

// DefaultPath returns the default location of the projects file
func DefaultPath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataDir, "projman", "projects.db"), nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// setSetting sets a setting value inside tx
func setSetting(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// hasTable reports whether the database defines the named table
func (db *DB) hasTable(name string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	return count > 0, err
}
