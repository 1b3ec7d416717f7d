package db

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// sqliteHeader starts every SQLite 3 database file
var sqliteHeader = []byte("SQLite format 3\x00")

// SQLiteStore keeps the collection in an SQLite database file
type SQLiteStore struct {
	path string
}

// NewSQLiteStore returns a store for the database file at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Path() string { return s.path }

// Save writes the collection into a fresh database and swaps it in
func (s *SQLiteStore) Save(c Collection) error {
	recs := records(c.Projects)
	return writeAtomic(s.path, func(tmpPath string) error {
		db, err := openDB(tmpPath, false)
		if err != nil {
			return err
		}
		defer db.Close()

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := setSetting(tx, "schema_version", schemaVersion); err != nil {
			return err
		}
		if err := setSetting(tx, "next_project_id", strconv.Itoa(c.NextProjectID)); err != nil {
			return err
		}
		for i, p := range recs {
			if err := insertProject(tx, i, p); err != nil {
				return fmt.Errorf("project %q: %w", p.Title, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		return db.Close()
	})
}

// Load reads the collection from the database file
func (s *SQLiteStore) Load() (Collection, error) {
	ok, err := statSource(s.path)
	if err != nil {
		return Collection{}, err
	}
	if !ok {
		return emptyCollection(), nil
	}
	if err := checkHeader(s.path); err != nil {
		return Collection{}, err
	}

	db, err := openDB(s.path, true)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: open %s: %w", ErrIO, s.path, err)
	}
	defer db.Close()

	hasProjects, err := db.hasTable("projects")
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	if !hasProjects {
		return Collection{}, fmt.Errorf("%w: %s has no projects table", ErrFormat, s.path)
	}
	if version, err := db.GetSetting("schema_version"); err != nil || version != schemaVersion {
		return Collection{}, fmt.Errorf("%w: %s: unsupported schema version %q", ErrFormat, s.path, version)
	}

	nextID := 0
	if raw, err := db.GetSetting("next_project_id"); err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	} else if raw != "" {
		if nextID, err = strconv.Atoi(raw); err != nil {
			return Collection{}, fmt.Errorf("%w: %s: next project id: %w", ErrFormat, s.path, err)
		}
	}

	recs, err := db.ListProjects()
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	c, err := restore(recs, nextID)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	return c, nil
}

// checkHeader separates unreadable files from files that are not SQLite
func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return fmt.Errorf("%w: %s is not an SQLite database", ErrFormat, path)
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("%w: %s is not an SQLite database", ErrFormat, path)
	}
	return nil
}
