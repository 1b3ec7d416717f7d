package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tgienger/projman/internal/models"
)

// Collection is everything a gateway stores: the projects in order and the
// id the manager hands out next
type Collection struct {
	Projects      []*models.Project
	NextProjectID int
}

// CollectionOf captures the manager's projects and id counter
func CollectionOf(m *models.ProjectsManager) Collection {
	return Collection{Projects: m.Projects(), NextProjectID: m.NextProjectID()}
}

// Gateway saves and loads the whole project collection
type Gateway interface {
	// Save replaces the stored collection. A zero Collection stores an
	// empty one. On failure the previous file is left as it was.
	Save(c Collection) error

	// Load returns the stored collection. A missing or empty file yields
	// an empty collection.
	Load() (Collection, error)

	// Path returns the file the gateway reads and writes
	Path() string
}

// Open returns the gateway for path, chosen by file extension:
// .yaml and .yml use YAML, anything else SQLite.
func Open(path string) Gateway {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLStore(path)
	}
	return NewSQLiteStore(path)
}

func records(projects []*models.Project) []models.ProjectRecord {
	out := make([]models.ProjectRecord, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Record())
	}
	return out
}

// emptyCollection is what loading a missing or empty file yields
func emptyCollection() Collection {
	return Collection{Projects: []*models.Project{}}
}

// restore rebuilds projects from records and checks the collection-level
// invariants (unique ids and titles)
func restore(recs []models.ProjectRecord, nextProjectID int) (Collection, error) {
	projects := make([]*models.Project, 0, len(recs))
	for _, r := range recs {
		p, err := models.RestoreProject(r)
		if err != nil {
			return Collection{}, err
		}
		projects = append(projects, p)
	}
	if nextProjectID < 0 {
		return Collection{}, fmt.Errorf("%w: negative next project id %d", models.ErrInvalidRecord, nextProjectID)
	}
	if err := models.NewProjectsManager().Restore(projects, nextProjectID); err != nil {
		return Collection{}, err
	}
	return Collection{Projects: projects, NextProjectID: nextProjectID}, nil
}

// statSource reports whether path holds any data. A missing file is not an error.
func statSource(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}
	return info.Size() > 0, nil
}

// writeAtomic creates a temp file next to path, lets fill populate it and
// renames it over path. The temp file is removed on every failure.
func writeAtomic(path string, fill func(tmpPath string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := fill(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into %s: %w", ErrIO, path, err)
	}
	return nil
}
