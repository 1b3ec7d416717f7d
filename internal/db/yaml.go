package db

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tgienger/projman/internal/models"
)

// documentVersion identifies the YAML layout written by YAMLStore
const documentVersion = 1

// document is the top-level YAML layout
type document struct {
	Version       int          `yaml:"version"`
	SavedAt       time.Time    `yaml:"saved_at"`
	NextProjectID int          `yaml:"next_project_id"`
	Projects      []projectDoc `yaml:"projects"`
}

// projectDoc mirrors models.ProjectRecord with tasks whose priority and
// state must be spelled out
type projectDoc struct {
	ID          int       `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Created     time.Time `yaml:"created"`
	NextTaskID  int       `yaml:"next_task_id"`
	Tasks       []taskDoc `yaml:"tasks"`
}

type taskDoc struct {
	ID          int               `yaml:"id"`
	Description string            `yaml:"description"`
	Priority    *models.Priority  `yaml:"priority"`
	State       *models.TaskState `yaml:"state"`
	Assignee    string            `yaml:"assignee,omitempty"`
	LastUpdated time.Time         `yaml:"last_updated"`
}

var errMissingField = errors.New("missing field")

func projectDocs(recs []models.ProjectRecord) []projectDoc {
	out := make([]projectDoc, 0, len(recs))
	for _, r := range recs {
		d := projectDoc{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Created:     r.Created,
			NextTaskID:  r.NextTaskID,
			Tasks:       make([]taskDoc, 0, len(r.Tasks)),
		}
		for _, t := range r.Tasks {
			d.Tasks = append(d.Tasks, taskDoc{
				ID:          t.ID,
				Description: t.Description,
				Priority:    &t.Priority,
				State:       &t.State,
				Assignee:    t.Assignee,
				LastUpdated: t.LastUpdated,
			})
		}
		out = append(out, d)
	}
	return out
}

// projectRecords converts parsed documents back, rejecting tasks that leave
// out their priority or state
func projectRecords(docs []projectDoc) ([]models.ProjectRecord, error) {
	out := make([]models.ProjectRecord, 0, len(docs))
	for _, d := range docs {
		r := models.ProjectRecord{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Created:     d.Created,
			NextTaskID:  d.NextTaskID,
			Tasks:       make([]models.TaskRecord, 0, len(d.Tasks)),
		}
		for _, t := range d.Tasks {
			if t.Priority == nil {
				return nil, fmt.Errorf("%w: project %d task %d: priority", errMissingField, d.ID, t.ID)
			}
			if t.State == nil {
				return nil, fmt.Errorf("%w: project %d task %d: state", errMissingField, d.ID, t.ID)
			}
			r.Tasks = append(r.Tasks, models.TaskRecord{
				ID:          t.ID,
				Description: t.Description,
				Priority:    *t.Priority,
				State:       *t.State,
				Assignee:    t.Assignee,
				LastUpdated: t.LastUpdated,
			})
		}
		out = append(out, r)
	}
	return out, nil
}

// YAMLStore keeps the collection in a human-readable YAML file
type YAMLStore struct {
	path string
}

// NewYAMLStore returns a store for the YAML file at path
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

func (s *YAMLStore) Path() string { return s.path }

// Save marshals the collection and writes it atomically via a temp file
func (s *YAMLStore) Save(c Collection) error {
	doc := document{
		Version:       documentVersion,
		SavedAt:       time.Now(),
		NextProjectID: c.NextProjectID,
		Projects:      projectDocs(records(c.Projects)),
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("%w: marshal projects: %w", ErrIO, err)
	}

	return writeAtomic(s.path, func(tmpPath string) error {
		return os.WriteFile(tmpPath, data, 0644)
	})
}

// Load parses the YAML file. Unknown fields are rejected.
func (s *YAMLStore) Load() (Collection, error) {
	ok, err := statSource(s.path)
	if err != nil {
		return Collection{}, err
	}
	if !ok {
		return emptyCollection(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyCollection(), nil
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Collection{}, fmt.Errorf("%w: parse %s: %w", ErrFormat, s.path, err)
	}
	if doc.Version != documentVersion {
		return Collection{}, fmt.Errorf("%w: %s: unsupported document version %d", ErrFormat, s.path, doc.Version)
	}

	recs, err := projectRecords(doc.Projects)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	c, err := restore(recs, doc.NextProjectID)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrFormat, s.path, err)
	}
	return c, nil
}
