package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tgienger/projman/internal/db"
	"github.com/tgienger/projman/internal/models"
)

// Session is one run of the application: the collection loaded at start,
// mutated by the presentation layer and saved at exit. Mutations go through
// Session so they are logged and the collection is marked dirty.
type Session struct {
	manager *models.ProjectsManager
	gateway db.Gateway
	log     *zap.Logger
	dirty   bool
}

// Open loads the collection from gw. A missing store starts an empty session.
func Open(gw db.Gateway, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c, err := gw.Load()
	if err != nil {
		log.Error("load projects", zap.String("path", gw.Path()), zap.Error(err))
		return nil, fmt.Errorf("load projects: %w", err)
	}

	m := models.NewProjectsManager()
	if err := m.Restore(c.Projects, c.NextProjectID); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	log.Info("projects loaded",
		zap.String("path", gw.Path()),
		zap.Int("count", len(c.Projects)),
		zap.Int("next_project_id", m.NextProjectID()),
	)
	return &Session{manager: m, gateway: gw, log: log}, nil
}

// Path returns the file backing the session
func (s *Session) Path() string { return s.gateway.Path() }

// Dirty reports whether anything changed since the last load or save
func (s *Session) Dirty() bool { return s.dirty }

// Save writes the collection back to the store
func (s *Session) Save() error {
	return s.SaveTo(s.gateway)
}

// SaveTo writes the collection to another store, e.g. for export. Saving
// to the session's own store clears the dirty flag.
func (s *Session) SaveTo(gw db.Gateway) error {
	c := db.CollectionOf(s.manager)
	if err := gw.Save(c); err != nil {
		s.log.Error("save projects", zap.String("path", gw.Path()), zap.Error(err))
		return fmt.Errorf("save projects: %w", err)
	}
	if gw == s.gateway {
		s.dirty = false
	}
	s.log.Info("projects saved", zap.String("path", gw.Path()), zap.Int("count", len(c.Projects)))
	return nil
}

// Projects returns every project in insertion order
func (s *Session) Projects() []*models.Project { return s.manager.Projects() }

// SortedProjects returns every project ordered by title
func (s *Session) SortedProjects() []*models.Project { return s.manager.SortedProjects() }

// FindProjects returns the projects titled exactly title
func (s *Session) FindProjects(title string) []*models.Project {
	return s.manager.FindProjects(title)
}

// Project looks a project up by id
func (s *Session) Project(id int) (*models.Project, bool) {
	return s.manager.ProjectByID(id)
}

// HighestID returns the largest project id, ok is false without projects
func (s *Session) HighestID() (int, bool) { return s.manager.HighestID() }

// AddProject creates a project
func (s *Session) AddProject(title, description string) (*models.Project, error) {
	p, err := s.manager.AddProject(title, description)
	if err != nil {
		s.log.Warn("add project rejected", zap.String("title", title), zap.Error(err))
		return nil, err
	}
	s.dirty = true
	s.log.Info("project added", zap.Int("project_id", p.ID()), zap.String("title", title))
	return p, nil
}

// RemoveProject removes the project with the given id and returns it
func (s *Session) RemoveProject(id int) (*models.Project, bool) {
	p, ok := s.manager.ProjectByID(id)
	if !ok {
		return nil, false
	}
	s.manager.RemoveProject(p)
	s.dirty = true
	s.log.Info("project removed", zap.Int("project_id", id), zap.Int("tasks", p.TaskCount()))
	return p, true
}

// AddTask adds a task to p
func (s *Session) AddTask(p *models.Project, description string, priority models.Priority) *models.Task {
	t := p.AddTask(description, priority)
	s.dirty = true
	s.log.Info("task added",
		zap.Int("project_id", p.ID()),
		zap.Int("task_id", t.ID()),
		zap.Stringer("priority", priority),
	)
	return t
}

// RemoveTask removes t from p
func (s *Session) RemoveTask(p *models.Project, t *models.Task) bool {
	if !p.RemoveTask(t) {
		return false
	}
	s.dirty = true
	s.log.Info("task removed", zap.Int("project_id", p.ID()), zap.Int("task_id", t.ID()))
	return true
}

// SetTaskDescription replaces the description of t
func (s *Session) SetTaskDescription(p *models.Project, t *models.Task, description string) {
	t.SetDescription(description)
	s.taskChanged(p, t, "description")
}

// SetTaskPriority replaces the priority of t
func (s *Session) SetTaskPriority(p *models.Project, t *models.Task, priority models.Priority) {
	t.SetPriority(priority)
	s.taskChanged(p, t, "priority")
}

// SetTaskState replaces the state of t
func (s *Session) SetTaskState(p *models.Project, t *models.Task, state models.TaskState) {
	t.SetState(state)
	s.taskChanged(p, t, "state")
}

// AssignTask records who takes t
func (s *Session) AssignTask(p *models.Project, t *models.Task, name string) error {
	if err := t.Assign(name); err != nil {
		s.log.Warn("assign rejected",
			zap.Int("project_id", p.ID()),
			zap.Int("task_id", t.ID()),
			zap.Error(err),
		)
		return err
	}
	s.taskChanged(p, t, "assignee")
	return nil
}

func (s *Session) taskChanged(p *models.Project, t *models.Task, field string) {
	s.dirty = true
	s.log.Debug("task updated",
		zap.Int("project_id", p.ID()),
		zap.Int("task_id", t.ID()),
		zap.String("field", field),
		zap.Stringer("project_state", p.State()),
	)
}
