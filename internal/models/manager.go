package models

import (
	"fmt"
	"slices"
)

// ProjectsManager owns every project and hands out project ids
type ProjectsManager struct {
	nextProjectID int
	projects      []*Project
}

// NewProjectsManager returns an empty manager
func NewProjectsManager() *ProjectsManager {
	return &ProjectsManager{}
}

// AddProject creates a project with a unique title
func (m *ProjectsManager) AddProject(title, description string) (*Project, error) {
	if !m.IsTitleUnique(title) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
	}
	p := newProject(m.nextProjectID, title, description)
	m.nextProjectID++
	m.projects = append(m.projects, p)
	return p, nil
}

// RemoveProject removes the given project; unknown projects are ignored
func (m *ProjectsManager) RemoveProject(project *Project) {
	if i := slices.Index(m.projects, project); i >= 0 {
		m.projects = slices.Delete(m.projects, i, i+1)
	}
}

// ProjectByID looks a project up by its id
func (m *ProjectsManager) ProjectByID(id int) (*Project, bool) {
	for _, p := range m.projects {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// FindProjects returns the projects whose title equals title
func (m *ProjectsManager) FindProjects(title string) []*Project {
	found := []*Project{}
	for _, p := range m.projects {
		if p.title == title {
			found = append(found, p)
		}
	}
	return found
}

// IsTitleUnique reports whether no project uses title
func (m *ProjectsManager) IsTitleUnique(title string) bool {
	for _, p := range m.projects {
		if p.title == title {
			return false
		}
	}
	return true
}

// HighestID returns the largest project id. ok is false when there are
// no projects.
func (m *ProjectsManager) HighestID() (id int, ok bool) {
	for _, p := range m.projects {
		if !ok || p.id > id {
			id, ok = p.id, true
		}
	}
	return id, ok
}

// Projects returns the projects in insertion order. The slice is a copy.
func (m *ProjectsManager) Projects() []*Project {
	return slices.Clone(m.projects)
}

// SortedProjects returns the projects ordered by title
func (m *ProjectsManager) SortedProjects() []*Project {
	sorted := m.Projects()
	slices.SortStableFunc(sorted, (*Project).Compare)
	return sorted
}

// Len returns the number of projects
func (m *ProjectsManager) Len() int { return len(m.projects) }

// NextProjectID returns the id the next added project will get
func (m *ProjectsManager) NextProjectID() int { return m.nextProjectID }

// SetProjects replaces the collection, typically with one just loaded from
// storage. New projects get ids above the highest restored id.
func (m *ProjectsManager) SetProjects(projects []*Project) error {
	return m.Restore(projects, 0)
}

// Restore replaces the collection and resumes id allocation at
// nextProjectID, or above the highest restored id if that is larger.
// The id counter never moves backwards.
func (m *ProjectsManager) Restore(projects []*Project, nextProjectID int) error {
	titles := make(map[string]struct{}, len(projects))
	ids := make(map[int]struct{}, len(projects))
	for _, p := range projects {
		if _, dup := titles[p.title]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTitle, p.title)
		}
		if _, dup := ids[p.id]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, p.id)
		}
		titles[p.title] = struct{}{}
		ids[p.id] = struct{}{}
	}

	m.projects = slices.Clone(projects)
	m.nextProjectID = max(m.nextProjectID, nextProjectID)
	if highest, ok := m.HighestID(); ok && highest >= m.nextProjectID {
		m.nextProjectID = highest + 1
	}
	return nil
}
