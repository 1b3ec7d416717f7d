package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Project is an aggregate of tasks with a unique title.
// Projects are created with ProjectsManager.AddProject.
type Project struct {
	id          int
	title       string
	description string
	created     time.Time
	nextTaskID  int
	tasks       []*Task
}

func newProject(id int, title, description string) *Project {
	return &Project{
		id:          id,
		title:       title,
		description: description,
		created:     now(),
	}
}

func (p *Project) ID() int             { return p.id }
func (p *Project) Title() string       { return p.title }
func (p *Project) Description() string { return p.description }
func (p *Project) Created() time.Time  { return p.created }

// NextTaskID returns the id the next added task will get
func (p *Project) NextTaskID() int { return p.nextTaskID }

// AddTask creates a task with the next sequential id and appends it
func (p *Project) AddTask(description string, priority Priority) *Task {
	t := newTask(p.nextTaskID, description, priority)
	p.nextTaskID++
	p.tasks = append(p.tasks, t)
	return t
}

// RemoveTask removes the given task and reports whether it was present
func (p *Project) RemoveTask(task *Task) bool {
	i := slices.Index(p.tasks, task)
	if i < 0 {
		return false
	}
	p.tasks = slices.Delete(p.tasks, i, i+1)
	return true
}

// TaskByID looks a task up by its id
func (p *Project) TaskByID(id int) (*Task, bool) {
	for _, t := range p.tasks {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// FindTasks returns every task accepted by the matcher, in insertion order
func (p *Project) FindTasks(m TaskMatcher) []*Task {
	found := []*Task{}
	for _, t := range p.tasks {
		if m.Match(t) {
			found = append(found, t)
		}
	}
	return found
}

// Tasks returns the tasks in insertion order. The slice is a copy.
func (p *Project) Tasks() []*Task {
	return slices.Clone(p.tasks)
}

// SortedTasks returns the tasks ordered by priority, then description
func (p *Project) SortedTasks() []*Task {
	sorted := p.Tasks()
	slices.SortStableFunc(sorted, (*Task).Compare)
	return sorted
}

// TaskCount returns the number of tasks
func (p *Project) TaskCount() int { return len(p.tasks) }

// LastUpdated returns the newest task update, or the creation time when
// the project has no tasks
func (p *Project) LastUpdated() time.Time {
	last := p.created
	for _, t := range p.tasks {
		if t.lastUpdated.After(last) {
			last = t.lastUpdated
		}
	}
	return last
}

// State derives the project state from its tasks
func (p *Project) State() ProjectState {
	if len(p.tasks) == 0 {
		return ProjectEmpty
	}
	for _, t := range p.tasks {
		if t.state != StateDone {
			return ProjectOngoing
		}
	}
	return ProjectCompleted
}

// Compare orders projects by title
func (p *Project) Compare(other *Project) int {
	return strings.Compare(p.title, other.title)
}

func (p *Project) String() string {
	return fmt.Sprintf("#%d %s: %s (%s, created %s)",
		p.id, p.title, p.description, p.State(), p.created.Format(time.DateTime))
}
