package models

import (
	"fmt"
	"time"
)

// ProjectRecord is the storage form of a Project. The derived project
// state is not part of it.
type ProjectRecord struct {
	ID          int          `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Created     time.Time    `yaml:"created"`
	NextTaskID  int          `yaml:"next_task_id"`
	Tasks       []TaskRecord `yaml:"tasks"`
}

// TaskRecord is the storage form of a Task. An empty Assignee means unassigned.
type TaskRecord struct {
	ID          int       `yaml:"id"`
	Description string    `yaml:"description"`
	Priority    Priority  `yaml:"priority"`
	State       TaskState `yaml:"state"`
	Assignee    string    `yaml:"assignee,omitempty"`
	LastUpdated time.Time `yaml:"last_updated"`
}

// Record captures everything needed to rebuild the project
func (p *Project) Record() ProjectRecord {
	r := ProjectRecord{
		ID:          p.id,
		Title:       p.title,
		Description: p.description,
		Created:     p.created,
		NextTaskID:  p.nextTaskID,
		Tasks:       make([]TaskRecord, 0, len(p.tasks)),
	}
	for _, t := range p.tasks {
		r.Tasks = append(r.Tasks, TaskRecord{
			ID:          t.id,
			Description: t.description,
			Priority:    t.priority,
			State:       t.state,
			Assignee:    t.assignee,
			LastUpdated: t.lastUpdated,
		})
	}
	return r
}

// RestoreProject rebuilds a project from its record. Task ids must be
// unique and below NextTaskID.
func RestoreProject(r ProjectRecord) (*Project, error) {
	p := &Project{
		id:          r.ID,
		title:       r.Title,
		description: r.Description,
		created:     r.Created,
		nextTaskID:  r.NextTaskID,
		tasks:       make([]*Task, 0, len(r.Tasks)),
	}

	seen := make(map[int]struct{}, len(r.Tasks))
	for _, tr := range r.Tasks {
		if _, dup := seen[tr.ID]; dup {
			return nil, fmt.Errorf("%w: project %d repeats task id %d", ErrInvalidRecord, r.ID, tr.ID)
		}
		seen[tr.ID] = struct{}{}
		if tr.ID < 0 || tr.ID >= r.NextTaskID {
			return nil, fmt.Errorf("%w: project %d task id %d not below next id %d", ErrInvalidRecord, r.ID, tr.ID, r.NextTaskID)
		}
		if !tr.Priority.Valid() {
			return nil, fmt.Errorf("%w: task %d: %w", ErrInvalidRecord, tr.ID, ErrUnknownPriority)
		}
		if !tr.State.Valid() {
			return nil, fmt.Errorf("%w: task %d: %w", ErrInvalidRecord, tr.ID, ErrUnknownState)
		}
		p.tasks = append(p.tasks, &Task{
			id:          tr.ID,
			description: tr.Description,
			priority:    tr.Priority,
			state:       tr.State,
			assignee:    tr.Assignee,
			lastUpdated: tr.LastUpdated,
		})
	}
	return p, nil
}
