package models

import (
	"fmt"
	"strings"
	"time"
)

// Task is a unit of work owned by exactly one Project.
// Tasks are created with Project.AddTask and removed with Project.RemoveTask.
type Task struct {
	id          int
	description string
	priority    Priority
	state       TaskState
	assignee    string
	lastUpdated time.Time
}

func newTask(id int, description string, priority Priority) *Task {
	return &Task{
		id:          id,
		description: description,
		priority:    priority,
		state:       StateTodo,
		lastUpdated: now(),
	}
}

// ID returns the task id, unique within the owning project
func (t *Task) ID() int { return t.id }

func (t *Task) Description() string { return t.description }
func (t *Task) Priority() Priority  { return t.priority }
func (t *Task) State() TaskState    { return t.state }

// LastUpdated returns the time of the most recent mutation
func (t *Task) LastUpdated() time.Time { return t.lastUpdated }

// Assignee returns who took the task and whether anyone has
func (t *Task) Assignee() (string, bool) {
	return t.assignee, t.assignee != ""
}

// IsAssigned reports whether the task has been taken
func (t *Task) IsAssigned() bool { return t.assignee != "" }

// SetDescription replaces the description
func (t *Task) SetDescription(description string) {
	t.description = description
	t.touch()
}

// SetPriority replaces the priority
func (t *Task) SetPriority(priority Priority) {
	t.priority = priority
	t.touch()
}

// SetState replaces the state
func (t *Task) SetState(state TaskState) {
	t.state = state
	t.touch()
}

// Assign records who takes the task. A task can only be taken once.
func (t *Task) Assign(name string) error {
	if t.assignee != "" {
		return fmt.Errorf("%w: task %d is taken by %s", ErrAlreadyAssigned, t.id, t.assignee)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyAssignee
	}
	t.assignee = name
	t.touch()
	return nil
}

// Compare orders tasks by priority, then by description
func (t *Task) Compare(other *Task) int {
	if t.priority != other.priority {
		if t.priority < other.priority {
			return -1
		}
		return 1
	}
	return strings.Compare(t.description, other.description)
}

func (t *Task) String() string {
	who := "-"
	if t.assignee != "" {
		who = t.assignee
	}
	return fmt.Sprintf("#%d [%s] %s (%s, %s)", t.id, t.state, t.description, t.priority, who)
}

// touch refreshes lastUpdated, never moving it backwards
func (t *Task) touch() {
	ts := now()
	if ts.Before(t.lastUpdated) {
		ts = t.lastUpdated
	}
	t.lastUpdated = ts
}
