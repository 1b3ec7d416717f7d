package models

import (
	"fmt"
	"strings"
	"time"
)

// now is the clock used for created and last-updated timestamps.
// Tests replace it to get deterministic times.
var now = time.Now

// Priority orders tasks; lower values sort first
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// Priorities lists every priority in sort order
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Next returns the following priority, wrapping around after low
func (p Priority) Next() Priority {
	return (p + 1) % Priority(len(Priorities))
}

// ParsePriority parses a priority name such as "high" or "h"
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// TaskState is the progress of a single task
type TaskState int

const (
	StateTodo TaskState = iota
	StateInProgress
	StateDone
)

// TaskStates lists every task state in workflow order
var TaskStates = []TaskState{StateTodo, StateInProgress, StateDone}

func (s TaskState) String() string {
	switch s {
	case StateTodo:
		return "todo"
	case StateInProgress:
		return "in-progress"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Valid reports whether s is one of the known states
func (s TaskState) Valid() bool {
	return s >= StateTodo && s <= StateDone
}

// Next returns the following state, wrapping around after done
func (s TaskState) Next() TaskState {
	return (s + 1) % TaskState(len(TaskStates))
}

// ParseTaskState parses a state name such as "todo", "in-progress" or "done"
func ParseTaskState(s string) (TaskState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "open":
		return StateTodo, nil
	case "in-progress", "inprogress", "in_progress", "doing":
		return StateInProgress, nil
	case "done", "closed":
		return StateDone, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// ProjectState is derived from the states of a project's tasks
type ProjectState int

const (
	ProjectEmpty ProjectState = iota
	ProjectOngoing
	ProjectCompleted
)

func (s ProjectState) String() string {
	switch s {
	case ProjectEmpty:
		return "empty"
	case ProjectOngoing:
		return "ongoing"
	case ProjectCompleted:
		return "completed"
	}
	return fmt.Sprintf("project-state(%d)", int(s))
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPriority, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (s TaskState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *TaskState) UnmarshalText(text []byte) error {
	v, err := ParseTaskState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
