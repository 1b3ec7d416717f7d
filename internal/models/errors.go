package models

import "errors"

var (
	// ErrDuplicateTitle is returned when a project title is already taken
	ErrDuplicateTitle = errors.New("project title already exists")

	// ErrDuplicateID is returned when a restored collection repeats a project id
	ErrDuplicateID = errors.New("project id already exists")

	// ErrAlreadyAssigned is returned when assigning a task that already has an assignee
	ErrAlreadyAssigned = errors.New("task already assigned")

	// ErrEmptyAssignee is returned when assigning a task to a blank name
	ErrEmptyAssignee = errors.New("assignee must not be empty")

	ErrUnknownPriority = errors.New("unknown priority")
	ErrUnknownState    = errors.New("unknown task state")
)

// ErrInvalidRecord is returned when a stored project cannot be restored
var ErrInvalidRecord = errors.New("invalid project record")
