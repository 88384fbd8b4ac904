package tasks

import "errors"

var (
	// ErrNotFound is returned for missing tasks or tasks owned by someone else.
	ErrNotFound = errors.New("tasks: not found")
	// ErrHistoryNotFound is returned for missing history rows.
	ErrHistoryNotFound = errors.New("tasks: history not found")
	// ErrInvalidCycle is returned for unknown reset cycle values.
	ErrInvalidCycle = errors.New("tasks: invalid reset cycle")
	// ErrNoLimit is returned when progress is added to a task without a target.
	ErrNoLimit = errors.New("tasks: task has no target")
)
