package repository

import "errors"

// Common repository errors
var (
	ErrBoardNotFound  = errors.New("board not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrLabelNotFound  = errors.New("label not found")
	ErrShareNotFound  = errors.New("board share not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrLabelExists    = errors.New("label name already used on this board")

	// ErrNotPending is returned when clearing a pending marker that is
	// absent or belongs to another action.
	ErrNotPending = errors.New("row is not pending for this action")
)
