package service

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("access denied")
	ErrInvalidMove    = errors.New("invalid move")
	ErrActionNotFound = errors.New("action not found or already settled")
)
