package domain

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrInvalidTaskText    = errors.New("invalid task text")
	ErrTaskNotFound       = errors.New("task not found")
)
