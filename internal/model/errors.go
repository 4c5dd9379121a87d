package model

import "errors"

var (
	// ErrNotFound is returned when a project, offer or assignment does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an assignment status change
	// is not allowed by the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation is returned when request fields fail validation.
	ErrValidation = errors.New("validation failed")
)
