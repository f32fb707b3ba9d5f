package sitecounts

import (
	"errors"
	"fmt"
)

var (
	// ErrRepositoryRequired is returned by New when no repository is configured
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrInvalidTimeWindow indicates an hour outside 0-23
	ErrInvalidTimeWindow = errors.New("invalid time window")

	// ErrInvalidMaxResults indicates a list query that would fetch nothing
	ErrInvalidMaxResults = errors.New("max results must be at least 1")

	// ErrUnknownContentType indicates an item referencing an unregistered type
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrInvalidItemStatus indicates a status outside the known values
	ErrInvalidItemStatus = errors.New("invalid item status")
)

// RenderError wraps a failure in one step of a render.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("site counts render step %s failed: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
