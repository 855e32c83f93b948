// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups of missing objects.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied marks actions the caller may not perform.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrJobBoard is the root of the job board domain errors.
	ErrJobBoard = errors.New("job board error")
	// ErrInvalidResume is returned when a resume upload cannot be parsed or is not acceptable.
	ErrInvalidResume = fmt.Errorf("%w: invalid resume", ErrJobBoard)
	// ErrApplicationWorkflow is returned for an invalid application status transition.
	ErrApplicationWorkflow = fmt.Errorf("%w: invalid application status transition", ErrJobBoard)
)
