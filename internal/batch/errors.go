package batch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyRunning is returned by Start while a previous run is still
// in progress.
var ErrAlreadyRunning = errors.New("a run is already in progress")

// ValidationError reports the problems found in a job configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// NotFoundError reports a missing input folder.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("folder not found: %s", e.Path)
}
