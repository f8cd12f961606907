package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTaskNotFound is returned when a task id cannot be resolved
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidFrequencyConfig is returned when a frequency is unknown
	// or a custom frequency is missing a positive interval
	ErrInvalidFrequencyConfig = errors.New("invalid frequency configuration")
)

// BulkFailure records one failed id within a bulk operation
type BulkFailure struct {
	TaskID string
	Err    error
}

// BulkError reports the ids that failed during a bulk operation. Ids
// that succeeded before or after a failure stay advanced; there is no
// rollback.
type BulkError struct {
	Failures []BulkFailure
}

// Error implements error
func (e *BulkError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.TaskID)
	}
	return fmt.Sprintf("bulk completion failed for %d task(s): %s",
		len(e.Failures), strings.Join(ids, ", "))
}
