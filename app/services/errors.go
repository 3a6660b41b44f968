package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskNotFound is returned when a task id does not resolve in the store.
var ErrTaskNotFound = errors.New("task not found")

// DependentTasksError is returned when a delete is refused because other
// tasks still depend on the target. Titles is a preview capped at
// DependentTitlePreview entries.
type DependentTasksError struct {
	TaskID string
	Count  int
	Titles []string
}

// DependentTitlePreview caps how many dependent titles a
// DependentTasksError carries.
const DependentTitlePreview = 3

func (e *DependentTasksError) Error() string {
	plural := ""
	if e.Count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("cannot delete task %s: %d task%s depend on it (%s)",
		e.TaskID, e.Count, plural, strings.Join(e.Titles, ", "))
}
