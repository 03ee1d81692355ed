package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDuplicateTaskID = errors.New("model: duplicate task id")

// ValidationError reports input that was rejected before any state changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Reason)
}

type Task struct {
	ID   string
	Text string
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "task.id", Reason: "is required"}
	}
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Field: "task.text", Reason: "must not be empty"}
	}
	return nil
}

// ValidateTasks checks every task and rejects repeated ids.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return err
		}
		if seen[task.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateTaskID, task.ID)
		}
		seen[task.ID] = true
	}
	return nil
}

// ArchivedTask is one task's outcome inside an ArchivedDay.
type ArchivedTask struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *time.Time
}

// ArchivedDay is the immutable snapshot of a closed calendar day.
type ArchivedDay struct {
	DayNumber int
	Tasks     []ArchivedTask
	Notes     string
}

func (d ArchivedDay) CompletedCount() int {
	n := 0
	for _, task := range d.Tasks {
		if task.Completed {
			n++
		}
	}
	return n
}

func (d ArchivedDay) clone() ArchivedDay {
	out := ArchivedDay{DayNumber: d.DayNumber, Notes: d.Notes}
	if d.Tasks != nil {
		out.Tasks = make([]ArchivedTask, len(d.Tasks))
		for i, task := range d.Tasks {
			out.Tasks[i] = task
			if task.CompletedAt != nil {
				at := *task.CompletedAt
				out.Tasks[i].CompletedAt = &at
			}
		}
	}
	return out
}
