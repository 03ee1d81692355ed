package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{ID: "task-1", Text: "Read 20 pages"}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateRejectsBlankText(t *testing.T) {
	err := Task{ID: "task-1", Text: "   "}.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "task.text" {
		t.Fatalf("unexpected field: %q", ve.Field)
	}
}

func TestValidateTasksRejectsDuplicateIDs(t *testing.T) {
	err := ValidateTasks([]Task{{ID: "a", Text: "one"}, {ID: "a", Text: "two"}})
	if !errors.Is(err, ErrDuplicateTaskID) {
		t.Fatalf("expected ErrDuplicateTaskID, got %v", err)
	}
}

func TestNormalizeDropsStaleCompletions(t *testing.T) {
	rec := UserRecord{
		Tasks:          []Task{{ID: "y", Text: "y"}},
		CompletedTasks: map[string]bool{"x": true, "y": false},
	}
	rec.Normalize()
	if _, ok := rec.CompletedTasks["x"]; ok {
		t.Fatalf("expected stale completion to be dropped: %#v", rec.CompletedTasks)
	}
	if rec.CurrentDay != 1 || rec.TrackingLengthDays != DefaultTrackingLengthDays {
		t.Fatalf("unexpected defaults after normalize: %+v", rec)
	}
	if rec.DailyRecords == nil {
		t.Fatal("expected daily records map to be created")
	}
}

func TestCloneIsDeep(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	day := Date{Year: 2024, Month: time.January, Day: 1}
	rec := NewUserRecord(Profile{UID: "u1"})
	rec.Tasks = append(rec.Tasks, Task{ID: "a", Text: "A"})
	rec.CompletedTasks["a"] = true
	rec.DailyRecords[day] = ArchivedDay{DayNumber: 1, Tasks: []ArchivedTask{{ID: "a", Text: "A", Completed: true, CompletedAt: &at}}}

	cp := rec.Clone()
	rec.Tasks[0].Text = "changed"
	rec.CompletedTasks["a"] = false
	*rec.DailyRecords[day].Tasks[0].CompletedAt = at.Add(time.Hour)

	if cp.Tasks[0].Text != "A" || !cp.CompletedTasks["a"] {
		t.Fatalf("clone shares task state: %+v", cp)
	}
	if !cp.DailyRecords[day].Tasks[0].CompletedAt.Equal(at) {
		t.Fatalf("clone shares archived timestamps: %v", cp.DailyRecords[day].Tasks[0].CompletedAt)
	}
}
