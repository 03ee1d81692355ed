package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

// runStoreContract exercises the behaviour every DocumentStore shares.
func runStoreContract(t *testing.T, store DocumentStore, uid string) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, uid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before init, got %v", err)
	}
	if err := store.Patch(ctx, uid, model.NewPatch(model.UserRecord{Streak: 1}, model.FieldStreak)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound patching missing doc, got %v", err)
	}

	rec := model.NewUserRecord(model.Profile{UID: uid, Email: "ada@example.com", DisplayName: "Ada"})
	created, err := store.Init(ctx, uid, rec)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !created {
		t.Fatal("expected first init to create the document")
	}

	got, err := store.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UID != uid || got.Email != "ada@example.com" || got.CurrentDay != 1 || got.TrackingLengthDays != 7 {
		t.Fatalf("unexpected initial document: %#v", got)
	}
	if !got.LastActiveDate.IsZero() || got.Streak != 0 {
		t.Fatalf("unexpected initial streak state: %#v", got)
	}

	got.Tasks = []model.Task{{ID: "a", Text: "Run"}, {ID: "b", Text: "Read"}}
	got.CompletedTasks = map[string]bool{"a": true}
	at := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	got.DailyRecords = map[model.Date]model.ArchivedDay{
		mustDate(t, "2024-01-01"): {DayNumber: 1, Notes: "first", Tasks: []model.ArchivedTask{{ID: "a", Text: "Run", Completed: true, CompletedAt: &at}}},
		mustDate(t, "2024-01-02"): {DayNumber: 2, Notes: model.MissedDayNote, Tasks: []model.ArchivedTask{}},
	}
	got.LastActiveDate = mustDate(t, "2024-01-02")
	got.CurrentDay = 3
	if err := store.Patch(ctx, uid, model.NewPatch(got,
		model.FieldTasks, model.FieldCompletedTasks, model.FieldDailyRecords,
		model.FieldLastActiveDate, model.FieldCurrentDay,
	)); err != nil {
		t.Fatalf("patch: %v", err)
	}

	again, err := store.Init(ctx, uid, model.NewUserRecord(model.Profile{UID: uid}))
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if again {
		t.Fatal("expected second init to leave the document alone")
	}

	loaded, err := store.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get after patch: %v", err)
	}
	if len(loaded.Tasks) != 2 || loaded.Tasks[1].Text != "Read" || !loaded.CompletedTasks["a"] {
		t.Fatalf("unexpected tasks after patch: %#v %#v", loaded.Tasks, loaded.CompletedTasks)
	}
	if loaded.CurrentDay != 3 || loaded.LastActiveDate != mustDate(t, "2024-01-02") {
		t.Fatalf("unexpected day state: %#v", loaded)
	}
	day1 := loaded.DailyRecords[mustDate(t, "2024-01-01")]
	if day1.DayNumber != 1 || len(day1.Tasks) != 1 || day1.Tasks[0].CompletedAt == nil || !day1.Tasks[0].CompletedAt.Equal(at) {
		t.Fatalf("unexpected archived day: %#v", day1)
	}
	if loaded.Email != "ada@example.com" {
		t.Fatalf("unpatched field lost: %#v", loaded)
	}

	// Replacing dailyRecords drops the keys the new value no longer has.
	loaded.DailyRecords = map[model.Date]model.ArchivedDay{}
	loaded.LastActiveDate = model.Date{}
	if err := store.Patch(ctx, uid, model.NewPatch(loaded, model.FieldDailyRecords, model.FieldLastActiveDate)); err != nil {
		t.Fatalf("patch reset: %v", err)
	}
	reset, err := store.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if len(reset.DailyRecords) != 0 {
		t.Fatalf("expected daily records to be replaced, got %#v", reset.DailyRecords)
	}
	if !reset.LastActiveDate.IsZero() {
		t.Fatalf("expected lastActiveDate to be cleared, got %v", reset.LastActiveDate)
	}
	if len(reset.Tasks) != 2 {
		t.Fatalf("unpatched tasks changed: %#v", reset.Tasks)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore(), "local:ada")
}
