package update

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(t *testing.T, s string) {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	c.now = v
}

type recordingWriter struct {
	patches []model.Patch
	errs    chan error
}

func (w *recordingWriter) Submit(p model.Patch) bool {
	w.patches = append(w.patches, p)
	return true
}

func (w *recordingWriter) Errors() <-chan error { return w.errs }

func (w *recordingWriter) last(t *testing.T) model.Patch {
	t.Helper()
	if len(w.patches) == 0 {
		t.Fatal("expected at least one patch")
	}
	return w.patches[len(w.patches)-1]
}

type recordingNotifier struct {
	sent []Notification
}

func (n *recordingNotifier) Send(note Notification) error {
	n.sent = append(n.sent, note)
	return nil
}

type fixture struct {
	clock  *fakeClock
	writer *recordingWriter
}

func twoTaskRecord() model.UserRecord {
	rec := model.NewUserRecord(model.Profile{UID: "local:tester"})
	rec.Tasks = []model.Task{{ID: "a", Text: "run"}, {ID: "b", Text: "read"}}
	return rec
}

func newTestModel(t *testing.T, rec model.UserRecord, at string, deps Deps) (Model, fixture) {
	t.Helper()
	clock := &fakeClock{}
	clock.Set(t, at)
	ids := 0
	deps.Engine = daycycle.New(rec,
		daycycle.WithClock(clock),
		daycycle.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("t%d", ids)
		}),
	)
	w := &recordingWriter{errs: make(chan error, 1)}
	deps.Writer = w
	return NewModel(deps), fixture{clock: clock, writer: w}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(keyMsg(k))
		m = updated.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m = press(t, m, "space")
			continue
		}
		m = press(t, m, string(r))
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.SelectedTaskID != "a" {
		t.Fatalf("expected first task selected, got %q", m.SelectedTaskID)
	}
	if m.Config.NotesDebounce != 500*time.Millisecond || m.Config.TickInterval != time.Minute {
		t.Fatalf("unexpected runtime defaults: %+v", m.Config)
	}
}

func TestToggleCompletionPersists(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "space")
	if !m.Engine.IsCompleted("a") {
		t.Fatal("expected task a completed")
	}
	patch := fx.writer.last(t)
	if !patch.Has(model.FieldCompletedTasks) || len(patch.Fields) != 1 {
		t.Fatalf("unexpected patch fields: %v", patch.Fields)
	}
	if m.Status.Text != "1/2 done (50%)" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m = press(t, m, "j", "space")
	if m.SelectedTaskID != "b" || !m.Engine.IsCompleted("b") {
		t.Fatalf("expected task b toggled, selected=%q", m.SelectedTaskID)
	}
	if m.Status.Text != "2/2 done (100%)" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestAddTaskOnDayOne(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "a")
	if !m.Today.Adding {
		t.Fatal("expected add mode")
	}
	m = typeText(t, m, "stretch 5m")
	m = press(t, m, "enter")

	tasks := m.Engine.Tasks()
	if len(tasks) != 3 || tasks[2].Text != "stretch 5m" || tasks[2].ID != "t1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if m.SelectedTaskID != "t1" {
		t.Fatalf("expected new task selected, got %q", m.SelectedTaskID)
	}
	if !fx.writer.last(t).Has(model.FieldTasks) {
		t.Fatal("expected tasks patch")
	}

	m = press(t, m, "enter")
	if m.Status.Text != "task text must not be empty" || !m.Status.IsError {
		t.Fatalf("expected validation error, got %+v", m.Status)
	}
	m = press(t, m, "esc")
	if m.Today.Adding {
		t.Fatal("expected add mode closed")
	}
}

func TestAddTaskRejectedAfterDayOne(t *testing.T) {
	rec := twoTaskRecord()
	rec.CurrentDay = 3
	m, fx := newTestModel(t, rec, "2024-01-03 10:00", Deps{})
	m = press(t, m, "a")
	if m.Today.Adding {
		t.Fatal("add mode should not open after day 1")
	}
	if !m.Status.IsError || m.Status.Text != "tasks can only be changed on day 1" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = press(t, m, "d")
	if len(m.Engine.Tasks()) != 2 {
		t.Fatal("delete should be rejected after day 1")
	}
	if len(fx.writer.patches) != 0 {
		t.Fatalf("expected no writes, got %d", len(fx.writer.patches))
	}
}

func TestDeleteTaskDropsCompletion(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "space", "d")
	if len(m.Engine.Tasks()) != 1 || m.Engine.IsCompleted("a") {
		t.Fatalf("expected task a and its completion removed: %+v", m.Engine.Record())
	}
	if _, ok := m.Engine.Record().CompletedTasks["a"]; ok {
		t.Fatal("completion entry should be dropped")
	}
	patch := fx.writer.last(t)
	if !patch.Has(model.FieldTasks) || !patch.Has(model.FieldCompletedTasks) {
		t.Fatalf("unexpected patch fields: %v", patch.Fields)
	}
	if m.SelectedTaskID != "b" {
		t.Fatalf("expected selection to move to b, got %q", m.SelectedTaskID)
	}
}

func TestCompleteDayDialog(t *testing.T) {
	rec := twoTaskRecord()
	rec.Streak = 2
	m, fx := newTestModel(t, rec, "2024-01-01 20:00", Deps{})
	m = press(t, m, "space", "c")
	if m.Dialog != DialogCompleteDay {
		t.Fatalf("expected complete-day dialog, got %q", m.Dialog)
	}
	view := m.View()
	if !strings.Contains(view, "Complete day 1?") || !strings.Contains(view, "1 of 2 tasks done (50%)") {
		t.Fatalf("dialog missing from view:\n%s", view)
	}

	m = press(t, m, "n")
	if m.Dialog != DialogNone || m.Engine.Closed() {
		t.Fatal("cancel should leave the day open")
	}
	writes := len(fx.writer.patches)

	m = press(t, m, "j", "space", "c", "y")
	if !m.Engine.Closed() || m.Engine.CurrentDay() != 2 {
		t.Fatalf("expected day closed and advanced, day=%d", m.Engine.CurrentDay())
	}
	if m.Engine.Streak() != 3 {
		t.Fatalf("expected streak 3, got %d", m.Engine.Streak())
	}
	if len(fx.writer.patches) != writes+2 {
		t.Fatalf("expected toggle and close patches, got %d new", len(fx.writer.patches)-writes)
	}
	patch := fx.writer.last(t)
	for _, f := range []model.Field{model.FieldCurrentDay, model.FieldStreak, model.FieldDailyRecords, model.FieldLastActiveDate, model.FieldCompletedTasks, model.FieldDailyNotes} {
		if !patch.Has(f) {
			t.Fatalf("close patch missing %s: %v", f, patch.Fields)
		}
	}

	m = press(t, m, "space")
	if !m.Status.IsError || m.Status.Text != "today is already completed" {
		t.Fatalf("toggle after close should be rejected, got %+v", m.Status)
	}
	m = press(t, m, "c")
	if m.Dialog != DialogNone {
		t.Fatal("complete dialog should not open on a closed day")
	}
}

func TestResetDialog(t *testing.T) {
	rec := twoTaskRecord()
	rec.CurrentDay = 5
	rec.Streak = 3
	d, _ := model.ParseDate("2024-01-09")
	rec.DailyRecords[d] = model.ArchivedDay{DayNumber: 4}
	m, fx := newTestModel(t, rec, "2024-01-10 09:00", Deps{})

	m = press(t, m, "R")
	if m.Dialog != DialogReset {
		t.Fatalf("expected reset dialog, got %q", m.Dialog)
	}
	if !strings.Contains(m.View(), "goes back to day 4") {
		t.Fatalf("reset dialog should name the target day:\n%s", m.View())
	}
	m = press(t, m, "esc")
	if m.Engine.CurrentDay() != 5 || len(fx.writer.patches) != 0 {
		t.Fatal("cancelled reset must not change anything")
	}

	m = press(t, m, "R", "y")
	got := m.Engine.Record()
	if got.CurrentDay != 4 || got.Streak != 0 || len(got.DailyRecords) != 0 {
		t.Fatalf("unexpected record after reset: %+v", got)
	}
	if got.LastActiveDate.String() != "2024-01-09" {
		t.Fatalf("expected last active yesterday, got %s", got.LastActiveDate)
	}
	if !fx.writer.last(t).Has(model.FieldDailyRecords) {
		t.Fatal("expected reset patch")
	}
}

func TestAutoSubmitNotice(t *testing.T) {
	notifier := &recordingNotifier{}
	cfg := DefaultRuntimeConfig()
	cfg.DesktopNotifications = true
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 23:59", Deps{Notifier: notifier, Config: cfg})

	updated, _ := m.Update(TimerFiredMsg{Event: scheduler.Event{Key: TimerDayTick}})
	m = updated.(Model)
	if !m.Engine.Closed() || m.Engine.CurrentDay() != 2 {
		t.Fatal("expected auto-submit to close the day")
	}
	if m.Dialog != DialogAutoSubmitted {
		t.Fatalf("expected auto-submit notice, got %q", m.Dialog)
	}
	d, _ := model.ParseDate("2024-01-01")
	archived := m.Engine.Record().DailyRecords[d]
	if archived.Notes != model.MissedDayNote || archived.DayNumber != 1 {
		t.Fatalf("unexpected archived day: %+v", archived)
	}
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0].Body, "day 1 closed at 23:58 with 0/2") {
		t.Fatalf("unexpected desktop notifications: %+v", notifier.sent)
	}
	if !fx.writer.last(t).Has(model.FieldDailyRecords) {
		t.Fatal("expected auto-submit patch")
	}

	m = press(t, m, "x")
	if m.Dialog != DialogNone {
		t.Fatal("any key should dismiss the notice")
	}
	if m.Engine.IsCompleted("a") {
		t.Fatal("dismissing key must not reach the task list")
	}
}

func TestDayTickBeforeCutoffIsQuiet(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 12:00", Deps{})
	updated, _ := m.Update(TimerFiredMsg{Event: scheduler.Event{Key: TimerDayTick}})
	m = updated.(Model)
	if m.Engine.Closed() || len(fx.writer.patches) != 0 || m.Dialog != DialogNone {
		t.Fatal("tick before the cutoff must not change anything")
	}
}

func TestDayTickReopensAfterMidnight(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 21:00", Deps{})
	m = press(t, m, "c", "y")
	if !m.Engine.Closed() {
		t.Fatal("expected closed day")
	}
	fx.clock.Set(t, "2024-01-02 00:01")
	updated, _ := m.Update(TimerFiredMsg{Event: scheduler.Event{Key: TimerDayTick}})
	m = updated.(Model)
	if m.Engine.Closed() {
		t.Fatal("expected the new day to be open")
	}
	if !strings.Contains(m.Status.Text, "day 2 is open") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = press(t, m, "space")
	if !m.Engine.IsCompleted("a") {
		t.Fatal("expected toggling to work on the reopened day")
	}
}

func TestPersistErrorShownInStatus(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	updated, cmd := m.Update(PersistErrorMsg{Err: errors.New("disk full")})
	m = updated.(Model)
	if !m.Status.IsError || m.Status.Text != "save failed: disk full" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if m.LastError == nil {
		t.Fatal("expected last error recorded")
	}
	if cmd == nil {
		t.Fatal("expected the model to keep listening for write errors")
	}
	m = press(t, m, "space")
	if !m.Engine.IsCompleted("a") {
		t.Fatal("local state must keep working after a failed write")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestSwitchViews(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "2")
	if m.CurrentView != ViewRecords {
		t.Fatalf("expected records view, got %q", m.CurrentView)
	}
	if !strings.Contains(m.View(), "records:") {
		t.Fatalf("records panel missing:\n%s", m.View())
	}
	updated, _ := m.Update(SwitchViewMsg{View: View("Unknown")})
	m = updated.(Model)
	if m.CurrentView != ViewRecords {
		t.Fatal("unknown view should be ignored")
	}
	m = press(t, m, "1")
	if m.CurrentView != ViewToday || !strings.Contains(m.View(), "Day 1 of 7") {
		t.Fatalf("expected today view:\n%s", m.View())
	}
}

func TestPaletteCommands(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})

	m = press(t, m, "/")
	m = typeText(t, m, "add stretch")
	m = press(t, m, "enter")
	if m.Palette.Active {
		t.Fatal("palette should close after a command")
	}
	if tasks := m.Engine.Tasks(); len(tasks) != 3 || tasks[2].Text != "stretch" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	m = press(t, m, "/")
	m = typeText(t, m, "done 2")
	m = press(t, m, "enter")
	if !m.Engine.IsCompleted("b") {
		t.Fatal("expected task 2 done")
	}

	m = press(t, m, "/")
	m = typeText(t, m, "days 21")
	m = press(t, m, "enter")
	if m.Engine.TrackingLength() != 21 || !fx.writer.last(t).Has(model.FieldTrackingLengthDays) {
		t.Fatalf("expected tracking period 21, got %d", m.Engine.TrackingLength())
	}

	m = press(t, m, "/")
	m = typeText(t, m, "bogus")
	m = press(t, m, "enter")
	if !m.Status.IsError {
		t.Fatalf("expected error for unknown command, got %+v", m.Status)
	}

	m = press(t, m, "/")
	m = typeText(t, m, "reset")
	m = press(t, m, "enter")
	if m.Dialog != DialogReset {
		t.Fatal("palette reset should ask for confirmation")
	}
}

func TestTrackingPicker(t *testing.T) {
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "t")
	if m.Dialog != DialogTracking || m.Tracking.Cursor != 2 {
		t.Fatalf("expected picker on the current preset, got %+v", m.Tracking)
	}
	m = press(t, m, "j", "enter")
	if m.Engine.TrackingLength() != 14 || m.Dialog != DialogNone {
		t.Fatalf("expected 14 days, got %d", m.Engine.TrackingLength())
	}
	if !fx.writer.last(t).Has(model.FieldTrackingLengthDays) {
		t.Fatal("expected tracking patch")
	}

	m = press(t, m, "t")
	for m.Tracking.Cursor < len(m.Config.TrackingPresets) {
		m = press(t, m, "j")
	}
	m = press(t, m, "enter")
	if !m.Tracking.Custom {
		t.Fatal("expected custom input")
	}
	m = typeText(t, m, "0")
	m = press(t, m, "enter")
	if m.Tracking.Err == "" || m.Dialog != DialogTracking {
		t.Fatal("zero days should be rejected")
	}
	m = press(t, m, "esc")
	m = press(t, m, "enter")
	m = typeText(t, m, "45")
	m = press(t, m, "enter")
	if m.Engine.TrackingLength() != 45 {
		t.Fatalf("expected 45 days, got %d", m.Engine.TrackingLength())
	}
}

func TestNotesDebouncedSave(t *testing.T) {
	sched := scheduler.NewEngine(8)
	sched.Start()
	t.Cleanup(sched.Stop)
	cfg := DefaultRuntimeConfig()
	cfg.NotesDebounce = 20 * time.Millisecond
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{Scheduler: sched, Config: cfg})

	m = press(t, m, "n")
	if !m.Notes.Editing {
		t.Fatal("expected notes editor")
	}
	m = typeText(t, m, "ok")
	if m.Engine.Notes() != "ok" {
		t.Fatalf("expected notes in memory, got %q", m.Engine.Notes())
	}
	for _, p := range fx.writer.patches {
		if p.Has(model.FieldDailyNotes) {
			t.Fatal("notes should wait for the quiet period")
		}
	}

	var ev scheduler.Event
	select {
	case ev = <-sched.C():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notes-save")
	}
	if ev.Key != TimerNotesSave {
		t.Fatalf("expected notes-save, got %q", ev.Key)
	}
	updated, _ := m.Update(TimerFiredMsg{Event: ev})
	m = updated.(Model)
	patch := fx.writer.last(t)
	if !patch.Has(model.FieldDailyNotes) || patch.Record.DailyNotes != "ok" {
		t.Fatalf("unexpected notes patch: %+v", patch)
	}
	if m.Notes.Pending {
		t.Fatal("pending flag should clear after save")
	}
}

func TestQuitFlushesPendingNotes(t *testing.T) {
	sched := scheduler.NewEngine(8)
	sched.Start()
	t.Cleanup(sched.Stop)
	cfg := DefaultRuntimeConfig()
	cfg.NotesDebounce = time.Hour
	m, fx := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{Scheduler: sched, Config: cfg})

	m = press(t, m, "n")
	m = typeText(t, m, "late")
	updated, cmd := m.Update(keyMsg("ctrl+c"))
	m = updated.(Model)
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if patch := fx.writer.last(t); patch.Record.DailyNotes != "late" {
		t.Fatalf("expected pending notes flushed, got %+v", patch)
	}
	if sched.Pending(TimerNotesSave) {
		t.Fatal("notes-save timer should be cancelled")
	}
}

func TestNotesRejectedWhenClosed(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 21:00", Deps{})
	m = press(t, m, "c", "y", "n")
	if m.Notes.Editing {
		t.Fatal("notes must not open on a closed day")
	}
	if m.Status.Text != "today is already completed" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, twoTaskRecord(), "2024-01-01 10:00", Deps{})
	m = press(t, m, "?")
	if !m.HelpVisible || !strings.Contains(m.View(), "add task") {
		t.Fatalf("expected help with day-1 bindings:\n%s", m.View())
	}
	m = press(t, m, "?")
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}
