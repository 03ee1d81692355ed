// Package daycycle implements the per-user day cycle: task list edits on the
// first day, completion tracking, closing days by confirmation or timeout,
// reconciling skipped calendar days and resetting.
package daycycle

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/streakd/internal/model"
)

var (
	ErrTasksLocked = errors.New("daycycle: tasks can only be changed on day 1")
	ErrDayClosed   = errors.New("daycycle: today is already completed")
	ErrUnknownTask = errors.New("daycycle: unknown task")
)

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLocation pins calendar dates and the cutoff to loc instead of the
// clock's own location.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithCutoff(c Cutoff) Option {
	return func(e *Engine) { e.cutoff = c }
}

func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// Engine owns one user record. It is not safe for concurrent use; callers
// serialize access (the TUI does so through its event loop).
type Engine struct {
	rec      model.UserRecord
	clock    Clock
	loc      *time.Location
	cutoff   Cutoff
	newID    func() string
	closed   bool
	closedOn model.Date
}

// TickResult describes what a Tick changed. Patches are in the order they
// must be written.
type TickResult struct {
	Patches       []model.Patch
	Reopened      bool
	Reconciled    bool
	AutoSubmitted bool
}

func (r TickResult) Changed() bool {
	return r.Reopened || len(r.Patches) > 0
}

func New(rec model.UserRecord, opts ...Option) *Engine {
	e := &Engine{
		rec:    rec.Clone(),
		clock:  SystemClock,
		cutoff: DefaultCutoff,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rec.Normalize()
	today := e.Today()
	if _, ok := e.rec.DailyRecords[today]; ok {
		e.closed = true
		e.closedOn = today
	}
	return e
}

func (e *Engine) now() time.Time {
	t := e.clock.Now()
	if e.loc != nil {
		t = t.In(e.loc)
	}
	return t
}

func (e *Engine) Today() model.Date {
	return model.DateOf(e.now())
}

// Record returns a deep copy of the current record.
func (e *Engine) Record() model.UserRecord {
	return e.rec.Clone()
}

func (e *Engine) Closed() bool { return e.closed }

func (e *Engine) Cutoff() Cutoff { return e.cutoff }

func (e *Engine) Tasks() []model.Task {
	return append([]model.Task(nil), e.rec.Tasks...)
}

func (e *Engine) IsCompleted(id string) bool {
	return e.rec.CompletedTasks[id]
}

func (e *Engine) Notes() string { return e.rec.DailyNotes }

func (e *Engine) Streak() int { return e.rec.Streak }

func (e *Engine) CurrentDay() int { return e.rec.CurrentDay }

func (e *Engine) TrackingLength() int { return e.rec.TrackingLengthDays }

// CanEditTasks reports whether tasks may be added or removed right now.
func (e *Engine) CanEditTasks() bool {
	return e.rec.CurrentDay == 1 && !e.closed
}

func (e *Engine) Stats() model.Stats {
	return model.ComputeStats(e.rec.Tasks, e.rec.CompletedTasks)
}

// CompletionStats is what the close-day confirmation shows.
func (e *Engine) CompletionStats() model.Stats {
	return e.Stats()
}

func (e *Engine) Progress() model.Progress {
	return model.ComputeProgress(e.rec.CurrentDay, e.rec.TrackingLengthDays)
}

func (e *Engine) guardTaskEdit() error {
	if e.closed {
		return ErrDayClosed
	}
	if e.rec.CurrentDay > 1 {
		return ErrTasksLocked
	}
	return nil
}

func (e *Engine) AddTask(text string) (model.Task, model.Patch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, model.Patch{}, &model.ValidationError{Field: "task.text", Reason: "must not be empty"}
	}
	if err := e.guardTaskEdit(); err != nil {
		return model.Task{}, model.Patch{}, err
	}
	task := model.Task{ID: e.newID(), Text: text}
	e.rec.Tasks = append(e.rec.Tasks, task)
	return task, model.NewPatch(e.rec, model.FieldTasks), nil
}

func (e *Engine) DeleteTask(id string) (model.Patch, error) {
	if err := e.guardTaskEdit(); err != nil {
		return model.Patch{}, err
	}
	idx := e.indexOf(id)
	if idx < 0 {
		return model.Patch{}, ErrUnknownTask
	}
	e.rec.Tasks = append(e.rec.Tasks[:idx:idx], e.rec.Tasks[idx+1:]...)
	delete(e.rec.CompletedTasks, id)
	return model.NewPatch(e.rec, model.FieldTasks, model.FieldCompletedTasks), nil
}

func (e *Engine) ToggleCompletion(id string) (model.Stats, model.Patch, error) {
	if e.closed {
		return model.Stats{}, model.Patch{}, ErrDayClosed
	}
	if e.indexOf(id) < 0 {
		return model.Stats{}, model.Patch{}, ErrUnknownTask
	}
	e.rec.CompletedTasks[id] = !e.rec.CompletedTasks[id]
	return e.Stats(), model.NewPatch(e.rec, model.FieldCompletedTasks), nil
}

// SetNotes updates the in-memory notes. Persisting them is left to the
// caller's debounce through NotesPatch.
func (e *Engine) SetNotes(text string) error {
	if e.closed {
		return ErrDayClosed
	}
	e.rec.DailyNotes = text
	return nil
}

func (e *Engine) NotesPatch() model.Patch {
	return model.NewPatch(e.rec, model.FieldDailyNotes)
}

func (e *Engine) SetTrackingLength(days int) (model.Patch, error) {
	if days <= 0 {
		return model.Patch{}, &model.ValidationError{Field: "trackingLengthDays", Reason: "must be a positive number of days"}
	}
	e.rec.TrackingLengthDays = days
	return model.NewPatch(e.rec, model.FieldTrackingLengthDays), nil
}

// CompleteDay closes the active day on explicit confirmation.
func (e *Engine) CompleteDay() (model.Patch, error) {
	if e.closed {
		return model.Patch{}, ErrDayClosed
	}
	return e.closeDay(e.rec.DailyNotes), nil
}

// AutoSubmit closes the active day at the cutoff. A day with nothing
// completed is archived with MissedDayNote in place of its notes.
func (e *Engine) AutoSubmit() (model.Patch, error) {
	if e.closed {
		return model.Patch{}, ErrDayClosed
	}
	notes := e.rec.DailyNotes
	if !e.rec.AnyCompleted() {
		notes = model.MissedDayNote
	}
	return e.closeDay(notes), nil
}

func (e *Engine) closeDay(notes string) model.Patch {
	now := e.now()
	today := model.DateOf(now)

	snapshot := make([]model.ArchivedTask, 0, len(e.rec.Tasks))
	for _, task := range e.rec.Tasks {
		entry := model.ArchivedTask{ID: task.ID, Text: task.Text}
		if e.rec.CompletedTasks[task.ID] {
			at := now
			entry.Completed = true
			entry.CompletedAt = &at
		}
		snapshot = append(snapshot, entry)
	}
	e.rec.DailyRecords[today] = model.ArchivedDay{
		DayNumber: e.rec.CurrentDay,
		Tasks:     snapshot,
		Notes:     notes,
	}
	e.rec.Streak = CloseStreak(e.rec.Streak, e.rec.Tasks, e.rec.CompletedTasks)
	e.rec.CurrentDay++
	e.rec.CompletedTasks = map[string]bool{}
	e.rec.DailyNotes = ""
	e.rec.LastActiveDate = today
	e.closed = true
	e.closedOn = today

	return model.NewPatch(e.rec,
		model.FieldCurrentDay,
		model.FieldStreak,
		model.FieldCompletedTasks,
		model.FieldDailyNotes,
		model.FieldLastActiveDate,
		model.FieldDailyRecords,
	)
}

// Reconcile archives every calendar day strictly between the last active
// date and today as a missed day. It reports false, and writes nothing,
// when there is no such day.
func (e *Engine) Reconcile() (model.Patch, bool) {
	today := e.Today()
	last := e.rec.LastActiveDate
	if last.IsZero() || last.DaysUntil(today) < 2 {
		return model.Patch{}, false
	}
	for d := last.AddDays(1); d.Before(today); d = d.AddDays(1) {
		e.rec.DailyRecords[d] = model.ArchivedDay{
			DayNumber: e.rec.CurrentDay,
			Tasks:     []model.ArchivedTask{},
			Notes:     model.MissedDayNote,
		}
		e.rec.CurrentDay++
	}
	e.rec.Streak = 0
	e.rec.LastActiveDate = today
	e.rec.CompletedTasks = map[string]bool{}
	e.rec.DailyNotes = ""

	return model.NewPatch(e.rec,
		model.FieldCurrentDay,
		model.FieldStreak,
		model.FieldDailyRecords,
		model.FieldLastActiveDate,
		model.FieldCompletedTasks,
		model.FieldDailyNotes,
	), true
}

// Tick runs the periodic checks: reopen after midnight, archive days skipped
// while the session was open, and close the day once the cutoff is reached.
func (e *Engine) Tick() TickResult {
	var res TickResult
	now := e.now()
	today := model.DateOf(now)

	if e.closed && e.closedOn != today {
		e.closed = false
		res.Reopened = true
	}
	if e.closed {
		return res
	}
	if patch, ok := e.Reconcile(); ok {
		res.Patches = append(res.Patches, patch)
		res.Reconciled = true
	}
	if e.cutoff.Reached(now) {
		if patch, err := e.AutoSubmit(); err == nil {
			res.Patches = append(res.Patches, patch)
			res.AutoSubmitted = true
		}
	}
	return res
}

// Reset steps back one day and discards the streak, today's progress and
// every archived day.
func (e *Engine) Reset() model.Patch {
	e.rec.CurrentDay = max(1, e.rec.CurrentDay-1)
	e.rec.Streak = 0
	e.rec.CompletedTasks = map[string]bool{}
	e.rec.DailyNotes = ""
	e.rec.LastActiveDate = e.Today().AddDays(-1)
	e.rec.DailyRecords = map[model.Date]model.ArchivedDay{}
	e.closed = false
	e.closedOn = model.Date{}

	return model.NewPatch(e.rec,
		model.FieldCurrentDay,
		model.FieldStreak,
		model.FieldCompletedTasks,
		model.FieldDailyNotes,
		model.FieldLastActiveDate,
		model.FieldDailyRecords,
	)
}

func (e *Engine) indexOf(id string) int {
	for i, task := range e.rec.Tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
