package model

const (
	DefaultTrackingLengthDays = 7
	MissedDayNote             = "Didn't do anything"
)

// Profile is the identity data copied into the document on sign-in.
type Profile struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// UserRecord is the per-user document the day-cycle engine works on.
type UserRecord struct {
	Profile
	TrackingLengthDays int
	Tasks              []Task
	CompletedTasks     map[string]bool
	Streak             int
	LastActiveDate     Date
	CurrentDay         int
	DailyNotes         string
	DailyRecords       map[Date]ArchivedDay
}

// NewUserRecord returns the record created on a user's first sign-in.
func NewUserRecord(p Profile) UserRecord {
	return UserRecord{
		Profile:            p,
		TrackingLengthDays: DefaultTrackingLengthDays,
		Tasks:              []Task{},
		CompletedTasks:     map[string]bool{},
		CurrentDay:         1,
		DailyRecords:       map[Date]ArchivedDay{},
	}
}

// Normalize repairs a record loaded from storage: missing collections are
// created, out-of-range counters are clamped and completion entries for
// tasks that no longer exist are dropped.
func (r *UserRecord) Normalize() {
	if r.Tasks == nil {
		r.Tasks = []Task{}
	}
	if r.CompletedTasks == nil {
		r.CompletedTasks = map[string]bool{}
	}
	if r.DailyRecords == nil {
		r.DailyRecords = map[Date]ArchivedDay{}
	}
	if r.TrackingLengthDays <= 0 {
		r.TrackingLengthDays = DefaultTrackingLengthDays
	}
	if r.CurrentDay < 1 {
		r.CurrentDay = 1
	}
	if r.Streak < 0 {
		r.Streak = 0
	}
	known := make(map[string]bool, len(r.Tasks))
	for _, task := range r.Tasks {
		known[task.ID] = true
	}
	for id := range r.CompletedTasks {
		if !known[id] {
			delete(r.CompletedTasks, id)
		}
	}
}

func (r UserRecord) HasTask(id string) bool {
	for _, task := range r.Tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}

// AllCompleted reports whether the task list is non-empty and fully checked off.
func (r UserRecord) AllCompleted() bool {
	if len(r.Tasks) == 0 {
		return false
	}
	for _, task := range r.Tasks {
		if !r.CompletedTasks[task.ID] {
			return false
		}
	}
	return true
}

// AnyCompleted reports whether at least one current task is checked off.
func (r UserRecord) AnyCompleted() bool {
	for _, task := range r.Tasks {
		if r.CompletedTasks[task.ID] {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r UserRecord) Clone() UserRecord {
	out := r
	if r.Tasks != nil {
		out.Tasks = append([]Task(nil), r.Tasks...)
	}
	if r.CompletedTasks != nil {
		out.CompletedTasks = make(map[string]bool, len(r.CompletedTasks))
		for id, done := range r.CompletedTasks {
			out.CompletedTasks[id] = done
		}
	}
	if r.DailyRecords != nil {
		out.DailyRecords = make(map[Date]ArchivedDay, len(r.DailyRecords))
		for date, day := range r.DailyRecords {
			out.DailyRecords[date] = day.clone()
		}
	}
	return out
}
