package model

// Field names a top-level document field. The values double as the
// document keys used by every store.
type Field string

const (
	FieldEmail              Field = "email"
	FieldDisplayName        Field = "displayName"
	FieldPhotoURL           Field = "photoURL"
	FieldTrackingLengthDays Field = "trackingLengthDays"
	FieldTasks              Field = "tasks"
	FieldCompletedTasks     Field = "completedTasks"
	FieldStreak             Field = "streak"
	FieldLastActiveDate     Field = "lastActiveDate"
	FieldCurrentDay         Field = "currentDay"
	FieldDailyNotes         Field = "dailyNotes"
	FieldDailyRecords       Field = "dailyRecords"
)

var patchableFields = map[Field]bool{
	FieldEmail:              true,
	FieldDisplayName:        true,
	FieldPhotoURL:           true,
	FieldTrackingLengthDays: true,
	FieldTasks:              true,
	FieldCompletedTasks:     true,
	FieldStreak:             true,
	FieldLastActiveDate:     true,
	FieldCurrentDay:         true,
	FieldDailyNotes:         true,
	FieldDailyRecords:       true,
}

func (f Field) IsValid() bool {
	return patchableFields[f]
}

// Patch replaces whole top-level fields of a stored document. Nested maps
// are never merged: the named fields are written exactly as they appear in
// Record.
type Patch struct {
	Fields []Field
	Record UserRecord
}

// NewPatch snapshots rec so the patch is unaffected by later mutations.
func NewPatch(rec UserRecord, fields ...Field) Patch {
	return Patch{Fields: append([]Field(nil), fields...), Record: rec.Clone()}
}

func (p Patch) IsEmpty() bool {
	return len(p.Fields) == 0
}

func (p Patch) Has(f Field) bool {
	for _, field := range p.Fields {
		if field == f {
			return true
		}
	}
	return false
}

// Apply copies the patched fields from p.Record into dst.
func (p Patch) Apply(dst *UserRecord) {
	src := p.Record.Clone()
	for _, f := range p.Fields {
		switch f {
		case FieldEmail:
			dst.Email = src.Email
		case FieldDisplayName:
			dst.DisplayName = src.DisplayName
		case FieldPhotoURL:
			dst.PhotoURL = src.PhotoURL
		case FieldTrackingLengthDays:
			dst.TrackingLengthDays = src.TrackingLengthDays
		case FieldTasks:
			dst.Tasks = src.Tasks
		case FieldCompletedTasks:
			dst.CompletedTasks = src.CompletedTasks
		case FieldStreak:
			dst.Streak = src.Streak
		case FieldLastActiveDate:
			dst.LastActiveDate = src.LastActiveDate
		case FieldCurrentDay:
			dst.CurrentDay = src.CurrentDay
		case FieldDailyNotes:
			dst.DailyNotes = src.DailyNotes
		case FieldDailyRecords:
			dst.DailyRecords = src.DailyRecords
		}
	}
}
