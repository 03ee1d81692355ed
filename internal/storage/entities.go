package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/sandeepkv93/streakd/internal/model"
)

// legacyTaskNamespace seeds the ids given to tasks that were stored as bare strings.
var legacyTaskNamespace = uuid.MustParse("6f1c2a4e-5d0b-4f8e-9a57-3c2d1e0f4b6a")

// Document is the stored shape of a UserRecord. JSON stores and MongoDB
// share it; MongoDB keys the document by uid through _id.
type Document struct {
	UID                string            `json:"uid" bson:"_id"`
	Email              string            `json:"email" bson:"email"`
	DisplayName        string            `json:"displayName" bson:"displayName"`
	PhotoURL           string            `json:"photoURL" bson:"photoURL"`
	TrackingLengthDays int               `json:"trackingLengthDays" bson:"trackingLengthDays"`
	Tasks              []docTask         `json:"tasks" bson:"tasks"`
	CompletedTasks     map[string]bool   `json:"completedTasks" bson:"completedTasks"`
	Streak             int               `json:"streak" bson:"streak"`
	LastActiveDate     *string           `json:"lastActiveDate" bson:"lastActiveDate"`
	CurrentDay         int               `json:"currentDay" bson:"currentDay"`
	DailyNotes         string            `json:"dailyNotes" bson:"dailyNotes"`
	DailyRecords       map[string]docDay `json:"dailyRecords" bson:"dailyRecords"`

	// LegacyDays is the tracking length under its old key.
	LegacyDays int `json:"days,omitempty" bson:"days,omitempty"`
}

type docTask struct {
	ID   flexID `json:"id" bson:"id"`
	Text string `json:"text" bson:"text"`
}

type docArchivedTask struct {
	ID          flexID     `json:"id" bson:"id"`
	Text        string     `json:"text" bson:"text"`
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completedAt" bson:"completedAt"`
}

type docDay struct {
	DayNumber int               `json:"dayNumber" bson:"dayNumber"`
	Tasks     []docArchivedTask `json:"tasks" bson:"tasks"`
	Notes     string            `json:"notes" bson:"notes"`
}

// flexID accepts ids written as strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("storage: task id: %w", err)
		}
		*id = flexID(n.String())
	}
	return nil
}

func (id *flexID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*id = flexID(v.StringValue())
	case bsontype.Int32:
		*id = flexID(strconv.FormatInt(int64(v.Int32()), 10))
	case bsontype.Int64:
		*id = flexID(strconv.FormatInt(v.Int64(), 10))
	case bsontype.Double:
		*id = flexID(strconv.FormatFloat(v.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*id = ""
	default:
		return fmt.Errorf("storage: unsupported task id type %s", t)
	}
	return nil
}

// A task may be stored as a bare string holding only its text.
func (t *docTask) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*t = docTask{}
		return json.Unmarshal(data, &t.Text)
	}
	type plain docTask
	return json.Unmarshal(data, (*plain)(t))
}

func (t *docTask) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	if typ == bsontype.String {
		*t = docTask{Text: bson.RawValue{Type: typ, Value: data}.StringValue()}
		return nil
	}
	if typ != bsontype.EmbeddedDocument {
		return fmt.Errorf("storage: unsupported task type %s", typ)
	}
	type plain docTask
	return bson.Unmarshal(data, (*plain)(t))
}

// Archived days written by older clients are a bare array of tasks.
func (d *docDay) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		*d = docDay{}
		return json.Unmarshal(data, &d.Tasks)
	}
	type plain docDay
	return json.Unmarshal(data, (*plain)(d))
}

func (d *docDay) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	switch typ {
	case bsontype.Array:
		*d = docDay{}
		values, err := bson.Raw(data).Values()
		if err != nil {
			return err
		}
		for _, v := range values {
			var task docArchivedTask
			if err := v.Unmarshal(&task); err != nil {
				return err
			}
			d.Tasks = append(d.Tasks, task)
		}
		return nil
	case bsontype.EmbeddedDocument:
		type plain docDay
		return bson.Unmarshal(data, (*plain)(d))
	default:
		return fmt.Errorf("storage: unsupported daily record type %s", typ)
	}
}

// documentFrom converts a record into its stored shape. Collections are never nil.
func documentFrom(rec model.UserRecord) Document {
	doc := Document{
		UID:                rec.UID,
		Email:              rec.Email,
		DisplayName:        rec.DisplayName,
		PhotoURL:           rec.PhotoURL,
		TrackingLengthDays: rec.TrackingLengthDays,
		Tasks:              make([]docTask, 0, len(rec.Tasks)),
		CompletedTasks:     make(map[string]bool, len(rec.CompletedTasks)),
		Streak:             rec.Streak,
		CurrentDay:         rec.CurrentDay,
		DailyNotes:         rec.DailyNotes,
		DailyRecords:       make(map[string]docDay, len(rec.DailyRecords)),
	}
	for _, task := range rec.Tasks {
		doc.Tasks = append(doc.Tasks, docTask{ID: flexID(task.ID), Text: task.Text})
	}
	for id, done := range rec.CompletedTasks {
		doc.CompletedTasks[id] = done
	}
	if !rec.LastActiveDate.IsZero() {
		s := rec.LastActiveDate.String()
		doc.LastActiveDate = &s
	}
	for date, day := range rec.DailyRecords {
		out := docDay{DayNumber: day.DayNumber, Notes: day.Notes, Tasks: make([]docArchivedTask, 0, len(day.Tasks))}
		for _, task := range day.Tasks {
			out.Tasks = append(out.Tasks, docArchivedTask{
				ID:          flexID(task.ID),
				Text:        task.Text,
				Completed:   task.Completed,
				CompletedAt: task.CompletedAt,
			})
		}
		doc.DailyRecords[date.String()] = out
	}
	return doc
}

// Record converts the stored shape back into a normalized record.
func (d Document) Record() model.UserRecord {
	rec := model.UserRecord{
		Profile: model.Profile{
			UID:         d.UID,
			Email:       d.Email,
			DisplayName: d.DisplayName,
			PhotoURL:    d.PhotoURL,
		},
		TrackingLengthDays: d.TrackingLengthDays,
		Tasks:              make([]model.Task, 0, len(d.Tasks)),
		CompletedTasks:     make(map[string]bool, len(d.CompletedTasks)),
		Streak:             d.Streak,
		CurrentDay:         d.CurrentDay,
		DailyNotes:         d.DailyNotes,
		DailyRecords:       make(map[model.Date]model.ArchivedDay, len(d.DailyRecords)),
	}
	if rec.TrackingLengthDays <= 0 && d.LegacyDays > 0 {
		rec.TrackingLengthDays = d.LegacyDays
	}
	seen := make(map[string]bool, len(d.Tasks))
	for i, task := range d.Tasks {
		text := strings.TrimSpace(task.Text)
		if text == "" {
			continue
		}
		id := string(task.ID)
		if id == "" {
			id = legacyTaskID(i, text)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		rec.Tasks = append(rec.Tasks, model.Task{ID: id, Text: text})
	}
	for id, done := range d.CompletedTasks {
		rec.CompletedTasks[id] = done
	}
	if d.LastActiveDate != nil {
		if date, err := model.ParseDate(*d.LastActiveDate); err == nil {
			rec.LastActiveDate = date
		}
	}
	for key, day := range d.DailyRecords {
		date, err := model.ParseDate(key)
		if err != nil {
			continue
		}
		out := model.ArchivedDay{DayNumber: day.DayNumber, Notes: day.Notes, Tasks: make([]model.ArchivedTask, 0, len(day.Tasks))}
		for _, task := range day.Tasks {
			out.Tasks = append(out.Tasks, model.ArchivedTask{
				ID:          string(task.ID),
				Text:        task.Text,
				Completed:   task.Completed,
				CompletedAt: task.CompletedAt,
			})
		}
		rec.DailyRecords[date] = out
	}
	rec.Normalize()
	return rec
}

func legacyTaskID(index int, text string) string {
	return uuid.NewSHA1(legacyTaskNamespace, []byte(strconv.Itoa(index)+":"+text)).String()
}

// jsonFields renders the patched fields of p as raw JSON values keyed by
// document key.
func jsonFields(p model.Patch) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(documentFrom(p.Record))
	if err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(p.Fields))
	for _, f := range p.Fields {
		if !f.IsValid() {
			return nil, fmt.Errorf("storage: unknown field %q", f)
		}
		out[string(f)] = all[string(f)]
	}
	return out, nil
}

// bsonFields is jsonFields for MongoDB.
func bsonFields(p model.Patch) (bson.D, error) {
	raw, err := bson.Marshal(documentFrom(p.Record))
	if err != nil {
		return nil, err
	}
	out := make(bson.D, 0, len(p.Fields))
	for _, f := range p.Fields {
		if !f.IsValid() {
			return nil, fmt.Errorf("storage: unknown field %q", f)
		}
		v, err := bson.Raw(raw).LookupErr(string(f))
		if err != nil {
			return nil, fmt.Errorf("storage: field %q: %w", f, err)
		}
		out = append(out, bson.E{Key: string(f), Value: v})
	}
	return out, nil
}
