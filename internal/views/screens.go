package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID        string
	Text      string
	Completed bool
}

type TodayPanelData struct {
	ListView       string
	Tasks          []TaskRowData
	SelectedID     string
	Completed      int
	Total          int
	Percentage     int
	CurrentDay     int
	TrackingLength int
	Remaining      int
	Final          bool
	Streak         int
	Closed         bool
	CanEdit        bool
	ProgressView   string
	AddInputView   string
}

// Cell is the state of one task on one archived day.
type Cell int

const (
	CellAbsent Cell = iota
	CellDone
	CellMissed
)

func (c Cell) Symbol() string {
	switch c {
	case CellDone:
		return "✓"
	case CellMissed:
		return "✗"
	default:
		return "·"
	}
}

type RecordDayData struct {
	DayNumber int
	Date      string
	Completed int
	Total     int
	Notes     string
	Cells     []Cell
}

type RecordsPanelData struct {
	TableView string
	TaskTexts []string
	Days      []RecordDayData
}

type NotesPanelData struct {
	Editing    bool
	Closed     bool
	EditorView string
	Preview    string
}

type ConfirmDialogData struct {
	Title string
	Lines []string
}

type TrackingPickerData struct {
	Presets    []int
	Cursor     int
	Current    int
	Custom     bool
	CustomView string
	ErrorText  string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func DayLabel(currentDay, length int, final bool, remaining int) string {
	label := fmt.Sprintf("Day %d of %d", currentDay, length)
	if final {
		return label + " | Final day"
	}
	if remaining == 1 {
		return label + " | 1 day remaining"
	}
	return fmt.Sprintf("%s | %d days remaining", label, remaining)
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString("today: " + DayLabel(data.CurrentDay, data.TrackingLength, data.Final, data.Remaining) + "\n")
	if data.ProgressView != "" {
		b.WriteString("period: " + data.ProgressView + "\n")
	}
	b.WriteString(fmt.Sprintf("streak: %d\n", data.Streak))
	b.WriteString(fmt.Sprintf("completed: %d/%d (%d%%)\n", data.Completed, data.Total, data.Percentage))
	if data.Closed {
		b.WriteString("day completed, next day opens after midnight\n")
	} else if data.CanEdit {
		b.WriteString("actions: [j/k]move [space]toggle [a]add [d]delete [c]complete [n]notes\n")
	} else {
		b.WriteString("actions: [j/k]move [space]toggle [c]complete [n]notes\n")
	}
	if data.AddInputView != "" {
		b.WriteString(data.AddInputView + "\n")
	}
	b.WriteString("\n")
	if data.ListView != "" {
		b.WriteString(data.ListView)
		return strings.TrimSpace(b.String())
	}
	if len(data.Tasks) == 0 {
		if data.CanEdit {
			b.WriteString("(no tasks yet, press [a] to add one)")
		} else {
			b.WriteString("(no tasks)")
		}
		return strings.TrimSpace(b.String())
	}
	for _, task := range data.Tasks {
		cursor := " "
		if task.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, Checkbox(task.Completed), task.Text))
	}
	return strings.TrimSpace(b.String())
}

func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func RenderRecordsPanel(data RecordsPanelData) string {
	var b strings.Builder
	b.WriteString("records:\n")
	if len(data.Days) == 0 {
		b.WriteString("(no completed days yet)")
		return b.String()
	}
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}
	b.WriteString("\nmatrix:\n")
	for i, text := range data.TaskTexts {
		b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, text))
	}
	b.WriteString("\n")
	for _, day := range data.Days {
		b.WriteString(fmt.Sprintf("day %-3d ", day.DayNumber))
		for _, cell := range day.Cells {
			b.WriteString(renderCell(cell) + " ")
		}
		b.WriteString(fmt.Sprintf(" %d/%d\n", day.Completed, day.Total))
	}
	return strings.TrimSpace(b.String())
}

func renderCell(c Cell) string {
	switch c {
	case CellDone:
		return doneStyle.Render(c.Symbol())
	case CellMissed:
		return missStyle.Render(c.Symbol())
	default:
		return c.Symbol()
	}
}

// RecordsMarkdown renders the records matrix as a markdown table, one row per day.
func RecordsMarkdown(data RecordsPanelData) string {
	if len(data.Days) == 0 {
		return "_No completed days yet._\n"
	}
	var b strings.Builder
	b.WriteString("| Day | Date |")
	for _, text := range data.TaskTexts {
		b.WriteString(" " + escapeCell(text) + " |")
	}
	b.WriteString(" Done | Notes |\n|---|---|")
	for range data.TaskTexts {
		b.WriteString("---|")
	}
	b.WriteString("---|---|\n")
	for _, day := range data.Days {
		b.WriteString(fmt.Sprintf("| %d | %s |", day.DayNumber, day.Date))
		for _, cell := range day.Cells {
			b.WriteString(" " + cell.Symbol() + " |")
		}
		b.WriteString(fmt.Sprintf(" %d/%d | %s |\n", day.Completed, day.Total, escapeCell(day.Notes)))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func RenderNotesPanel(data NotesPanelData) string {
	var b strings.Builder
	b.WriteString("notes:\n")
	if data.Editing {
		b.WriteString("keys: [esc] done editing\n")
		b.WriteString(data.EditorView)
		return b.String()
	}
	if !data.Closed {
		b.WriteString("keys: [n] edit\n")
	}
	if strings.TrimSpace(data.Preview) == "" {
		b.WriteString("(empty)")
		return b.String()
	}
	b.WriteString(data.Preview)
	return strings.TrimSpace(b.String())
}

func RenderConfirmDialog(data ConfirmDialogData) string {
	var b strings.Builder
	b.WriteString(data.Title + "\n")
	for _, line := range data.Lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("[y] confirm  [n] cancel")
	return b.String()
}

func RenderNotice(title, body string) string {
	return fmt.Sprintf("%s\n%s\npress any key to continue", title, body)
}

func RenderTrackingPicker(data TrackingPickerData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tracking period (current: %d days)\n", data.Current))
	for i, days := range data.Presets {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %d days\n", cursor, days))
	}
	cursor := " "
	if data.Cursor == len(data.Presets) {
		cursor = ">"
	}
	b.WriteString(cursor + " custom\n")
	if data.Custom {
		b.WriteString(data.CustomView + "\n")
	}
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	b.WriteString("keys: [j/k] move [enter] select [esc] cancel")
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
