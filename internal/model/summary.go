package model

import "sort"

// DaySummary is one row of the records view.
type DaySummary struct {
	Date      Date
	DayNumber int
	Completed int
	Total     int
	Notes     string
	Tasks     []ArchivedTask
}

// Summarize orders archived days by day number. Legacy entries without a
// day number are left out, matching how the records view has always shown them.
func Summarize(records map[Date]ArchivedDay) []DaySummary {
	out := make([]DaySummary, 0, len(records))
	for date, day := range records {
		if day.DayNumber <= 0 {
			continue
		}
		out = append(out, DaySummary{
			Date:      date,
			DayNumber: day.DayNumber,
			Completed: day.CompletedCount(),
			Total:     len(day.Tasks),
			Notes:     day.Notes,
			Tasks:     day.Tasks,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// TaskTexts returns the distinct task texts across all summaries in first-seen order.
func TaskTexts(days []DaySummary) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, day := range days {
		for _, task := range day.Tasks {
			if seen[task.Text] {
				continue
			}
			seen[task.Text] = true
			out = append(out, task.Text)
		}
	}
	return out
}

// Outcome reports what happened to the task with the given text on that day.
// ok is false when the task was not part of the day.
func (d DaySummary) Outcome(text string) (completed bool, ok bool) {
	for _, task := range d.Tasks {
		if task.Text == text {
			return task.Completed, true
		}
	}
	return false, false
}
