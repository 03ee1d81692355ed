package daycycle

import "github.com/sandeepkv93/streakd/internal/model"

// CloseStreak returns the streak after a day closes: prior+1 when the day had
// tasks and every one of them was completed, zero otherwise.
func CloseStreak(prior int, tasks []model.Task, completed map[string]bool) int {
	if len(tasks) == 0 {
		return 0
	}
	for _, task := range tasks {
		if !completed[task.ID] {
			return 0
		}
	}
	return prior + 1
}

// OnFirstActivity starts a streak for a record that has never been active.
// It reports whether rec changed.
func OnFirstActivity(rec *model.UserRecord, today model.Date) bool {
	if !rec.LastActiveDate.IsZero() {
		return false
	}
	rec.Streak = 1
	rec.LastActiveDate = today
	return true
}

// OnReturningActivity advances the streak for activity on today. Repeated
// calls on the same day are no-ops. A gap of two or more days counts as a
// missed day and resets the streak to zero.
func OnReturningActivity(rec *model.UserRecord, today model.Date) bool {
	if rec.LastActiveDate.IsZero() {
		return OnFirstActivity(rec, today)
	}
	switch gap := rec.LastActiveDate.DaysUntil(today); {
	case gap <= 0:
		return false
	case gap == 1:
		rec.Streak++
	default:
		rec.Streak = 0
	}
	rec.LastActiveDate = today
	return true
}
