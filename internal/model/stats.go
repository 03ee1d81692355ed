package model

import "math"

// Stats is the completion summary shown for the active day.
type Stats struct {
	Completed  int
	Total      int
	Percentage int
}

func ComputeStats(tasks []Task, completed map[string]bool) Stats {
	out := Stats{Total: len(tasks)}
	for _, task := range tasks {
		if completed[task.ID] {
			out.Completed++
		}
	}
	if out.Total > 0 {
		out.Percentage = int(math.Round(100 * float64(out.Completed) / float64(out.Total)))
	}
	return out
}

// Progress locates the current day inside the tracking period.
type Progress struct {
	CurrentDay int
	Length     int
	Remaining  int
	Final      bool
}

func ComputeProgress(currentDay, length int) Progress {
	p := Progress{CurrentDay: currentDay, Length: length, Remaining: length - currentDay}
	if p.Remaining < 0 {
		p.Remaining = 0
	}
	p.Final = currentDay >= length
	return p
}

func (p Progress) Fraction() float64 {
	if p.Length <= 0 {
		return 0
	}
	f := float64(p.CurrentDay) / float64(p.Length)
	if f > 1 {
		return 1
	}
	return f
}
