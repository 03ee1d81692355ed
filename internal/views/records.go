package views

import "github.com/sandeepkv93/streakd/internal/model"

// RecordsData lays archived days out as a matrix: one row per day, one
// column per distinct task text.
func RecordsData(records map[model.Date]model.ArchivedDay) RecordsPanelData {
	days := model.Summarize(records)
	texts := model.TaskTexts(days)
	out := RecordsPanelData{
		TaskTexts: texts,
		Days:      make([]RecordDayData, 0, len(days)),
	}
	for _, day := range days {
		row := RecordDayData{
			DayNumber: day.DayNumber,
			Date:      day.Date.String(),
			Completed: day.Completed,
			Total:     day.Total,
			Notes:     day.Notes,
			Cells:     make([]Cell, len(texts)),
		}
		for i, text := range texts {
			done, ok := day.Outcome(text)
			switch {
			case !ok:
				row.Cells[i] = CellAbsent
			case done:
				row.Cells[i] = CellDone
			default:
				row.Cells[i] = CellMissed
			}
		}
		out.Days = append(out.Days, row)
	}
	return out
}
