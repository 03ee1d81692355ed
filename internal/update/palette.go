package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/commands"
	"github.com/sandeepkv93/streakd/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if text, ok := typedText(msg); ok {
			m.commandInput.SetValue(m.commandInput.Value() + text)
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.addTask(a.Text)
			if err != nil {
				return commands.Result{}, paletteError(err)
			}
			m.CurrentView = ViewToday
			m.syncSelectedTaskToCursor()
			return commands.Result{Message: fmt.Sprintf("added task: %s", task.Text)}, nil
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			task, ok := findTask(m.Engine.Tasks(), d)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no matching task"}
			}
			if m.Engine.IsCompleted(task.ID) {
				return commands.Result{Message: fmt.Sprintf("already done: %s", task.Text)}, nil
			}
			stats, patch, err := m.Engine.ToggleCompletion(task.ID)
			if err != nil {
				return commands.Result{}, paletteError(err)
			}
			m.persist(patch)
			return commands.Result{Message: fmt.Sprintf("done: %s (%d/%d)", task.Text, stats.Completed, stats.Total)}, nil
		},
		Days: func(d commands.DaysArgs) (commands.Result, error) {
			patch, err := m.Engine.SetTrackingLength(d.Days)
			if err != nil {
				return commands.Result{}, paletteError(err)
			}
			m.persist(patch)
			return commands.Result{Message: fmt.Sprintf("tracking period set to %d days", d.Days)}, nil
		},
		Reset: func() (commands.Result, error) {
			m.Dialog = DialogReset
			return commands.Result{Message: "confirm reset with y"}, nil
		},
		Records: func() (commands.Result, error) {
			m.CurrentView = ViewRecords
			return commands.Result{Message: "showing records"}, nil
		},
		Notes: func(n commands.NotesArgs) (commands.Result, error) {
			if err := m.Engine.SetNotes(n.Text); err != nil {
				return commands.Result{}, paletteError(err)
			}
			m.cancelNotesSave()
			m.persist(m.Engine.NotesPatch())
			return commands.Result{Message: "notes saved"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m
}

// findTask resolves a 1-based position or a case-insensitive task text.
func findTask(tasks []model.Task, d commands.DoneArgs) (model.Task, bool) {
	if d.Index > 0 {
		if d.Index > len(tasks) {
			return model.Task{}, false
		}
		return tasks[d.Index-1], true
	}
	for _, task := range tasks {
		if strings.EqualFold(task.Text, strings.TrimSpace(d.Text)) {
			return task, true
		}
	}
	return model.Task{}, false
}

func paletteError(err error) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: userMessage(err)}
}
