package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/model"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	tasks := m.Engine.Tasks()
	switch msg.String() {
	case "up", "k":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
		m.syncSelectedTaskToCursor()
	case "down", "j":
		if m.Today.Cursor < len(tasks)-1 {
			m.Today.Cursor++
		}
		m.syncSelectedTaskToCursor()
	case " ", "enter", "x":
		m.toggleSelected()
	case "a":
		if err := m.taskEditError(); err != nil {
			m.Status = StatusBar{Text: userMessage(err), IsError: true}
			return m, nil
		}
		m.Today.Adding = true
		m.addInput.SetValue("")
		m.addInput.Focus()
		m.Status = StatusBar{Text: "adding task", IsError: false}
	case "d":
		m.deleteSelected()
	case "c":
		if m.Engine.Closed() {
			m.Status = StatusBar{Text: userMessage(daycycle.ErrDayClosed), IsError: true}
			return m, nil
		}
		m.Dialog = DialogCompleteDay
	case "n":
		return m.startNotesEdit()
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Today.Adding = false
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.Status = StatusBar{Text: "add cancelled", IsError: false}
	case "enter":
		task, err := m.addTask(m.addInput.Value())
		if err != nil {
			m.Status = StatusBar{Text: userMessage(err), IsError: true}
			return m
		}
		m.addInput.SetValue("")
		m.Today.Cursor = len(m.Engine.Tasks()) - 1
		m.syncSelectedTaskToCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("added task: %s", task.Text), IsError: false}
	default:
		if text, ok := typedText(msg); ok {
			m.addInput.SetValue(m.addInput.Value() + text)
			return m
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		_ = cmd
	}
	return m
}

func (m *Model) addTask(text string) (model.Task, error) {
	task, patch, err := m.Engine.AddTask(text)
	if err != nil {
		return model.Task{}, err
	}
	m.persist(patch)
	return task, nil
}

func (m *Model) toggleSelected() {
	id := m.SelectedTaskID
	if id == "" {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	stats, patch, err := m.Engine.ToggleCompletion(id)
	if err != nil {
		m.Status = StatusBar{Text: userMessage(err), IsError: true}
		return
	}
	m.persist(patch)
	m.Status = StatusBar{Text: fmt.Sprintf("%d/%d done (%d%%)", stats.Completed, stats.Total, stats.Percentage), IsError: false}
}

func (m *Model) deleteSelected() {
	id := m.SelectedTaskID
	if id == "" {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	patch, err := m.Engine.DeleteTask(id)
	if err != nil {
		m.Status = StatusBar{Text: userMessage(err), IsError: true}
		return
	}
	m.persist(patch)
	if n := len(m.Engine.Tasks()); m.Today.Cursor >= n {
		m.Today.Cursor = max(0, n-1)
	}
	m.syncSelectedTaskToCursor()
	m.Status = StatusBar{Text: "task deleted", IsError: false}
}

func (m *Model) syncSelectedTaskToCursor() {
	tasks := m.Engine.Tasks()
	if len(tasks) == 0 {
		m.Today.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	if m.Today.Cursor < 0 || m.Today.Cursor >= len(tasks) {
		m.Today.Cursor = 0
	}
	m.SelectedTaskID = tasks[m.Today.Cursor].ID
}

func (m Model) handleRecordsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k", "down", "j":
		var cmd tea.Cmd
		m.recordsTable, cmd = m.recordsTable.Update(msg)
		_ = cmd
	}
	return m
}

// persist hands p to the writer. The in-memory state is already updated
// and stays that way whether or not the write later succeeds.
func (m *Model) persist(p model.Patch) {
	if m.Writer == nil || p.IsEmpty() {
		return
	}
	if !m.Writer.Submit(p) {
		m.logger.Warn("patch not queued", zap.Strings("fields", fieldNames(p)))
		m.Status = StatusBar{Text: "change not saved: writer closed", IsError: true}
	}
}

func (m Model) taskEditError() error {
	if m.Engine.Closed() {
		return daycycle.ErrDayClosed
	}
	if !m.Engine.CanEditTasks() {
		return daycycle.ErrTasksLocked
	}
	return nil
}

func fieldNames(p model.Patch) []string {
	out := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		out = append(out, string(f))
	}
	return out
}
