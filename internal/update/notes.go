package update

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/daycycle"
)

func (m Model) startNotesEdit() (Model, tea.Cmd) {
	if m.Engine.Closed() {
		m.Status = StatusBar{Text: userMessage(daycycle.ErrDayClosed), IsError: true}
		return m, nil
	}
	m.Notes.Editing = true
	m.notesArea.SetValue(m.Engine.Notes())
	cmd := m.notesArea.Focus()
	m.Status = StatusBar{Text: "editing notes", IsError: false}
	return m, cmd
}

func (m Model) handleNotesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.Notes.Editing = false
		m.notesArea.Blur()
		m.flushNotes()
		m.Status = StatusBar{Text: "notes saved", IsError: false}
		return m, nil
	}
	var cmd tea.Cmd
	m.notesArea, cmd = m.notesArea.Update(msg)
	m.setNotes(m.notesArea.Value())
	return m, cmd
}

// setNotes updates the engine and restarts the quiet period after which
// the notes are written.
func (m *Model) setNotes(text string) {
	if text == m.Engine.Notes() {
		return
	}
	if err := m.Engine.SetNotes(text); err != nil {
		m.Status = StatusBar{Text: userMessage(err), IsError: true}
		return
	}
	m.Notes.Pending = true
	if m.Scheduler == nil {
		m.flushNotes()
		return
	}
	if err := m.Scheduler.After(TimerNotesSave, m.Config.NotesDebounce); err != nil {
		m.logger.Warn("schedule notes save failed", zap.Error(err))
		m.flushNotes()
	}
}

// flushNotes writes pending notes now instead of waiting for the timer.
func (m *Model) flushNotes() {
	if !m.Notes.Pending {
		return
	}
	m.cancelNotesSave()
	if m.Engine.Closed() {
		return
	}
	m.persist(m.Engine.NotesPatch())
}

func (m *Model) cancelNotesSave() {
	m.Notes.Pending = false
	if m.Scheduler != nil {
		m.Scheduler.Cancel(TimerNotesSave)
	}
}
