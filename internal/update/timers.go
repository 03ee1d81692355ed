package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/scheduler"
)

func waitForTimerCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return TimerFiredMsg{Event: ev}
	}
}

func waitForPersistErrCmd(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return PersistErrorMsg{Err: err}
	}
}

func (m *Model) armDayTick() {
	if m.Scheduler == nil {
		return
	}
	if err := m.Scheduler.After(TimerDayTick, m.Config.TickInterval); err != nil {
		m.logger.Warn("schedule day tick failed", zap.Error(err))
	}
}

func (m *Model) onTimer(ev scheduler.Event) {
	switch ev.Key {
	case TimerDayTick:
		m.onDayTick()
		m.armDayTick()
	case TimerNotesSave:
		m.flushNotes()
	}
}

// onDayTick reads the engine as it is now; nothing is captured when the
// timer is armed.
func (m *Model) onDayTick() {
	res := m.Engine.Tick()
	for _, patch := range res.Patches {
		m.persist(patch)
	}
	if res.Reopened {
		m.Status = StatusBar{Text: fmt.Sprintf("new day: day %d is open", m.Engine.CurrentDay()), IsError: false}
		m.logger.Info("day reopened", zap.Int("day", m.Engine.CurrentDay()))
	}
	if res.Reconciled {
		m.Status = StatusBar{Text: "archived days missed while away", IsError: false}
		m.logger.Info("archived missed days", zap.Int("day", m.Engine.CurrentDay()))
	}
	if res.AutoSubmitted {
		m.cancelNotesSave()
		m.Notes.Editing = false
		m.notesArea.Blur()
		m.Today.Adding = false
		m.Palette = CommandPaletteState{}

		closed := m.Engine.Record().DailyRecords[m.Engine.Today()]
		body := fmt.Sprintf("day %d closed at %s with %d/%d tasks done", closed.DayNumber, m.Engine.Cutoff(), closed.CompletedCount(), len(closed.Tasks))
		m.logger.Info("day auto-submitted", zap.Int("day", closed.DayNumber), zap.Int("completed", closed.CompletedCount()))
		m.notify("Day submitted", body, "warn")
		m.Status = StatusBar{Text: body, IsError: false}
		m.Dialog = DialogAutoSubmitted
	}
	if res.Changed() {
		m.syncSelectedTaskToCursor()
	}
}
