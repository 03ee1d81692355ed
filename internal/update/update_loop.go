package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.Scheduler != nil {
		cmds = append(cmds, waitForTimerCmd(m.Scheduler.C()))
	}
	if m.Writer != nil {
		cmds = append(cmds, waitForPersistErrCmd(m.Writer.Errors()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		keyStr := typed.String()
		if keyStr == "ctrl+c" {
			return m.quit()
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if m.Dialog != DialogNone {
			return m.handleDialogKey(typed), nil
		}
		if m.Notes.Editing {
			return m.handleNotesKey(typed)
		}
		if m.Today.Adding {
			return m.handleAddKey(typed), nil
		}

		switch keyStr {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Records:
			m.CurrentView = ViewRecords
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "t":
			m.openTrackingPicker()
			return m, nil
		case "R":
			m.Dialog = DialogReset
			return m, nil
		case m.Keys.Quit:
			return m.quit()
		}
		if m.CurrentView == ViewToday {
			return m.handleTodayKey(typed)
		}
		if m.CurrentView == ViewRecords {
			return m.handleRecordsKey(typed), nil
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case TimerFiredMsg:
		m.onTimer(typed.Event)
		if m.Scheduler != nil {
			return m, waitForTimerCmd(m.Scheduler.C())
		}
		return m, nil
	case PersistErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: "save failed: " + typed.Err.Error(), IsError: true}
			m.notify("Save failed", typed.Err.Error(), "error")
		}
		if m.Writer != nil {
			return m, waitForPersistErrCmd(m.Writer.Errors())
		}
		return m, nil
	}

	return m, nil
}

// quit flushes a notes edit still waiting for its debounce.
func (m Model) quit() (Model, tea.Cmd) {
	m.flushNotes()
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewToday:
		leftPane = m.renderTodayView()
		rightPane = m.renderNotesView()
	case ViewRecords:
		leftPane = m.renderRecordsView()
	}
	rightPane = joinNonEmpty(rightPane, m.renderCommandPalette(), m.renderHelpIfVisible())

	p := m.Engine.Progress()
	header := fmt.Sprintf("streakd | view: %s | %s", m.CurrentView, views.DayLabel(p.CurrentDay, p.Length, p.Final, p.Remaining))
	if m.User != "" {
		header = fmt.Sprintf("streakd | %s | view: %s | %s", m.User, m.CurrentView, views.DayLabel(p.CurrentDay, p.Length, p.Final, p.Remaining))
	}

	return views.RenderApp(views.AppData{
		Header:       header,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		Dialog:       m.renderDialog(),
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer:       fmt.Sprintf("keys: %s today | %s records | t days | R reset | / cmd | %s help | %s quit", m.Keys.Today, m.Keys.Records, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewRecords:
		return true
	default:
		return false
	}
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return strings.Join(out, "\n\n")
}
