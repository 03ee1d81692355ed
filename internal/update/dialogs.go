package update

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) handleDialogKey(msg tea.KeyMsg) Model {
	switch m.Dialog {
	case DialogCompleteDay, DialogReset:
		switch msg.String() {
		case "y", "Y", "enter":
			if m.Dialog == DialogCompleteDay {
				m.completeDay()
			} else {
				m.resetProgress()
			}
			m.Dialog = DialogNone
		case "n", "N", "esc":
			m.Status = StatusBar{Text: fmt.Sprintf("%s cancelled", m.Dialog), IsError: false}
			m.Dialog = DialogNone
		}
	case DialogTracking:
		return m.handleTrackingKey(msg)
	case DialogAutoSubmitted:
		m.Dialog = DialogNone
	default:
		m.Dialog = DialogNone
	}
	return m
}

func (m *Model) completeDay() {
	day := m.Engine.CurrentDay()
	stats := m.Engine.CompletionStats()
	patch, err := m.Engine.CompleteDay()
	if err != nil {
		m.Status = StatusBar{Text: userMessage(err), IsError: true}
		return
	}
	m.cancelNotesSave()
	m.persist(patch)
	m.Notes.Editing = false
	m.logger.Info("day completed", zap.Int("day", day), zap.Int("completed", stats.Completed), zap.Int("total", stats.Total))
	m.Status = StatusBar{Text: fmt.Sprintf("day %d completed: %d/%d tasks, streak %d", day, stats.Completed, stats.Total, m.Engine.Streak()), IsError: false}
}

func (m *Model) resetProgress() {
	m.cancelNotesSave()
	patch := m.Engine.Reset()
	m.persist(patch)
	m.Notes.Editing = false
	m.notesArea.SetValue("")
	m.logger.Info("progress reset", zap.Int("day", m.Engine.CurrentDay()))
	m.Status = StatusBar{Text: fmt.Sprintf("progress reset: back to day %d", m.Engine.CurrentDay()), IsError: false}
}

func (m *Model) openTrackingPicker() {
	m.Dialog = DialogTracking
	m.Tracking = TrackingState{Cursor: len(m.Config.TrackingPresets)}
	for i, days := range m.Config.TrackingPresets {
		if days == m.Engine.TrackingLength() {
			m.Tracking.Cursor = i
		}
	}
}

func (m Model) handleTrackingKey(msg tea.KeyMsg) Model {
	if m.Tracking.Custom {
		switch msg.String() {
		case "esc":
			m.Tracking.Custom = false
			m.Tracking.Err = ""
			m.customInput.Blur()
		case "enter":
			n, err := strconv.Atoi(strings.TrimSpace(m.customInput.Value()))
			if err != nil {
				m.Tracking.Err = "enter a whole number of days"
				return m
			}
			return m.applyTrackingLength(n)
		default:
			if text, ok := typedText(msg); ok {
				m.customInput.SetValue(m.customInput.Value() + text)
				return m
			}
			var cmd tea.Cmd
			m.customInput, cmd = m.customInput.Update(msg)
			_ = cmd
		}
		return m
	}

	presets := m.Config.TrackingPresets
	switch msg.String() {
	case "up", "k":
		if m.Tracking.Cursor > 0 {
			m.Tracking.Cursor--
		}
	case "down", "j":
		if m.Tracking.Cursor < len(presets) {
			m.Tracking.Cursor++
		}
	case "enter":
		if m.Tracking.Cursor == len(presets) {
			m.Tracking.Custom = true
			m.Tracking.Err = ""
			m.customInput.SetValue("")
			m.customInput.Focus()
			return m
		}
		return m.applyTrackingLength(presets[m.Tracking.Cursor])
	case "esc", "q":
		m.Dialog = DialogNone
		m.Tracking = TrackingState{}
	}
	return m
}

func (m Model) applyTrackingLength(days int) Model {
	patch, err := m.Engine.SetTrackingLength(days)
	if err != nil {
		m.Tracking.Err = userMessage(err)
		return m
	}
	m.persist(patch)
	m.Dialog = DialogNone
	m.Tracking = TrackingState{}
	m.customInput.Blur()
	m.Status = StatusBar{Text: fmt.Sprintf("tracking period set to %d days", days), IsError: false}
	return m
}

func (m Model) renderDialog() string {
	switch m.Dialog {
	case DialogCompleteDay:
		stats := m.Engine.CompletionStats()
		lines := []string{fmt.Sprintf("%d of %d tasks done (%d%%)", stats.Completed, stats.Total, stats.Percentage)}
		if stats.Total > 0 && stats.Completed < stats.Total {
			lines = append(lines, "unfinished tasks will reset your streak")
		}
		return views.RenderConfirmDialog(views.ConfirmDialogData{
			Title: fmt.Sprintf("Complete day %d?", m.Engine.CurrentDay()),
			Lines: lines,
		})
	case DialogReset:
		return views.RenderConfirmDialog(views.ConfirmDialogData{
			Title: "Reset progress?",
			Lines: []string{
				fmt.Sprintf("goes back to day %d", max(1, m.Engine.CurrentDay()-1)),
				"clears your streak and every archived day",
			},
		})
	case DialogTracking:
		return views.RenderTrackingPicker(views.TrackingPickerData{
			Presets:    m.Config.TrackingPresets,
			Cursor:     m.Tracking.Cursor,
			Current:    m.Engine.TrackingLength(),
			Custom:     m.Tracking.Custom,
			CustomView: m.customInput.View(),
			ErrorText:  m.Tracking.Err,
		})
	case DialogAutoSubmitted:
		return views.RenderNotice("Day submitted automatically", m.lastNotificationBody())
	default:
		return ""
	}
}
