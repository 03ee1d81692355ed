package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/streakd/internal/views"
)

func (m *Model) initBubbleComponents() {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	m.todayList = list.New([]list.Item{}, delegate, 54, 12)
	m.todayList.Title = "Tasks"
	m.todayList.SetShowHelp(false)
	m.todayList.SetShowStatusBar(false)
	m.todayList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Date", Width: 12},
		{Title: "Done", Width: 7},
		{Title: "%", Width: 5},
	}
	m.recordsTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.CharLimit = 256
	m.addInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.customInput = textinput.New()
	m.customInput.Prompt = "days> "
	m.customInput.CharLimit = 4
	m.customInput.Width = 8

	m.notesArea = textarea.New()
	m.notesArea.SetWidth(46)
	m.notesArea.SetHeight(8)
	m.notesArea.ShowLineNumbers = false
	m.notesArea.Placeholder = "Notes for today (markdown)"

	m.dayProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))

	m.helpModel = help.New()
	m.helpModel.ShowAll = true
	m.notesViewport = viewport.New(46, 10)
}

func (m *Model) syncBubbleData() {
	tasks := m.Engine.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, listItem{title: views.Checkbox(m.Engine.IsCompleted(task.ID)) + " " + task.Text})
	}
	m.todayList.SetItems(items)
	if len(items) > 0 && m.Today.Cursor < len(items) {
		m.todayList.Select(m.Today.Cursor)
	}

	records := views.RecordsData(m.Engine.Record().DailyRecords)
	rows := make([]table.Row, 0, len(records.Days))
	for _, day := range records.Days {
		pct := 0
		if day.Total > 0 {
			pct = 100 * day.Completed / day.Total
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", day.DayNumber),
			day.Date,
			fmt.Sprintf("%d/%d", day.Completed, day.Total),
			fmt.Sprintf("%d", pct),
		})
	}
	m.recordsTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	if !m.Notes.Editing {
		m.notesArea.SetValue(m.Engine.Notes())
	}
	if notes := m.Engine.Notes(); notes != m.renderedNotes || !m.notesRendered {
		m.notesViewport.SetContent(views.RenderMarkdown(notes))
		m.renderedNotes = notes
		m.notesRendered = true
	}

	_ = m.dayProgress.SetPercent(m.Engine.Progress().Fraction())
}

func (m Model) renderTodayView() string {
	tasks := m.Engine.Tasks()
	rows := make([]views.TaskRowData, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, views.TaskRowData{ID: task.ID, Text: task.Text, Completed: m.Engine.IsCompleted(task.ID)})
	}
	stats := m.Engine.Stats()
	p := m.Engine.Progress()
	data := views.TodayPanelData{
		Tasks:          rows,
		SelectedID:     m.SelectedTaskID,
		Completed:      stats.Completed,
		Total:          stats.Total,
		Percentage:     stats.Percentage,
		CurrentDay:     p.CurrentDay,
		TrackingLength: p.Length,
		Remaining:      p.Remaining,
		Final:          p.Final,
		Streak:         m.Engine.Streak(),
		Closed:         m.Engine.Closed(),
		CanEdit:        m.Engine.CanEditTasks(),
		ProgressView:   m.dayProgress.ViewAs(p.Fraction()),
	}
	if len(rows) > 0 {
		data.ListView = m.todayList.View()
	}
	if m.Today.Adding {
		data.AddInputView = m.addInput.View()
	}
	return views.RenderTodayPanel(data)
}

func (m Model) renderRecordsView() string {
	data := views.RecordsData(m.Engine.Record().DailyRecords)
	data.TableView = m.recordsTable.View()
	return views.RenderRecordsPanel(data)
}

func (m Model) renderNotesView() string {
	return views.RenderNotesPanel(views.NotesPanelData{
		Editing:    m.Notes.Editing,
		Closed:     m.Engine.Closed(),
		EditorView: m.notesArea.View(),
		Preview:    m.notesViewport.View(),
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) lastNotificationBody() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	return m.Notifications[len(m.Notifications)-1].Body
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}
