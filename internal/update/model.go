package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
)

type View string

const (
	ViewToday   View = "Today"
	ViewRecords View = "Records"
)

// Dialog is the modal currently capturing keys, if any.
type Dialog string

const (
	DialogNone          Dialog = ""
	DialogCompleteDay   Dialog = "complete-day"
	DialogReset         Dialog = "reset"
	DialogTracking      Dialog = "tracking"
	DialogAutoSubmitted Dialog = "auto-submitted"
)

// Scheduler keys.
const (
	TimerDayTick   = "day-tick"
	TimerNotesSave = "notes-save"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Records string
	Help    string
	Quit    string
}

// PatchWriter queues patches for persistence without blocking.
// *storage.Writer satisfies it.
type PatchWriter interface {
	Submit(model.Patch) bool
	Errors() <-chan error
}

type Model struct {
	CurrentView    View
	SelectedTaskID string
	Engine         *daycycle.Engine
	Writer         PatchWriter
	Scheduler      *scheduler.Engine
	Config         RuntimeConfig
	User           string
	Today          TodayState
	Dialog         Dialog
	Tracking       TrackingState
	Notes          NotesState
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	logger         *zap.Logger
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	// Bubble components used for rich TUI controls
	todayList     list.Model
	recordsTable  table.Model
	addInput      textinput.Model
	commandInput  textinput.Model
	customInput   textinput.Model
	notesArea     textarea.Model
	dayProgress   progress.Model
	helpModel     help.Model
	notesViewport viewport.Model
	renderedNotes string
	notesRendered bool
}

type TodayState struct {
	Cursor int
	Adding bool
}

type TrackingState struct {
	Cursor int
	Custom bool
	Err    string
}

type NotesState struct {
	Editing bool
	// Pending is set while an edit waits for the debounce timer.
	Pending bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TimerFiredMsg carries a scheduler event into the update loop.
type TimerFiredMsg struct {
	Event scheduler.Event
}

// PersistErrorMsg reports a failed background write.
type PersistErrorMsg struct {
	Err error
}

// Deps wires a Model to an open session.
type Deps struct {
	Engine    *daycycle.Engine
	Writer    PatchWriter
	Scheduler *scheduler.Engine
	Notifier  DesktopNotifier
	Logger    *zap.Logger
	Config    RuntimeConfig
	// User is shown in the header.
	User string
}

func NewModel(deps Deps) Model {
	cfg := deps.Config
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultRuntimeConfig().TickInterval
	}
	if cfg.NotesDebounce <= 0 {
		cfg.NotesDebounce = DefaultRuntimeConfig().NotesDebounce
	}
	if len(cfg.TrackingPresets) == 0 {
		cfg.TrackingPresets = DefaultRuntimeConfig().TrackingPresets
	}
	m := Model{
		CurrentView:    ViewToday,
		Engine:         deps.Engine,
		Writer:         deps.Writer,
		Scheduler:      deps.Scheduler,
		Config:         cfg,
		User:           deps.User,
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		logger:         deps.Logger,
		Keys: GlobalKeyMap{
			Today:   "1",
			Records: "2",
			Help:    "?",
			Quit:    "q",
		},
	}
	if deps.Notifier != nil {
		m.notifier = deps.Notifier
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.Engine == nil {
		m.Engine = daycycle.New(model.NewUserRecord(model.Profile{}))
	}
	m.initBubbleComponents()
	m.syncSelectedTaskToCursor()
	m.syncBubbleData()
	m.armDayTick()
	return m
}
