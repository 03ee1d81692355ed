package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/streakd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView:    m.helpModel.View(m.helpKeys()),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Today, Action: "switch to Today"},
		{Key: m.Keys.Records, Action: "switch to Records"},
		{Key: "t", Action: "change tracking period"},
		{Key: "R", Action: "reset progress"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewToday:
		bindings := []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "space", Action: "toggle task"},
		}
		if m.Engine.CanEditTasks() {
			bindings = append(bindings,
				KeyBinding{Key: "a", Action: "add task"},
				KeyBinding{Key: "d", Action: "delete task"},
			)
		}
		return append(bindings,
			KeyBinding{Key: "c", Action: "complete the day"},
			KeyBinding{Key: "n", Action: "edit notes"},
		)
	case ViewRecords:
		return []KeyBinding{
			{Key: "j/k", Action: "scroll days"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpKeys() helpKeyMap {
	global := toKeyBindings(m.globalBindings())
	local := toKeyBindings(m.viewBindings())
	return helpKeyMap{
		short: append(append([]key.Binding{}, local...), global...),
		full:  [][]key.Binding{local, global},
	}
}

func toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
