package update

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/daycycle"
	"github.com/sandeepkv93/streakd/internal/model"
)

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// typedText returns the characters a key press inserts into a text field.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	default:
		return "", false
	}
}

// userMessage turns engine and validation errors into status bar text.
func userMessage(err error) string {
	var ve *model.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return strings.ReplaceAll(ve.Field, ".", " ") + " " + ve.Reason
	case errors.Is(err, daycycle.ErrTasksLocked):
		return "tasks can only be changed on day 1"
	case errors.Is(err, daycycle.ErrDayClosed):
		return "today is already completed"
	case errors.Is(err, daycycle.ErrUnknownTask):
		return "no such task"
	default:
		return err.Error()
	}
}
