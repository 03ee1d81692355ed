package update

import (
	"time"

	"github.com/sandeepkv93/streakd/internal/config"
)

type RuntimeConfig struct {
	DesktopNotifications bool
	TickInterval         time.Duration
	NotesDebounce        time.Duration
	TrackingPresets      []int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DesktopNotifications: false,
		TickInterval:         time.Minute,
		NotesDebounce:        500 * time.Millisecond,
		TrackingPresets:      []int{3, 5, 7, 14, 21, 30, 60, 90},
	}
}

// RuntimeConfigFrom picks the TUI settings out of the resolved file/env config.
func RuntimeConfigFrom(cfg config.Config) RuntimeConfig {
	out := DefaultRuntimeConfig()
	out.DesktopNotifications = cfg.DesktopNotifications
	if cfg.TickInterval.Duration > 0 {
		out.TickInterval = cfg.TickInterval.Duration
	}
	if cfg.NotesDebounce.Duration > 0 {
		out.NotesDebounce = cfg.NotesDebounce.Duration
	}
	return out
}
