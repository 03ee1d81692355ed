package update

import (
	"testing"
	"time"

	"github.com/sandeepkv93/streakd/internal/config"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.TickInterval != time.Minute || cfg.NotesDebounce != 500*time.Millisecond {
		t.Fatalf("unexpected timer defaults: %+v", cfg)
	}
	if len(cfg.TrackingPresets) != 8 || cfg.TrackingPresets[2] != 7 {
		t.Fatalf("unexpected presets: %v", cfg.TrackingPresets)
	}
}

func TestRuntimeConfigFrom(t *testing.T) {
	base := config.Default()
	base.DesktopNotifications = true
	base.TickInterval = config.Duration{Duration: 30 * time.Second}
	base.NotesDebounce = config.Duration{}

	cfg := RuntimeConfigFrom(base)
	if !cfg.DesktopNotifications {
		t.Fatal("expected desktop notifications carried over")
	}
	if cfg.TickInterval != 30*time.Second {
		t.Fatalf("unexpected tick interval: %s", cfg.TickInterval)
	}
	if cfg.NotesDebounce != 500*time.Millisecond {
		t.Fatalf("zero debounce should keep the default, got %s", cfg.NotesDebounce)
	}
}
