package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_STATE_HOME", "/tmp/state")

	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "local", cfg.Identity)
	assert.Equal(t, "23:58", cfg.Cutoff)
	assert.Equal(t, 60*time.Second, cfg.TickInterval.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.NotesDebounce.Duration)
	assert.Equal(t, filepath.Join("/tmp/data", "streakd", "streakd.db"), cfg.SQLitePath)
	assert.Equal(t, filepath.Join("/tmp/state", "streakd", "streakd.log"), cfg.LogPath)
	require.NoError(t, cfg.Validate())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store = "postgres"
postgres_dsn = "postgres://localhost/streakd"
cutoff = "22:30"
tick_interval = "30s"
timezone = "UTC"
log_level = "debug"
`), 0o600))
	t.Setenv("STREAKD_LOG_LEVEL", "warn")
	t.Setenv("STREAKD_NOTES_DEBOUNCE", "1s")
	t.Setenv("STREAKD_DESKTOP_NOTIFICATIONS", "yes")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "postgres://localhost/streakd", cfg.PostgresDSN)
	assert.Equal(t, "22:30", cfg.Cutoff)
	assert.Equal(t, 30*time.Second, cfg.TickInterval.Duration)
	assert.Equal(t, time.Second, cfg.NotesDebounce.Duration)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.DesktopNotifications)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	_, err := Load(path, false)
	require.NoError(t, err)

	_, err = Load(path, true)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"store":    func(c *Config) { c.Store = "redis" },
		"identity": func(c *Config) { c.Identity = "ldap" },
		"google":   func(c *Config) { c.Identity = "google" },
		"cutoff":   func(c *Config) { c.Cutoff = "midnight" },
		"timezone": func(c *Config) { c.Timezone = "Mars/Olympus" },
		"tick":     func(c *Config) { c.TickInterval = Duration{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInvalidEnvValuesAreIgnored(t *testing.T) {
	t.Setenv("STREAKD_TICK_INTERVAL", "soon")
	t.Setenv("STREAKD_SCHEDULER_BUFFER", "-3")
	cfg := FromEnv(Default())
	assert.Equal(t, 60*time.Second, cfg.TickInterval.Duration)
	assert.Equal(t, 64, cfg.SchedulerBuffer)
}

func TestWriteMasksSecret(t *testing.T) {
	cfg := Default()
	cfg.GoogleClientSecret = "hunter2"
	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), `cutoff = "23:58"`)
}
