// Package config resolves streakd settings from defaults, a TOML file and
// STREAKD_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const envPrefix = "STREAKD_"

// Duration reads "60s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Store         string `toml:"store"`
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresDSN   string `toml:"postgres_dsn"`

	Identity           string `toml:"identity"`
	GoogleClientID     string `toml:"google_client_id"`
	GoogleClientSecret string `toml:"google_client_secret"`
	TokenPath          string `toml:"token_path"`

	Timezone      string   `toml:"timezone"`
	Cutoff        string   `toml:"cutoff"`
	TickInterval  Duration `toml:"tick_interval"`
	NotesDebounce Duration `toml:"notes_debounce"`

	LogPath              string `toml:"log_path"`
	LogLevel             string `toml:"log_level"`
	DesktopNotifications bool   `toml:"desktop_notifications"`
	LockPath             string `toml:"lock_path"`
	SchedulerBuffer      int    `toml:"scheduler_buffer"`
}

func Default() Config {
	data := dataDir()
	state := stateDir()
	return Config{
		Store:           "sqlite",
		SQLitePath:      filepath.Join(data, "streakd.db"),
		MongoDatabase:   "streakd",
		Identity:        "local",
		TokenPath:       filepath.Join(data, "google-token.json"),
		Cutoff:          "23:58",
		TickInterval:    Duration{60 * time.Second},
		NotesDebounce:   Duration{500 * time.Millisecond},
		LogPath:         filepath.Join(state, "streakd.log"),
		LogLevel:        "info",
		LockPath:        filepath.Join(data, "streakd.lock"),
		SchedulerBuffer: 64,
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// Load layers the TOML file at path and then the environment over the
// defaults. A missing file is an error only when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	cfg := base
	setString := func(name string, dst *string) {
		if v, ok := getEnvString(name); ok {
			*dst = v
		}
	}
	setString("STORE", &cfg.Store)
	setString("SQLITE_PATH", &cfg.SQLitePath)
	setString("MONGO_URI", &cfg.MongoURI)
	setString("MONGO_DATABASE", &cfg.MongoDatabase)
	setString("POSTGRES_DSN", &cfg.PostgresDSN)
	setString("IDENTITY", &cfg.Identity)
	setString("GOOGLE_CLIENT_ID", &cfg.GoogleClientID)
	setString("GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret)
	setString("TOKEN_PATH", &cfg.TokenPath)
	setString("TIMEZONE", &cfg.Timezone)
	setString("CUTOFF", &cfg.Cutoff)
	setString("LOG_PATH", &cfg.LogPath)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOCK_PATH", &cfg.LockPath)

	if v, ok := getEnvDuration("TICK_INTERVAL"); ok && v > 0 {
		cfg.TickInterval = Duration{v}
	}
	if v, ok := getEnvDuration("NOTES_DEBOUNCE"); ok && v > 0 {
		cfg.NotesDebounce = Duration{v}
	}
	if v, ok := getEnvBool("DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Store {
	case "sqlite", "mongo", "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	switch c.Identity {
	case "local":
	case "google":
		if c.GoogleClientID == "" {
			return errors.New("config: google_client_id is required for the google identity provider")
		}
	default:
		return fmt.Errorf("config: unknown identity provider %q", c.Identity)
	}
	if _, err := time.Parse("15:04", c.Cutoff); err != nil {
		return fmt.Errorf("config: cutoff %q is not HH:MM", c.Cutoff)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.TickInterval.Duration <= 0 || c.NotesDebounce.Duration <= 0 {
		return errors.New("config: tick_interval and notes_debounce must be positive")
	}
	return nil
}

// Location returns the configured time zone, or nil to follow the system clock.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Write renders c as TOML with secrets masked.
func (c Config) Write(w io.Writer) error {
	out := c
	if out.GoogleClientSecret != "" {
		out.GoogleClientSecret = "********"
	}
	return toml.NewEncoder(w).Encode(out)
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "streakd")
	}
	return ".streakd"
}

func dataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func stateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := strings.TrimSpace(os.Getenv(env)); dir != "" {
		return filepath.Join(dir, "streakd")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, fallback, "streakd")
	}
	return ".streakd"
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
