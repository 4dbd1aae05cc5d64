// Package config loads user settings and builds component loggers.
//
// Settings live in config.yaml inside the user config dir and can be
// overridden with STICKY_-prefixed environment variables, e.g.
// STICKY_STORAGE_FOLDER.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const appDirName = "Stickies"

// Settings holds every user-tunable knob.
type Settings struct {
	// StorageFolder overrides storage folder resolution when set.
	StorageFolder string

	// AutosaveDebounce is how long the board must sit quiet before an
	// autosave fires.
	AutosaveDebounce time.Duration

	// ModTolerance is the external-change detection slack.
	ModTolerance time.Duration

	// PollInterval is the fallback polling cadence for external changes.
	PollInterval time.Duration

	// BackupKeep is how many daily backups to retain.
	BackupKeep int

	// DashboardPort is where the WebSocket dashboard listens.
	DashboardPort int

	// UpdateRepo is the GitHub owner/name checked for new releases.
	UpdateRepo string

	// UpdateDisabled turns off update checks entirely.
	UpdateDisabled bool
}

// Dir returns the user config directory for the application, creating
// it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

// Load reads settings from config.yaml in the user config dir. A
// missing file yields the defaults.
func Load() (*Settings, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads settings from config.yaml in the given directory.
func LoadFrom(dir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("STICKY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.folder", "")
	v.SetDefault("autosave.debounce", "3s")
	v.SetDefault("autosave.tolerance", "2s")
	v.SetDefault("sync.poll_interval", "30s")
	v.SetDefault("backup.keep", 14)
	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("update.repo", "steveyegge/stickies")
	v.SetDefault("update.disabled", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	s := &Settings{
		StorageFolder:    v.GetString("storage.folder"),
		AutosaveDebounce: v.GetDuration("autosave.debounce"),
		ModTolerance:     v.GetDuration("autosave.tolerance"),
		PollInterval:     v.GetDuration("sync.poll_interval"),
		BackupKeep:       v.GetInt("backup.keep"),
		DashboardPort:    v.GetInt("dashboard.port"),
		UpdateRepo:       v.GetString("update.repo"),
		UpdateDisabled:   v.GetBool("update.disabled"),
	}

	if s.AutosaveDebounce <= 0 {
		return nil, fmt.Errorf("autosave.debounce must be positive")
	}
	if s.ModTolerance <= 0 {
		return nil, fmt.Errorf("autosave.tolerance must be positive")
	}
	if s.PollInterval <= 0 {
		return nil, fmt.Errorf("sync.poll_interval must be positive")
	}
	if s.BackupKeep <= 0 {
		return nil, fmt.Errorf("backup.keep must be positive")
	}

	return s, nil
}

// NewLogger returns a stderr logger with the component's bracketed
// prefix.
func NewLogger(component string) *log.Logger {
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags)
}

// NewFileLogger returns a logger writing to a rotating file under the
// user config dir. Used by the long-running daemon, whose stderr
// usually goes nowhere.
func NewFileLogger(component string) (*log.Logger, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "stickies.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return log.New(rotator, "["+component+"] ", log.LstdFlags), nil
}
