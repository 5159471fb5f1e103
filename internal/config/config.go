package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds all hoverpad settings.
type Config struct {
	// Hotkey is the global toggle combination, e.g. "Cmd+Shift+`".
	Hotkey string `yaml:"hotkey"`

	// WindowClass selects the window to adopt by WM_CLASS.
	WindowClass string `yaml:"window_class"`
	// WindowTitle is a title-substring fallback when no class matches.
	WindowTitle string `yaml:"window_title,omitempty"`

	// MarginX and MarginY offset the window from the top-right corner.
	MarginX int `yaml:"margin_x"`
	MarginY int `yaml:"margin_y"`

	// Display and XAuthority override the X11 connection environment.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	// NotesDir is where note content and snapshots live. Supports ~.
	NotesDir string `yaml:"notes_dir"`
	// SnapshotOnSave records a history snapshot on every save.
	// Default: true
	SnapshotOnSave *bool `yaml:"snapshot_on_save,omitempty"`
	// MaxSnapshots bounds the save history.
	MaxSnapshots int `yaml:"max_snapshots"`

	// LogLevel controls daemon verbosity: debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
}

// ValidationError reports an invalid config value by its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Hotkey:       "Cmd+Shift+`",
		WindowClass:  "Hoverpad",
		MarginX:      20,
		MarginY:      40,
		NotesDir:     "~/.local/share/hoverpad",
		MaxSnapshots: 50,
		LogLevel:     "info",
	}
}

// SnapshotsEnabled reports whether saves record history snapshots.
func (c *Config) SnapshotsEnabled() bool {
	return c.SnapshotOnSave == nil || *c.SnapshotOnSave
}

// ExpandedNotesDir returns NotesDir with ~ expanded.
func (c *Config) ExpandedNotesDir() (string, error) {
	dir, err := homedir.Expand(c.NotesDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand notes_dir: %w", err)
	}
	return dir, nil
}

func (c *Config) Validate() error {
	if c.Hotkey == "" {
		return &ValidationError{Path: "hotkey", Err: fmt.Errorf("hotkey is required")}
	}
	if c.WindowClass == "" && c.WindowTitle == "" {
		return &ValidationError{Path: "window_class", Err: fmt.Errorf("window_class or window_title is required")}
	}
	if c.MarginX < 0 {
		return &ValidationError{Path: "margin_x", Err: fmt.Errorf("margin_x must be >= 0")}
	}
	if c.MarginY < 0 {
		return &ValidationError{Path: "margin_y", Err: fmt.Errorf("margin_y must be >= 0")}
	}
	if c.NotesDir == "" {
		return &ValidationError{Path: "notes_dir", Err: fmt.Errorf("notes_dir is required")}
	}
	if c.MaxSnapshots < 0 {
		return &ValidationError{Path: "max_snapshots", Err: fmt.Errorf("max_snapshots must be >= 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// Save writes the config to the standard location.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
