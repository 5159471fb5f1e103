package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Hotkey != "Cmd+Shift+`" {
		t.Fatalf("expected default hotkey Cmd+Shift+`, got %q", cfg.Hotkey)
	}
	if cfg.MarginX != 20 || cfg.MarginY != 40 {
		t.Fatalf("expected default margins 20/40, got %d/%d", cfg.MarginX, cfg.MarginY)
	}
	if !cfg.SnapshotsEnabled() {
		t.Fatalf("expected snapshots enabled by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WindowClass != "Hoverpad" {
		t.Fatalf("expected default window_class Hoverpad, got %q", cfg.WindowClass)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxSnapshots != 50 {
		t.Fatalf("expected default max_snapshots 50, got %d", cfg.MaxSnapshots)
	}
}

func TestLoadFromPath_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"hotkey: \"Ctrl+Alt+n\"",
		"margin_x: 8",
		"display: \":1\"",
		"snapshot_on_save: false",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hotkey != "Ctrl+Alt+n" {
		t.Fatalf("expected overridden hotkey, got %q", cfg.Hotkey)
	}
	if cfg.MarginX != 8 {
		t.Fatalf("expected margin_x 8, got %d", cfg.MarginX)
	}
	if cfg.MarginY != 40 {
		t.Fatalf("expected margin_y to keep its default, got %d", cfg.MarginY)
	}
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}
	if cfg.SnapshotsEnabled() {
		t.Fatalf("expected snapshots disabled by explicit false")
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("hotkye: typo\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{"empty hotkey", func(c *Config) { c.Hotkey = "" }, "hotkey"},
		{"no window selector", func(c *Config) { c.WindowClass = ""; c.WindowTitle = "" }, "window_class"},
		{"negative margin", func(c *Config) { c.MarginX = -1 }, "margin_x"},
		{"empty notes dir", func(c *Config) { c.NotesDir = "" }, "notes_dir"},
		{"negative max snapshots", func(c *Config) { c.MaxSnapshots = -1 }, "max_snapshots"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)

		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected *ValidationError, got %T", tc.name, err)
		}
		if verr.Path != tc.wantPath {
			t.Fatalf("%s: expected path %q, got %q", tc.name, tc.wantPath, verr.Path)
		}
	}
}

func TestExpandedNotesDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NotesDir = "~/notes"

	dir, err := cfg.ExpandedNotesDir()
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if strings.HasPrefix(dir, "~") {
		t.Fatalf("expected ~ expanded, got %q", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Fatalf("expected absolute path, got %q", dir)
	}
}
