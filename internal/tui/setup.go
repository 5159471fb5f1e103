package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/hoverpad/internal/config"
	"github.com/1broseidon/hoverpad/internal/ipc"
)

// Setup is the interactive configuration form.
type Setup struct {
	cfg *config.Config

	// Form-bound values (strings for huh, converted on submit)
	fHotkey       string
	fWindowClass  string
	fWindowTitle  string
	fMarginX      string
	fMarginY      string
	fNotesDir     string
	fSnapshots    bool
	fMaxSnapshots string
	fLogLevel     string
}

// NewSetup creates a setup form pre-filled from the existing config when
// one is readable, falling back to defaults.
func NewSetup() *Setup {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return &Setup{cfg: cfg}
}

// Run walks the user through the form, writes the config file, and reloads
// a running daemon.
func (s *Setup) Run() error {
	s.fHotkey = s.cfg.Hotkey
	s.fWindowClass = s.cfg.WindowClass
	s.fWindowTitle = s.cfg.WindowTitle
	s.fMarginX = strconv.Itoa(s.cfg.MarginX)
	s.fMarginY = strconv.Itoa(s.cfg.MarginY)
	s.fNotesDir = s.cfg.NotesDir
	s.fSnapshots = s.cfg.SnapshotsEnabled()
	s.fMaxSnapshots = strconv.Itoa(s.cfg.MaxSnapshots)
	s.fLogLevel = s.cfg.LogLevel

	levelOpts := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warning", "warning"),
		huh.NewOption("error", "error"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("hotkey").
				Title("Hotkey").
				Description("Global binding that toggles the overlay (e.g. Cmd+Shift+`)").
				Value(&s.fHotkey),

			huh.NewInput().
				Key("window_class").
				Title("Window Class").
				Description("WM_CLASS of the window to manage").
				Value(&s.fWindowClass),

			huh.NewInput().
				Key("window_title").
				Title("Window Title").
				Description("Title substring fallback when no class matches (optional)").
				Value(&s.fWindowTitle),

			huh.NewInput().
				Key("margin_x").
				Title("Margin X").
				Description("Pixels from the right screen edge").
				Value(&s.fMarginX),

			huh.NewInput().
				Key("margin_y").
				Title("Margin Y").
				Description("Pixels from the top screen edge").
				Value(&s.fMarginY),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("notes_dir").
				Title("Notes Directory").
				Description("Where the note and its snapshots are stored").
				Value(&s.fNotesDir),

			huh.NewConfirm().
				Key("snapshot_on_save").
				Title("Snapshot On Save").
				Description("Keep a copy of the note on every save").
				Value(&s.fSnapshots),

			huh.NewInput().
				Key("max_snapshots").
				Title("Max Snapshots").
				Description("Oldest snapshots beyond this count are pruned").
				Value(&s.fMaxSnapshots),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levelOpts...).
				Value(&s.fLogLevel),
		),
	).WithShowHelp(true).WithShowErrors(true)

	if err := form.Run(); err != nil {
		return err
	}

	s.applyForm()
	if err := s.cfg.Save(); err != nil {
		return err
	}

	if path, err := config.DefaultConfigPath(); err == nil {
		fmt.Printf("Configuration written to %s\n", path)
	}

	// A running daemon picks the new config up right away.
	client := ipc.NewClient()
	if client.Ping() == nil {
		if err := client.Reload(); err != nil {
			fmt.Printf("Warning: daemon reload failed: %v\n", err)
		} else {
			fmt.Println("Daemon reloaded")
		}
	}
	return nil
}

func (s *Setup) applyForm() {
	if s.fHotkey != "" {
		s.cfg.Hotkey = s.fHotkey
	}
	s.cfg.WindowClass = s.fWindowClass
	s.cfg.WindowTitle = s.fWindowTitle
	if v, err := strconv.Atoi(s.fMarginX); err == nil && v >= 0 {
		s.cfg.MarginX = v
	}
	if v, err := strconv.Atoi(s.fMarginY); err == nil && v >= 0 {
		s.cfg.MarginY = v
	}
	if s.fNotesDir != "" {
		s.cfg.NotesDir = s.fNotesDir
	}
	snapshots := s.fSnapshots
	s.cfg.SnapshotOnSave = &snapshots
	if v, err := strconv.Atoi(s.fMaxSnapshots); err == nil && v >= 0 {
		s.cfg.MaxSnapshots = v
	}
	if s.fLogLevel != "" {
		s.cfg.LogLevel = s.fLogLevel
	}
}
