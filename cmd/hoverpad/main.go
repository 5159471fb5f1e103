package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/hoverpad/internal/config"
	"github.com/1broseidon/hoverpad/internal/daemon"
	"github.com/1broseidon/hoverpad/internal/hotkeys"
	"github.com/1broseidon/hoverpad/internal/ipc"
	"github.com/1broseidon/hoverpad/internal/notes"
	"github.com/1broseidon/hoverpad/internal/overlay"
	"github.com/1broseidon/hoverpad/internal/platform"
	"github.com/1broseidon/hoverpad/internal/tui"
	"gopkg.in/yaml.v3"
)

// startupPlacementDelay gives the window manager time to settle after the
// daemon adopts the window, before the initial corner placement runs.
const startupPlacementDelay = 100 * time.Millisecond

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: hoverpad daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: hoverpad daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "force-top":
		os.Exit(runForceTop(os.Args[2:]))
	case "position":
		os.Exit(runPosition(os.Args[2:]))
	case "ensure-top":
		os.Exit(runEnsureTop(os.Args[2:]))
	case "debug":
		os.Exit(runDebug(os.Args[2:]))
	case "note":
		os.Exit(runNote(os.Args[2:]))
	case "edit":
		os.Exit(runEdit(os.Args[2:]))
	case "setup":
		os.Exit(runSetup(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hoverpad <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the hoverpad daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  toggle              Toggle overlay visibility")
	fmt.Fprintln(w, "  force-top           Show the overlay and force it above other windows")
	fmt.Fprintln(w, "  position            Snap the overlay to the top-right corner")
	fmt.Fprintln(w, "  ensure-top          Re-assert always-on-top without changing visibility")
	fmt.Fprintln(w, "  debug               Print a diagnostic report for the managed window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  note show           Print the current note")
	fmt.Fprintln(w, "  note save           Save note content from an argument or stdin")
	fmt.Fprintln(w, "  note history        List note snapshots")
	fmt.Fprintln(w, "  note restore        Restore the note from a snapshot")
	fmt.Fprintln(w, "  note watch          Report note changes as they happen")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  edit                Open the interactive note editor")
	fmt.Fprintln(w, "  setup               Run the interactive setup wizard")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  reload              Tell the daemon to reload its configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hoverpad <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("state:          %s\n", status.State)
	fmt.Printf("in_flight:      %v\n", status.InFlight)
	fmt.Printf("window:         0x%x\n", status.Window)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle overlay visibility, same as pressing the hotkey.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "toggle takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Toggle(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runForceTop(args []string) int {
	fs := flag.NewFlagSet("force-top", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad force-top")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the overlay and re-assert it above other windows.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "force-top takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.ForceTop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPosition(args []string) int {
	fs := flag.NewFlagSet("position", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad position")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Snap the overlay to the top-right corner of the primary monitor.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "position takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	pos, err := client.Position()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("position: %d,%d\n", pos.X, pos.Y)
	return 0
}

func runEnsureTop(args []string) int {
	fs := flag.NewFlagSet("ensure-top", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad ensure-top")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Re-assert the always-on-top properties without changing visibility.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "ensure-top takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.EnsureTop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDebug(args []string) int {
	fs := flag.NewFlagSet("debug", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad debug")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print a diagnostic report for the managed window.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "debug takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	report, err := client.DebugInfo()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(report)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Tell the running daemon to reload its configuration file.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reload: ok")
	return 0
}

func runEdit(args []string) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad edit")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive note editor with markdown preview. Saves go through the")
		fmt.Fprintln(os.Stderr, "daemon when it is running, directly to the note store otherwise.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  Ctrl+S    Save")
		fmt.Fprintln(os.Stderr, "  Ctrl+P    Toggle markdown preview")
		fmt.Fprintln(os.Stderr, "  Ctrl+R    Reload note from disk")
		fmt.Fprintln(os.Stderr, "  Esc       Leave preview, or quit")
		fmt.Fprintln(os.Stderr, "  Ctrl+C    Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "edit takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := tui.NewEditor(store).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSetup(args []string) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hoverpad setup")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive wizard that writes ~/.config/hoverpad/config.yaml and")
		fmt.Fprintln(os.Stderr, "reloads the daemon when it is running.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "setup takes no arguments")
		fs.Usage()
		return 2
	}

	if err := tui.NewSetup().Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hoverpad config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  hoverpad config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/hoverpad/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/hoverpad/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// openStore opens the note store described by the config.
func openStore(cfg *config.Config) (*notes.Store, error) {
	dir, err := cfg.ExpandedNotesDir()
	if err != nil {
		return nil, err
	}
	return notes.NewStore(notes.Config{
		Dir:            dir,
		SnapshotOnSave: cfg.SnapshotsEnabled(),
		MaxSnapshots:   cfg.MaxSnapshots,
	})
}

func slogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyReload pushes reloadable settings into running components. Margin
// changes apply from the next placement. The hotkey grab, the managed
// window, and the note store are fixed for the daemon's lifetime; changing
// those fields needs a restart.
func applyReload(coordinator *overlay.Coordinator, oldCfg, newCfg *config.Config) {
	coordinator.UpdateMargins(newCfg.MarginX, newCfg.MarginY)

	if newCfg.Hotkey != oldCfg.Hotkey {
		log.Printf("Hotkey changed in config, restart the daemon to apply it")
	}
	if newCfg.WindowClass != oldCfg.WindowClass || newCfg.WindowTitle != oldCfg.WindowTitle {
		log.Printf("Window selection changed in config, restart the daemon to apply it")
	}
	if newCfg.NotesDir != oldCfg.NotesDir {
		log.Printf("Notes directory changed in config, restart the daemon to apply it")
	}
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (hotkey: %s, margins: %d,%d)", cfg.Hotkey, cfg.MarginX, cfg.MarginY)

	// Connect to display server
	driver, err := platform.NewDriver(platform.Options{Display: cfg.Display, XAuthority: cfg.XAuthority})
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer driver.Disconnect()

	log.Println("hoverpad daemon started successfully")

	// Locate the window to manage
	window, err := driver.FindWindow(cfg.WindowClass, cfg.WindowTitle)
	if err != nil {
		log.Fatalf("Failed to find overlay window (class %q): %v", cfg.WindowClass, err)
	}
	log.Printf("Managing window 0x%x", window)

	if err := driver.ConvertToOverlay(window, platform.DefaultProfile()); err != nil {
		log.Fatalf("Failed to convert window to overlay: %v", err)
	}

	// The overlay starts hidden; the first hotkey press shows it.
	if err := driver.HideWindow(window); err != nil {
		log.Printf("Warning: failed to hide window at startup: %v", err)
	}

	// Open the note store
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open note store: %v", err)
	}

	daemonLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	coordinator := overlay.NewCoordinator(overlay.CoordinatorConfig{
		MarginX: cfg.MarginX,
		MarginY: cfg.MarginY,
		Logger:  daemonLogger,
	}, driver, window)

	// Setup hotkey handler
	hotkeyHandler := hotkeys.NewHandler(driver, coordinator)
	if err := hotkeyHandler.Register(cfg.Hotkey); err != nil {
		log.Fatalf("Failed to register hotkey: %v", err)
	}
	log.Printf("Toggle hotkey registered: %s", cfg.Hotkey)

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	// Start IPC server
	ipcServer, err := ipc.NewServer(cfg, coordinator, driver, store, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Start the reconciler that re-asserts the overlay while it is visible
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   daemonLogger,
	}, coordinator, driver)

	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()
	go reconciler.Run(reconcilerCtx)

	// Reconcile immediately after suspend/resume and session unlock
	wakeMonitor := daemon.NewWakeMonitor(reconciler, daemonLogger)
	if err := wakeMonitor.Start(); err != nil {
		log.Printf("Warning: wake monitor unavailable: %v", err)
	}
	defer wakeMonitor.Stop()

	// Pin the hidden window to its corner once the window manager has
	// settled, so the first show starts from the right place.
	coordinator.SchedulePlacement(startupPlacementDelay)

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	// Handle signals and config reloads
	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}

					ipcServer.UpdateConfig(newCfg)
					applyReload(coordinator, cfg, newCfg)
					cfg = newCfg

					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down hoverpad daemon...")
					reconcilerCancel()
					ipcServer.Stop()
					os.Exit(0)
				}

			case <-reloadChan:
				// Config was reloaded via IPC, update components
				newCfg := ipcServer.GetConfig()
				applyReload(coordinator, cfg, newCfg)
				cfg = newCfg
			}
		}
	}()

	// Start event loop (blocking)
	log.Println("Entering event loop...")
	driver.EventLoop()
}
