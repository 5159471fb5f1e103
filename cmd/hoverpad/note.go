package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/hoverpad/internal/config"
	"github.com/1broseidon/hoverpad/internal/ipc"
	"github.com/1broseidon/hoverpad/internal/notes"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"golang.org/x/term"
)

func printNoteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  hoverpad note show")
	fmt.Fprintln(w, "  hoverpad note save [<content>]")
	fmt.Fprintln(w, "  hoverpad note history [--limit N]")
	fmt.Fprintln(w, "  hoverpad note restore <id>")
	fmt.Fprintln(w, "  hoverpad note watch")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hoverpad note <command> --help' for command-specific options.")
}

func runNote(args []string) int {
	if len(args) == 0 {
		printNoteUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printNoteUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: hoverpad note show")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Print the current note to stdout.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "note show takes no arguments")
			fs.Usage()
			return 2
		}

		content, err := loadNoteContent(client)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
		return 0

	case "save":
		fs := flag.NewFlagSet("save", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: hoverpad note save [<content>]")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Replace the note with <content>, or with stdin when piped.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(os.Stderr, "note save takes at most one argument")
			fs.Usage()
			return 2
		}

		var content string
		if fs.NArg() == 1 {
			content = fs.Arg(0)
		} else {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprintln(os.Stderr, "note save requires content as an argument or on stdin")
				fs.Usage()
				return 2
			}
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			content = string(data)
		}

		if err := saveNoteContent(client, content); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("saved (%s)\n", humanize.Bytes(uint64(len(content))))
		return 0

	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: hoverpad note history [--limit N]")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "List note snapshots, newest first.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		limit := fs.Int("limit", 0, "Maximum snapshots to list (0 = all)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "note history takes no arguments")
			fs.Usage()
			return 2
		}

		snapshots, err := noteHistory(client, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(snapshots) == 0 {
			f := color.New(color.Faint, color.Italic)
			_, _ = f.Println("no snapshots")
			return 0
		}

		bold := color.New(color.Bold)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("SAVED"), bold.Sprint("SIZE"))
		for _, s := range snapshots {
			tbl.AddRow(s.ID, humanize.Time(s.Time), humanize.Bytes(uint64(s.Size)))
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
		return 0

	case "restore":
		fs := flag.NewFlagSet("restore", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: hoverpad note restore <id>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Replace the note with the content of snapshot <id>. The restore is")
			fmt.Fprintln(os.Stderr, "itself recorded as a new snapshot when snapshots are enabled.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "note restore requires <id>")
			fs.Usage()
			return 2
		}

		content, err := loadSnapshotContent(client, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := saveNoteContent(client, content); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("restored %s (%s)\n", fs.Arg(0), humanize.Bytes(uint64(len(content))))
		return 0

	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: hoverpad note watch")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Print a line whenever the note or its snapshots change on disk.")
			fmt.Fprintln(os.Stderr, "Runs until interrupted.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 0 {
			fmt.Fprintln(os.Stderr, "note watch takes no arguments")
			fs.Usage()
			return 2
		}

		store, err := noteStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		events, err := store.Watch(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for ev := range events {
			label := "note changed"
			if ev.Type == notes.EventSnapshotsChanged {
				label = "snapshots changed"
			}
			fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), label)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown note command: %s\n\n", args[0])
		printNoteUsage(os.Stderr)
		return 2
	}
}

// noteStore opens the on-disk store for direct access when the daemon is
// not running.
func noteStore() (*notes.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func loadNoteContent(client *ipc.Client) (string, error) {
	if client.Ping() == nil {
		return client.LoadNote()
	}
	store, err := noteStore()
	if err != nil {
		return "", err
	}
	return store.Load()
}

// saveNoteContent routes a save through the daemon so its store stays the
// single writer, falling back to a direct write when it is unreachable.
func saveNoteContent(client *ipc.Client, content string) error {
	if client.Ping() == nil {
		if err := client.SaveNote(content); err == nil {
			return nil
		}
	}
	store, err := noteStore()
	if err != nil {
		return err
	}
	return store.Save(content)
}

func noteHistory(client *ipc.Client, limit int) ([]ipc.SnapshotInfo, error) {
	if client.Ping() == nil {
		return client.NoteHistory(limit)
	}
	store, err := noteStore()
	if err != nil {
		return nil, err
	}
	history, err := store.History(limit)
	if err != nil {
		return nil, err
	}
	snapshots := make([]ipc.SnapshotInfo, 0, len(history))
	for _, s := range history {
		snapshots = append(snapshots, ipc.SnapshotInfo{ID: s.ID.String(), Time: s.Time, Size: s.Size})
	}
	return snapshots, nil
}

func loadSnapshotContent(client *ipc.Client, id string) (string, error) {
	if client.Ping() == nil {
		return client.LoadSnapshot(id)
	}
	store, err := noteStore()
	if err != nil {
		return "", err
	}
	return store.LoadSnapshot(id)
}
