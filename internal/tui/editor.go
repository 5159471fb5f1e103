// Package tui holds the interactive surfaces: the note editor and the
// first-run setup form.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/hoverpad/internal/ipc"
	"github.com/1broseidon/hoverpad/internal/notes"
)

// Editor is the interactive note editor.
type Editor struct {
	store  *notes.Store
	client *ipc.Client
}

// NewEditor creates an editor over the given note store.
func NewEditor(store *notes.Store) *Editor {
	return &Editor{
		store:  store,
		client: ipc.NewClient(),
	}
}

// Run starts the editor, blocking until the user quits.
func (e *Editor) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("edit requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newEditorModel(e.store, e.client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type noteLoadedMsg struct {
	content string
	err     error
}

type noteSavedMsg struct {
	content string
	err     error
}

type watchStartedMsg struct {
	ch     <-chan notes.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event notes.Event
}

type watchStoppedMsg struct{}

// editorModel is the root bubbletea model for the note editor.
type editorModel struct {
	store  *notes.Store
	client *ipc.Client

	ta        textarea.Model
	preview   bool
	previewMD string

	lastSaved string
	status    string
	statusErr bool

	daemonConnected bool

	watchCh     <-chan notes.Event
	watchCancel context.CancelFunc

	width  int
	height int
}

func newEditorModel(store *notes.Store, client *ipc.Client) editorModel {
	ta := textarea.New()
	ta.Placeholder = "Type your note..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Focus()

	m := editorModel{
		store:  store,
		client: client,
		ta:     ta,
	}
	if client.Ping() == nil {
		m.daemonConnected = true
	}
	return m
}

// Init implements tea.Model.
func (m editorModel) Init() tea.Cmd {
	return tea.Batch(loadNoteCmd(m.store), startWatchCmd(m.store), textarea.Blink)
}

func loadNoteCmd(store *notes.Store) tea.Cmd {
	return func() tea.Msg {
		content, err := store.Load()
		return noteLoadedMsg{content: content, err: err}
	}
}

// saveCmd writes the note. The daemon's store stays the single writer when
// it is running; otherwise the editor writes directly.
func (m editorModel) saveCmd() tea.Cmd {
	content := m.ta.Value()
	client := m.client
	daemonUp := m.daemonConnected
	store := m.store
	return func() tea.Msg {
		if daemonUp {
			if err := client.SaveNote(content); err == nil {
				return noteSavedMsg{content: content}
			}
		}
		return noteSavedMsg{content: content, err: store.Save(content)}
	}
}

func startWatchCmd(store *notes.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := store.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m editorModel) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m editorModel) dirty() bool {
	return m.ta.Value() != m.lastSaved
}

// contentHeight returns the height available for the textarea or preview.
func (m editorModel) contentHeight() int {
	// header (1) + status (1) + help (1)
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// Update implements tea.Model.
func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.watchCancel != nil {
				m.watchCancel()
			}
			return m, tea.Quit

		case "esc":
			if m.preview {
				m.preview = false
				return m, nil
			}
			if m.watchCancel != nil {
				m.watchCancel()
			}
			return m, tea.Quit

		case "ctrl+s":
			return m, m.saveCmd()

		case "ctrl+p":
			m.preview = !m.preview
			if m.preview {
				m.previewMD = renderMarkdown(m.ta.Value(), m.width)
			}
			return m, nil

		case "ctrl+r":
			return m, loadNoteCmd(m.store)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ta.SetWidth(m.width)
		m.ta.SetHeight(m.contentHeight())
		if m.preview {
			m.previewMD = renderMarkdown(m.ta.Value(), m.width)
		}
		return m, nil

	case noteLoadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		// Leaving an unchanged buffer alone keeps the cursor in place
		// when our own save echoes back through the watcher.
		if msg.content != m.ta.Value() {
			m.ta.SetValue(msg.content)
		}
		m.lastSaved = msg.content
		return m, nil

	case noteSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		m.lastSaved = msg.content
		m.status = "saved"
		m.statusErr = false
		return m, nil

	case watchStartedMsg:
		if msg.err != nil {
			// Editing still works without live reload.
			m.status = "watch unavailable: " + msg.err.Error()
			m.statusErr = false
			return m, nil
		}
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		return m, m.waitForWatch()

	case watchEventMsg:
		var cmd tea.Cmd
		if msg.event.Type == notes.EventNoteChanged {
			if m.dirty() {
				m.status = "note changed on disk, keeping unsaved edits"
				m.statusErr = false
			} else {
				cmd = loadNoteCmd(m.store)
			}
		}
		return m, tea.Batch(cmd, m.waitForWatch())

	case watchStoppedMsg:
		m.watchCh = nil
		m.watchCancel = nil
		return m, nil
	}

	if m.preview {
		return m, nil
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m editorModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := renderEditorHeader(m.daemonConnected, m.dirty(), m.preview, m.width)
	status := renderEditorStatus(m.status, m.statusErr, m.width)
	help := renderEditorHelp(m.preview, m.width)

	var content string
	if m.preview {
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(m.contentHeight()).
			Padding(0, 1).
			Render(m.previewMD)
	} else {
		content = m.ta.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		content,
		status,
		help,
	)
}

// renderMarkdown returns the terminal-styled rendering of the note.
func renderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(empty note)")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n ")
}

func renderEditorHeader(connected, dirty, preview bool, width int) string {
	title := "hoverpad note"
	if preview {
		title += " (preview)"
	}
	if dirty {
		title += " *"
	}

	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = dot + " daemon connected"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(lipgloss.NewStyle().Bold(true).Render(title) + "  " + status)
}

func renderEditorStatus(status string, isErr bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	if isErr {
		style = style.Foreground(lipgloss.Color("196"))
	}
	return style.Render(status)
}

func renderEditorHelp(preview bool, width int) string {
	help := "ctrl-s: save  ctrl-p: preview  ctrl-r: reload  esc/ctrl-c: quit"
	if preview {
		help = "ctrl-p/esc: back to editing  ctrl-c: quit"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
