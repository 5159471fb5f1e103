package mcp

import (
	"context"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/hoverpad/internal/ipc"
)

const (
	ServerName    = "hoverpad"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing overlay and note tools. Every tool is a
// thin wrapper over the daemon's IPC socket, so the daemon must be running
// for calls to succeed.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	// Not fatal: the daemon may be started after the MCP client connects.
	if err := s.client.Ping(); err != nil {
		log.Printf("Warning: hoverpad daemon not reachable: %v", err)
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_overlay",
		Description: "Toggle the overlay window between hidden and visible. The toggle runs asynchronously in the daemon; the returned state is the state right after the trigger was accepted. Triggers inside the debounce window are silently dropped.",
	}, s.handleToggleOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_overlay_status",
		Description: "Get daemon status: overlay visibility state (hidden/showing/visible), the managed window ID, and daemon uptime.",
	}, s.handleGetOverlayStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "force_overlay_top",
		Description: "Show the overlay window and re-assert its always-on-top state immediately, regardless of the current toggle state.",
	}, s.handleForceOverlayTop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "position_overlay",
		Description: "Move the overlay window to the top-right corner of the primary monitor. Returns the coordinates it was moved to.",
	}, s.handlePositionOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_debug_info",
		Description: "Get a plain-text report of the overlay window's current state: geometry, map state, desktop, and window manager hints.",
	}, s.handleGetDebugInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_note",
		Description: "Replace the scratch note content. A snapshot of the previous content is kept when snapshots are enabled.",
	}, s.handleSaveNote)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_note",
		Description: "Read the current scratch note content.",
	}, s.handleLoadNote)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_note_history",
		Description: "List stored note snapshots, newest first, with their IDs, timestamps, and sizes.",
	}, s.handleGetNoteHistory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_note_snapshot",
		Description: "Read the content of one stored note snapshot by its ID.",
	}, s.handleGetNoteSnapshot)
}
