package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/hoverpad/internal/config"
	"github.com/1broseidon/hoverpad/internal/notes"
	"github.com/1broseidon/hoverpad/internal/overlay"
	"github.com/1broseidon/hoverpad/internal/platform"
	"github.com/1broseidon/hoverpad/internal/runtimepath"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	coordinator  *overlay.Coordinator
	driver       platform.Driver
	notes        *notes.Store
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, coordinator *overlay.Coordinator, driver platform.Driver, store *notes.Store, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		cfg:         cfg,
		coordinator: coordinator,
		driver:      driver,
		notes:       store,
		startTime:   time.Now(),
		reloadChan:  reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandToggle:
		return s.handleToggle()
	case CommandForceTop:
		return s.handleForceTop()
	case CommandPosition:
		return s.handlePosition()
	case CommandEnsureTop:
		return s.handleEnsureTop()
	case CommandDebugInfo:
		return s.handleDebugInfo()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandReload:
		return s.handleReload()
	case CommandSaveNote:
		return s.handleSaveNote(req.Payload)
	case CommandLoadNote:
		return s.handleLoadNote()
	case CommandNoteHistory:
		return s.handleNoteHistory(req.Payload)
	case CommandLoadSnapshot:
		return s.handleLoadSnapshot(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleToggle feeds the coordinator the same trigger the hotkey does. The
// response says the trigger was accepted, not that the sequence completed;
// a trigger landing inside the debounce window is silently dropped, exactly
// like a repeated keypress.
func (s *Server) handleToggle() *Response {
	s.coordinator.HandleTrigger()

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleForceTop() *Response {
	if err := s.coordinator.ForceToTop(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to force window on top: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handlePosition() *Response {
	pos, err := s.coordinator.PositionTopRight()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to position window: %v", err))
	}

	resp, _ := NewOKResponse(PositionData{X: pos.X, Y: pos.Y})
	return resp
}

func (s *Server) handleEnsureTop() *Response {
	if err := s.coordinator.EnsureTopLevel(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to ensure top level: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleDebugInfo() *Response {
	report, err := s.coordinator.DebugInfo()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to inspect window: %v", err))
	}

	resp, _ := NewOKResponse(DebugData{Report: report})
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		State:         s.coordinator.State().String(),
		InFlight:      s.coordinator.InFlight(),
		Window:        uint32(s.coordinator.Window()),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	displays, err := s.driver.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	monitorInfos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		monitorInfos[i] = MonitorInfo{
			ID:      d.ID,
			Name:    d.Name,
			Primary: d.Primary,
			X:       d.Bounds.X,
			Y:       d.Bounds.Y,
			Width:   d.Bounds.Width,
			Height:  d.Bounds.Height,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: monitorInfos})
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSaveNote(payload json.RawMessage) *Response {
	var req SaveNotePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid save payload: %v", err))
	}

	if err := s.notes.Save(req.Content); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save note: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleLoadNote() *Response {
	content, err := s.notes.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load note: %v", err))
	}

	resp, _ := NewOKResponse(NoteData{Content: content})
	return resp
}

func (s *Server) handleNoteHistory(payload json.RawMessage) *Response {
	var req NoteHistoryPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid history payload: %v", err))
		}
	}

	snapshots, err := s.notes.History(req.Limit)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read history: %v", err))
	}

	infos := make([]SnapshotInfo, len(snapshots))
	for i, snap := range snapshots {
		infos[i] = SnapshotInfo{
			ID:   snap.ID.String(),
			Time: snap.Time,
			Size: snap.Size,
		}
	}

	resp, _ := NewOKResponse(NoteHistoryData{Snapshots: infos})
	return resp
}

func (s *Server) handleLoadSnapshot(payload json.RawMessage) *Response {
	var req LoadSnapshotPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snapshot payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}

	content, err := s.notes.LoadSnapshot(req.ID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load snapshot: %v", err))
	}

	resp, _ := NewOKResponse(NoteData{Content: content})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
