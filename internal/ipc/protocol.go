package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandToggle       CommandType = "TOGGLE"
	CommandForceTop     CommandType = "FORCE_TOP"
	CommandPosition     CommandType = "POSITION"
	CommandEnsureTop    CommandType = "ENSURE_TOP"
	CommandDebugInfo    CommandType = "DEBUG_INFO"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetMonitors  CommandType = "GET_MONITORS"
	CommandReload       CommandType = "RELOAD"
	CommandSaveNote     CommandType = "SAVE_NOTE"
	CommandLoadNote     CommandType = "LOAD_NOTE"
	CommandNoteHistory  CommandType = "NOTE_HISTORY"
	CommandLoadSnapshot CommandType = "LOAD_SNAPSHOT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	State         string `json:"state"`
	InFlight      bool   `json:"in_flight"`
	Window        uint32 `json:"window"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// PositionData represents the data returned by POSITION
type PositionData struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DebugData represents the data returned by DEBUG_INFO
type DebugData struct {
	Report string `json:"report"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// SaveNotePayload represents the payload for SAVE_NOTE
type SaveNotePayload struct {
	Content string `json:"content"`
}

// NoteData represents note content returned by LOAD_NOTE and LOAD_SNAPSHOT
type NoteData struct {
	Content string `json:"content"`
}

// NoteHistoryPayload represents the payload for NOTE_HISTORY
type NoteHistoryPayload struct {
	Limit int `json:"limit,omitempty"`
}

// SnapshotInfo describes one history snapshot
type SnapshotInfo struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
	Size int64     `json:"size"`
}

// NoteHistoryData represents the data returned by NOTE_HISTORY
type NoteHistoryData struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
}

// LoadSnapshotPayload represents the payload for LOAD_SNAPSHOT
type LoadSnapshotPayload struct {
	ID string `json:"id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
