package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/hoverpad/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Toggle asks the daemon to toggle the overlay window.
func (c *Client) Toggle() error {
	_, err := c.sendRequest(&Request{Command: CommandToggle})
	return err
}

// ForceTop asks the daemon to show the window and re-assert the overlay
// profile.
func (c *Client) ForceTop() error {
	_, err := c.sendRequest(&Request{Command: CommandForceTop})
	return err
}

// Position asks the daemon to move the window to the top-right corner and
// returns the position it moved to.
func (c *Client) Position() (*PositionData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandPosition})
	if err != nil {
		return nil, err
	}

	var pos PositionData
	if err := json.Unmarshal(resp.Data, &pos); err != nil {
		return nil, fmt.Errorf("failed to parse position data: %w", err)
	}
	return &pos, nil
}

// EnsureTop asks the daemon to re-assert the overlay profile without
// changing visibility.
func (c *Client) EnsureTop() error {
	_, err := c.sendRequest(&Request{Command: CommandEnsureTop})
	return err
}

// DebugInfo retrieves the daemon's window state report.
func (c *Client) DebugInfo() (string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandDebugInfo})
	if err != nil {
		return "", err
	}

	var data DebugData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse debug data: %w", err)
	}
	return data.Report, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors})
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &monitors, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// SaveNote stores the note content through the daemon.
func (c *Client) SaveNote(content string) error {
	payload, err := json.Marshal(SaveNotePayload{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal save payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandSaveNote, Payload: payload})
	return err
}

// LoadNote retrieves the current note content.
func (c *Client) LoadNote() (string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandLoadNote})
	if err != nil {
		return "", err
	}

	var data NoteData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse note data: %w", err)
	}
	return data.Content, nil
}

// NoteHistory retrieves snapshot metadata, newest first.
func (c *Client) NoteHistory(limit int) ([]SnapshotInfo, error) {
	payload, err := json.Marshal(NoteHistoryPayload{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandNoteHistory, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data NoteHistoryData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse history data: %w", err)
	}
	return data.Snapshots, nil
}

// LoadSnapshot retrieves the content of one snapshot by id.
func (c *Client) LoadSnapshot(id string) (string, error) {
	payload, err := json.Marshal(LoadSnapshotPayload{ID: id})
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandLoadSnapshot, Payload: payload})
	if err != nil {
		return "", err
	}

	var data NoteData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse note data: %w", err)
	}
	return data.Content, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
