package mcp

import "time"

// ToggleOverlayInput is the input for the toggle_overlay tool.
type ToggleOverlayInput struct{}

// ToggleOverlayOutput is the output for the toggle_overlay tool.
type ToggleOverlayOutput struct {
	State string `json:"state"`
}

// GetOverlayStatusInput is the input for the get_overlay_status tool.
type GetOverlayStatusInput struct{}

// GetOverlayStatusOutput is the output for the get_overlay_status tool.
type GetOverlayStatusOutput struct {
	DaemonRunning bool   `json:"daemon_running"`
	State         string `json:"state"`
	InFlight      bool   `json:"in_flight"`
	Window        uint32 `json:"window"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ForceOverlayTopInput is the input for the force_overlay_top tool.
type ForceOverlayTopInput struct{}

// ForceOverlayTopOutput is the output for the force_overlay_top tool.
type ForceOverlayTopOutput struct {
	State string `json:"state"`
}

// PositionOverlayInput is the input for the position_overlay tool.
type PositionOverlayInput struct{}

// PositionOverlayOutput is the output for the position_overlay tool.
type PositionOverlayOutput struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GetDebugInfoInput is the input for the get_debug_info tool.
type GetDebugInfoInput struct{}

// GetDebugInfoOutput is the output for the get_debug_info tool.
type GetDebugInfoOutput struct {
	Report string `json:"report"`
}

// SaveNoteInput is the input for the save_note tool.
type SaveNoteInput struct {
	Content string `json:"content" jsonschema:"required,Full note content to store. Replaces the current note."`
}

// SaveNoteOutput is the output for the save_note tool.
type SaveNoteOutput struct {
	Saved bool `json:"saved"`
	Bytes int  `json:"bytes"`
}

// LoadNoteInput is the input for the load_note tool.
type LoadNoteInput struct{}

// LoadNoteOutput is the output for the load_note tool.
type LoadNoteOutput struct {
	Content string `json:"content"`
}

// GetNoteHistoryInput is the input for the get_note_history tool.
type GetNoteHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of snapshots to return, newest first (default: all)"`
}

// SnapshotEntry describes one stored note snapshot.
type SnapshotEntry struct {
	ID        string    `json:"id"`
	SavedAt   time.Time `json:"saved_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// GetNoteHistoryOutput is the output for the get_note_history tool.
type GetNoteHistoryOutput struct {
	Snapshots []SnapshotEntry `json:"snapshots"`
}

// GetNoteSnapshotInput is the input for the get_note_snapshot tool.
type GetNoteSnapshotInput struct {
	ID string `json:"id" jsonschema:"required,Snapshot ID from get_note_history"`
}

// GetNoteSnapshotOutput is the output for the get_note_snapshot tool.
type GetNoteSnapshotOutput struct {
	Content string `json:"content"`
}
