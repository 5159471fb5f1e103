package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleToggleOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleOverlayInput) (*mcpsdk.CallToolResult, ToggleOverlayOutput, error) {
	if err := s.client.Toggle(); err != nil {
		return nil, ToggleOverlayOutput{}, err
	}

	// The toggle sequence completes in the background; report where the
	// daemon is right now.
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ToggleOverlayOutput{}, err
	}

	return nil, ToggleOverlayOutput{State: status.State}, nil
}

func (s *Server) handleGetOverlayStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args GetOverlayStatusInput) (*mcpsdk.CallToolResult, GetOverlayStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetOverlayStatusOutput{}, err
	}

	return nil, GetOverlayStatusOutput{
		DaemonRunning: status.DaemonRunning,
		State:         status.State,
		InFlight:      status.InFlight,
		Window:        status.Window,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleForceOverlayTop(_ context.Context, _ *mcpsdk.CallToolRequest, args ForceOverlayTopInput) (*mcpsdk.CallToolResult, ForceOverlayTopOutput, error) {
	if err := s.client.ForceTop(); err != nil {
		return nil, ForceOverlayTopOutput{}, err
	}

	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ForceOverlayTopOutput{}, err
	}

	return nil, ForceOverlayTopOutput{State: status.State}, nil
}

func (s *Server) handlePositionOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, args PositionOverlayInput) (*mcpsdk.CallToolResult, PositionOverlayOutput, error) {
	pos, err := s.client.Position()
	if err != nil {
		return nil, PositionOverlayOutput{}, err
	}

	return nil, PositionOverlayOutput{X: pos.X, Y: pos.Y}, nil
}

func (s *Server) handleGetDebugInfo(_ context.Context, _ *mcpsdk.CallToolRequest, args GetDebugInfoInput) (*mcpsdk.CallToolResult, GetDebugInfoOutput, error) {
	report, err := s.client.DebugInfo()
	if err != nil {
		return nil, GetDebugInfoOutput{}, err
	}

	return nil, GetDebugInfoOutput{Report: report}, nil
}

func (s *Server) handleSaveNote(_ context.Context, _ *mcpsdk.CallToolRequest, args SaveNoteInput) (*mcpsdk.CallToolResult, SaveNoteOutput, error) {
	if err := s.client.SaveNote(args.Content); err != nil {
		return nil, SaveNoteOutput{}, err
	}

	return nil, SaveNoteOutput{Saved: true, Bytes: len(args.Content)}, nil
}

func (s *Server) handleLoadNote(_ context.Context, _ *mcpsdk.CallToolRequest, args LoadNoteInput) (*mcpsdk.CallToolResult, LoadNoteOutput, error) {
	content, err := s.client.LoadNote()
	if err != nil {
		return nil, LoadNoteOutput{}, err
	}

	return nil, LoadNoteOutput{Content: content}, nil
}

func (s *Server) handleGetNoteHistory(_ context.Context, _ *mcpsdk.CallToolRequest, args GetNoteHistoryInput) (*mcpsdk.CallToolResult, GetNoteHistoryOutput, error) {
	snapshots, err := s.client.NoteHistory(args.Limit)
	if err != nil {
		return nil, GetNoteHistoryOutput{}, err
	}

	entries := make([]SnapshotEntry, 0, len(snapshots))
	for _, snap := range snapshots {
		entries = append(entries, SnapshotEntry{
			ID:        snap.ID,
			SavedAt:   snap.Time,
			SizeBytes: snap.Size,
		})
	}

	return nil, GetNoteHistoryOutput{Snapshots: entries}, nil
}

func (s *Server) handleGetNoteSnapshot(_ context.Context, _ *mcpsdk.CallToolRequest, args GetNoteSnapshotInput) (*mcpsdk.CallToolResult, GetNoteSnapshotOutput, error) {
	content, err := s.client.LoadSnapshot(args.ID)
	if err != nil {
		return nil, GetNoteSnapshotOutput{}, err
	}

	return nil, GetNoteSnapshotOutput{Content: content}, nil
}
