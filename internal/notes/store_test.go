package notes

import (
	"testing"
)

func newTestStore(t *testing.T, snapshots bool, maxSnapshots int) *Store {
	t.Helper()
	s, err := NewStore(Config{
		Dir:            t.TempDir(),
		SnapshotOnSave: snapshots,
		MaxSnapshots:   maxSnapshots,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestStore_LoadMissingReturnsEmpty(t *testing.T) {
	s := newTestStore(t, false, 0)

	content, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Fatalf("expected empty content, got %q", content)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, false, 0)

	if err := s.Save("remember the milk\n"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	content, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if content != "remember the milk\n" {
		t.Fatalf("expected saved content back, got %q", content)
	}

	// Overwrite wins.
	if err := s.Save("second version"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	content, err = s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if content != "second version" {
		t.Fatalf("expected second version, got %q", content)
	}
}

func TestStore_SnapshotsRecordHistory(t *testing.T) {
	s := newTestStore(t, true, 0)

	for _, content := range []string{"one", "two", "three"} {
		if err := s.Save(content); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	history, err := s.History(0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(history))
	}

	// Newest first: the latest snapshot holds the latest content.
	content, err := s.LoadSnapshot(history[0].ID.String())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if content != "three" {
		t.Fatalf("expected newest snapshot to hold %q, got %q", "three", content)
	}

	oldest, err := s.LoadSnapshot(history[len(history)-1].ID.String())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if oldest != "one" {
		t.Fatalf("expected oldest snapshot to hold %q, got %q", "one", oldest)
	}
}

func TestStore_HistoryLimit(t *testing.T) {
	s := newTestStore(t, true, 0)

	for i := 0; i < 5; i++ {
		if err := s.Save("v"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	history, err := s.History(2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots with limit, got %d", len(history))
	}
}

func TestStore_PruneKeepsNewest(t *testing.T) {
	s := newTestStore(t, true, 3)

	for _, content := range []string{"a", "b", "c", "d", "e"} {
		if err := s.Save(content); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	history, err := s.History(0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected history pruned to 3, got %d", len(history))
	}

	newest, err := s.LoadSnapshot(history[0].ID.String())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if newest != "e" {
		t.Fatalf("expected newest survivor %q, got %q", "e", newest)
	}
	oldest, err := s.LoadSnapshot(history[len(history)-1].ID.String())
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if oldest != "c" {
		t.Fatalf("expected oldest survivor %q, got %q", "c", oldest)
	}
}

func TestStore_SnapshotsDisabled(t *testing.T) {
	s := newTestStore(t, false, 0)

	if err := s.Save("no history"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	history, err := s.History(0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no snapshots, got %d", len(history))
	}
}

func TestStore_LoadSnapshotRejectsBadID(t *testing.T) {
	s := newTestStore(t, true, 0)

	if _, err := s.LoadSnapshot("not-a-ulid"); err == nil {
		t.Fatalf("expected error for malformed snapshot id")
	}
}
