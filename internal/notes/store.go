// Package notes persists the scratchpad content and its save history.
package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/diskv/v3"
	"golang.org/x/sync/errgroup"
)

const (
	currentKey     = "current"
	snapshotPrefix = "snapshot"

	defaultMaxSnapshots = 50
)

// Config controls where notes live and how save history behaves.
type Config struct {
	Dir            string
	SnapshotOnSave bool
	MaxSnapshots   int
}

// Snapshot is one point-in-time copy of the note, written on save.
type Snapshot struct {
	ID   ulid.ULID
	Time time.Time
	Size int64
}

// Store persists the note under a diskv tree: the live content at
// <dir>/current, snapshots at <dir>/snapshot/<ulid>.
type Store struct {
	d              *diskv.Diskv
	basePath       string
	snapshotOnSave bool
	maxSnapshots   int
}

// NewStore opens (creating if needed) a note store rooted at cfg.Dir.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("notes: directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("notes: ensure directory: %w", err)
	}

	maxSnapshots := cfg.MaxSnapshots
	if maxSnapshots <= 0 {
		maxSnapshots = defaultMaxSnapshots
	}

	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          cfg.Dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath:       cfg.Dir,
		snapshotOnSave: cfg.SnapshotOnSave,
		maxSnapshots:   maxSnapshots,
	}, nil
}

// Load returns the current note content. A note that has never been saved
// reads as empty, not as an error.
func (s *Store) Load() (string, error) {
	data, err := s.d.Read(currentKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("notes: read current: %w", err)
	}
	return string(data), nil
}

// Save writes the note content, records a snapshot when enabled, and prunes
// history beyond the configured limit.
func (s *Store) Save(content string) error {
	if err := s.d.Write(currentKey, []byte(content)); err != nil {
		return fmt.Errorf("notes: write current: %w", err)
	}

	if !s.snapshotOnSave {
		return nil
	}

	id := ulid.Make()
	if err := s.d.Write(snapshotKey(id), []byte(content)); err != nil {
		return fmt.Errorf("notes: write snapshot: %w", err)
	}
	return s.prune()
}

// History returns snapshots newest first, at most limit entries (all of
// them when limit <= 0).
func (s *Store) History(limit int) ([]Snapshot, error) {
	ids := s.snapshotIDs()

	// ULIDs sort lexically by creation time, so newest first is a reverse.
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) > 0
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	// Sizes need a stat per snapshot, so gather them concurrently. A
	// snapshot pruned between listing and stat reports size zero.
	snapshots := make([]Snapshot, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			snap := Snapshot{ID: id, Time: ulid.Time(id.Time())}
			if info, err := os.Stat(s.snapshotPath(id)); err == nil {
				snap.Size = info.Size()
			}
			snapshots[i] = snap
			return nil
		})
	}
	_ = g.Wait() // individual goroutines never return errors

	return snapshots, nil
}

// LoadSnapshot returns the content of one snapshot by its id.
func (s *Store) LoadSnapshot(id string) (string, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return "", fmt.Errorf("notes: invalid snapshot id %q: %w", id, err)
	}

	data, err := s.d.Read(snapshotKey(parsed))
	if err != nil {
		return "", fmt.Errorf("notes: read snapshot %s: %w", parsed, err)
	}
	return string(data), nil
}

// Path returns the filesystem path of the live note file.
func (s *Store) Path() string {
	return filepath.Join(s.basePath, currentKey)
}

// prune erases the oldest snapshots beyond maxSnapshots.
func (s *Store) prune() error {
	ids := s.snapshotIDs()
	if len(ids) <= s.maxSnapshots {
		return nil
	}

	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Compare(ids[j]) < 0
	})
	for _, id := range ids[:len(ids)-s.maxSnapshots] {
		if err := s.d.Erase(snapshotKey(id)); err != nil {
			return fmt.Errorf("notes: prune snapshot %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) snapshotIDs() []ulid.ULID {
	var ids []ulid.ULID
	for key := range s.d.Keys(nil) {
		rest, ok := strings.CutPrefix(key, snapshotPrefix+"-")
		if !ok {
			continue
		}
		id, err := ulid.ParseStrict(rest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "notes: skipping malformed snapshot %q: %v\n", key, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) snapshotPath(id ulid.ULID) string {
	return filepath.Join(s.basePath, snapshotPrefix, id.String())
}

func snapshotKey(id ulid.ULID) string {
	return snapshotPrefix + "-" + id.String()
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
