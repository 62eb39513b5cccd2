package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bastet/filekitty/internal/output"
)

// DirName is the directory created under the history base path.
const DirName = "FileKittyHistory"

// EnvHistoryHome overrides the history base path when set.
const EnvHistoryHome = "FILEKITTY_HISTORY_HOME"

const (
	snapshotPrefix = "state_"
	cursorFile     = "cursor"
)

// ErrNoSnapshots is returned when the history contains no snapshots.
var ErrNoSnapshots = errors.New("no history snapshots found")

// ErrDuplicateState is returned by Save when the snapshot records the
// same selection and content hashes as the current one. The save is
// skipped; callers usually treat this as success.
var ErrDuplicateState = errors.New("state identical to previous snapshot")

// ListStats counts what a directory scan found.
type ListStats struct {
	Total   int // state files found
	Parsed  int // successfully parsed snapshots
	Skipped int // unreadable or corrupt files
}

// DefaultDir resolves the history directory.
//
// Resolution of the base path:
//   - $FILEKITTY_HISTORY_HOME if set
//   - basePath argument if non-empty and an existing directory
//   - the user cache directory
//
// DirName is appended to whichever base wins.
func DefaultDir(basePath string) (string, error) {
	if env := os.Getenv(EnvHistoryHome); env != "" {
		return filepath.Join(env, DirName), nil
	}
	if basePath != "" {
		if st, err := os.Stat(basePath); err == nil && st.IsDir() {
			return filepath.Join(basePath, DirName), nil
		}
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", output.NewSystemErrorWithCause("cannot resolve history directory", err)
	}
	return filepath.Join(cache, DirName), nil
}

// Store provides file-based storage for history snapshots. Each
// snapshot is one JSON file (state_<id>.json); a cursor file records
// the current position in the linear stack.
type Store struct {
	dir      string
	hashFile func(string) string
}

// NewStore creates a Store rooted at dir. The directory is created on
// first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir, hashFile: HashFile}
}

// Dir returns the storage directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) snapshotPath(id string) string {
	return filepath.Join(s.dir, snapshotPrefix+id+".json")
}

// Save writes a snapshot and advances the cursor to it.
//
// Saving while the cursor is behind the tip truncates the forward
// snapshots (their files are deleted), matching linear undo semantics.
// Saving a state identical to the current one returns
// ErrDuplicateState without writing anything.
func (s *Store) Save(snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return output.NewUserError(err.Error())
	}

	current, _ := s.Current()
	if sameState(current, snap) {
		return ErrDuplicateState
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to create history directory", err)
	}

	if current != nil {
		if err := s.truncateAfter(current.ID); err != nil {
			return err
		}
	}

	data, err := snap.ToJSON()
	if err != nil {
		return output.NewSystemError("failed to serialize snapshot: " + err.Error())
	}
	if err := atomicWrite(s.snapshotPath(snap.ID), data); err != nil {
		return output.NewSystemErrorWithCause("failed to write snapshot", err)
	}
	return s.setCursor(snap.ID)
}

// truncateAfter deletes every snapshot newer than the one with id.
func (s *Store) truncateAfter(id string) error {
	snaps, _, err := s.List()
	if err != nil {
		return err
	}
	idx := indexOf(snaps, id)
	if idx < 0 {
		return nil
	}
	for _, snap := range snaps[idx+1:] {
		if err := os.Remove(s.snapshotPath(snap.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return output.NewSystemErrorWithCause("failed to remove forward snapshot "+snap.ID, err)
		}
	}
	return nil
}

// List returns all snapshots ordered oldest to newest, plus scan
// statistics. Corrupt files are skipped. A missing directory yields
// empty results.
func (s *Store) List() ([]*Snapshot, *ListStats, error) {
	stats := &ListStats{}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, stats, nil
		}
		return nil, nil, output.NewSystemErrorWithCause("failed to read history directory", err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		stats.Total++
		data, readErr := os.ReadFile(filepath.Join(s.dir, name))
		if readErr != nil {
			stats.Skipped++
			continue
		}
		snap, parseErr := FromJSON(data)
		if parseErr != nil || snap.ID == "" {
			stats.Skipped++
			continue
		}
		stats.Parsed++
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
		}
		return snaps[i].ID < snaps[j].ID
	})
	return snaps, stats, nil
}

// Get returns the snapshot with the given ID.
func (s *Store) Get(id string) (*Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, output.NewUserError("snapshot not found: " + id)
		}
		return nil, output.NewSystemErrorWithCause("failed to read snapshot "+id, err)
	}
	snap, err := FromJSON(data)
	if err != nil {
		return nil, output.NewUserError("failed to parse snapshot: " + err.Error())
	}
	return snap, nil
}

// Latest returns the newest snapshot, or ErrNoSnapshots.
func (s *Store) Latest() (*Snapshot, error) {
	snaps, _, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}
	return snaps[len(snaps)-1], nil
}

// Current returns the snapshot the cursor points at. A stale or
// missing cursor falls back to the newest snapshot. Returns
// ErrNoSnapshots when the history is empty.
func (s *Store) Current() (*Snapshot, error) {
	id, err := s.cursor()
	if err == nil && id != "" {
		if snap, getErr := s.Get(id); getErr == nil {
			return snap, nil
		}
	}
	return s.Latest()
}

// Back moves the cursor one snapshot older and returns it.
// Returns a conflict error when already at the oldest snapshot.
func (s *Store) Back() (*Snapshot, error) {
	return s.step(-1, "already at oldest snapshot")
}

// Forward moves the cursor one snapshot newer and returns it.
// Returns a conflict error when already at the newest snapshot.
func (s *Store) Forward() (*Snapshot, error) {
	return s.step(1, "already at newest snapshot")
}

func (s *Store) step(delta int, edgeMsg string) (*Snapshot, error) {
	snaps, _, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}

	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	idx := indexOf(snaps, current.ID)
	if idx < 0 {
		// Cursor points at a vanished snapshot; clamp to the tip.
		idx = len(snaps) - 1
	}

	target := idx + delta
	if target < 0 || target >= len(snaps) {
		return nil, output.NewConflictError(edgeMsg)
	}

	snap := snaps[target]
	if err := s.setCursor(snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Stale rehashes the snapshot's files and classifies each changed one
// as StaleMissing, StaleError, or StaleModified. Unchanged files are
// omitted. Files whose stored hash is a sentinel compare against the
// sentinel, so a file missing at capture time is not re-flagged.
func (s *Store) Stale(snap *Snapshot) map[string]string {
	if snap == nil {
		return nil
	}
	stale := make(map[string]string)
	for _, fm := range snap.FileMeta {
		if fm.Hash == "" {
			continue
		}
		current := s.hashFile(fm.Path)
		if current == fm.Hash {
			continue
		}
		switch current {
		case HashMissing:
			stale[fm.Path] = StaleMissing
		case HashError:
			stale[fm.Path] = StaleError
		default:
			stale[fm.Path] = StaleModified
		}
	}
	return stale
}

// Clear deletes all snapshot files and the cursor, removing the
// history directory when it ends up empty.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, output.NewSystemErrorWithCause("failed to read history directory", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		isSnapshot := strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, ".json")
		if !isSnapshot && name != cursorFile {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, output.NewSystemErrorWithCause("failed to remove "+name, err)
		}
		removed++
	}

	// Best-effort removal; non-empty directories are left alone.
	_ = os.Remove(s.dir)
	return removed, nil
}

// --- cursor persistence ---

func (s *Store) cursor() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, cursorFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) setCursor(id string) error {
	if err := atomicWrite(filepath.Join(s.dir, cursorFile), []byte(id+"\n")); err != nil {
		return output.NewSystemErrorWithCause("failed to write history cursor", err)
	}
	return nil
}

func indexOf(snaps []*Snapshot, id string) int {
	for i, snap := range snaps {
		if snap.ID == id {
			return i
		}
	}
	return -1
}

// atomicWrite writes data to path using write-to-temp-then-rename.
// The temp file is created in the same directory as path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
