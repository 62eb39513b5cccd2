// Package history provides the linear snapshot store behind undo/redo
// navigation, with SHA-256 based staleness detection.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastet/filekitty/internal/tree"
)

// Selection modes recorded in a snapshot.
const (
	ModeAllFiles   = "all"
	ModeSingleFile = "single"
)

// FileMeta is the metadata captured for one file at snapshot time.
type FileMeta struct {
	Path        string     `json:"path"`
	DisplayPath string     `json:"display_path,omitempty"`
	Language    string     `json:"language,omitempty"`
	SizeBytes   int64      `json:"size_bytes,omitempty"`
	ModTime     *time.Time `json:"mod_time,omitempty"`
	Hash        string     `json:"hash"`
}

// Selection records which files and symbols the snapshot covers.
type Selection struct {
	Mode          string   `json:"mode"`
	SelectedFile  string   `json:"selected_file,omitempty"`
	SelectedItems []string `json:"selected_items,omitempty"`
}

// Snapshot is a saved record of a file selection and its rendered
// Markdown output, used for history navigation.
type Snapshot struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Files     []string       `json:"files"`
	FileMeta  []FileMeta     `json:"file_meta,omitempty"`
	Selection Selection      `json:"selection"`
	Tree      *tree.Snapshot `json:"tree_snapshot,omitempty"`
	Output    string         `json:"output,omitempty"`
}

// ValidationError is returned when snapshot validation fails.
type ValidationError struct {
	Fields  []string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// Validate checks that the fields required for storage are present.
func (s *Snapshot) Validate() error {
	var missing []string
	if s.ID == "" {
		missing = append(missing, "id")
	}
	if s.CreatedAt.IsZero() {
		missing = append(missing, "created_at")
	}
	if len(s.Files) == 0 {
		missing = append(missing, "files")
	}
	if s.Selection.Mode == "" {
		missing = append(missing, "selection.mode")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "missing required fields"}
	}
	return nil
}

// Hashes returns the recorded content hash per file path.
func (s *Snapshot) Hashes() map[string]string {
	hashes := make(map[string]string, len(s.FileMeta))
	for _, fm := range s.FileMeta {
		hashes[fm.Path] = fm.Hash
	}
	return hashes
}

// ToJSON serializes the snapshot.
func (s *Snapshot) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing snapshot to JSON: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a snapshot.
func FromJSON(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, errors.New("empty JSON data")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot JSON: %w", err)
	}
	return &snap, nil
}

// sameState reports whether two snapshots record the identical
// selection: same files, same selection, same content hashes.
// Used to skip duplicate saves.
func sameState(a, b *Snapshot) bool {
	if a == nil || b == nil {
		return false
	}
	if len(a.Files) != len(b.Files) {
		return false
	}
	for i := range a.Files {
		if a.Files[i] != b.Files[i] {
			return false
		}
	}
	if a.Selection.Mode != b.Selection.Mode || a.Selection.SelectedFile != b.Selection.SelectedFile {
		return false
	}
	if len(a.Selection.SelectedItems) != len(b.Selection.SelectedItems) {
		return false
	}
	for i := range a.Selection.SelectedItems {
		if a.Selection.SelectedItems[i] != b.Selection.SelectedItems[i] {
			return false
		}
	}
	ah, bh := a.Hashes(), b.Hashes()
	if len(ah) != len(bh) {
		return false
	}
	for path, hash := range ah {
		if bh[path] != hash {
			return false
		}
	}
	return true
}
