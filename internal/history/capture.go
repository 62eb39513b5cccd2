package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/bastet/filekitty/internal/pathdisplay"
	"github.com/bastet/filekitty/internal/textfile"
	"github.com/bastet/filekitty/internal/tree"
)

// Capture builds a snapshot of the given selection, hashing each text
// file so staleness can be detected later. Non-text files get metadata
// but no hash and are therefore excluded from staleness checks.
func Capture(files []string, sel Selection, treeSnap *tree.Snapshot, rendered, projectRoot string) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Files:     files,
		Selection: sel,
		Tree:      treeSnap,
		Output:    rendered,
	}

	for _, path := range files {
		fm := FileMeta{
			Path:        path,
			DisplayPath: pathdisplay.Display(path, projectRoot, true),
			Language:    textfile.DetectLanguage(path),
		}
		if info, err := textfile.Stat(path); err == nil {
			fm.SizeBytes = info.Size
			mt := info.ModTime
			fm.ModTime = &mt
		}
		if textfile.IsText(path) {
			fm.Hash = HashFile(path)
		}
		snap.FileMeta = append(snap.FileMeta, fm)
	}
	return snap
}
