package history

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
)

// Hash sentinels stored in place of a digest when a file cannot be
// hashed. They are compared verbatim during staleness checks, so a
// file that was already missing at capture time does not read as
// modified later.
const (
	HashMissing = "FILE_MISSING"
	HashError   = "HASH_ERROR"
)

// Staleness classifications returned by Store.Stale.
const (
	StaleMissing  = "missing"
	StaleError    = "error"
	StaleModified = "modified"
)

// HashFile returns the SHA-256 hex digest of a file's content, or a
// sentinel (HashMissing, HashError) when the file cannot be read.
func HashFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return HashMissing
		}
		return HashError
	}
	defer f.Close() //nolint:errcheck // read-only handle

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return HashError
	}
	return hex.EncodeToString(h.Sum(nil))
}
