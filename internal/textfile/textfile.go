// Package textfile probes and reads the files that make up a selection.
package textfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// probeSize is the number of leading bytes inspected by IsText.
const probeSize = 1024

// IsText reports whether the file at path is likely a text file.
// A file is considered binary if its leading bytes contain a NUL byte
// or are not valid UTF-8. Unreadable files are treated as non-text.
func IsText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck // read-only handle

	buf := make([]byte, probeSize)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	chunk := buf[:n]

	if bytes.IndexByte(chunk, 0) >= 0 {
		return false
	}
	return validUTF8Prefix(chunk)
}

// validUTF8Prefix reports whether chunk is valid UTF-8, allowing a
// single rune clipped at the end by the probe boundary.
func validUTF8Prefix(chunk []byte) bool {
	for len(chunk) > 0 {
		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size == 1 {
			// A truncated rune at the very end of the probe is fine.
			if len(chunk) < utf8.UTFMax && utf8.RuneStart(chunk[0]) {
				return true
			}
			return false
		}
		chunk = chunk[size:]
	}
	return true
}

// Read returns the file content as a string. Content that is not valid
// UTF-8 is decoded as Latin-1 so that every byte maps to a rune, which
// mirrors the permissive reading the selection workflow expects.
// os.ErrNotExist is propagated unchanged so callers can classify it.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("reading file %s: %w", path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the Unicode code point of the same value.
func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// languages maps file extensions to Markdown fence language identifiers.
var languages = map[string]string{
	".py":         "python",
	".pyw":        "python",
	".js":         "javascript",
	".ts":         "typescript",
	".tsx":        "typescript",
	".java":       "java",
	".cpp":        "cpp",
	".hpp":        "cpp",
	".c":          "c",
	".h":          "c",
	".cs":         "csharp",
	".html":       "html",
	".css":        "css",
	".json":       "json",
	".xml":        "xml",
	".md":         "markdown",
	".sh":         "bash",
	".rb":         "ruby",
	".php":        "php",
	".go":         "go",
	".rs":         "rust",
	".swift":      "swift",
	".kt":         "kotlin",
	".sql":        "sql",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".ini":        "ini",
	".cfg":        "ini",
	".dockerfile": "dockerfile",
	".tf":         "terraform",
	".log":        "log",
	".txt":        "",
}

// DetectLanguage returns the Markdown code fence language for a file,
// based on its extension. Unknown extensions map to an unlabelled fence.
func DetectLanguage(path string) string {
	return languages[strings.ToLower(filepath.Ext(path))]
}

// Info holds the filesystem metadata captured for a snapshot.
type Info struct {
	Size    int64
	ModTime time.Time
}

// Stat returns size and modification time for a file.
func Stat(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: st.Size(), ModTime: st.ModTime()}, nil
}
