// Package clipboard copies rendered output to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/bastet/filekitty/internal/output"
)

// writeAll is a package-level variable so tests can intercept writes
// without touching a real clipboard.
var writeAll = clipboard.WriteAll

// Copy places text on the system clipboard.
func Copy(text string) error {
	if err := writeAll(text); err != nil {
		return output.NewSystemErrorWithCause("failed to copy to clipboard", err)
	}
	return nil
}

// SetWriter replaces the clipboard write function and returns a
// restore function. Test helper.
func SetWriter(fn func(string) error) (restore func()) {
	prev := writeAll
	writeAll = fn
	return func() { writeAll = prev }
}
