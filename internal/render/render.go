// Package render builds the combined Markdown document from a file
// selection, the output that gets copied to the clipboard.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/pathdisplay"
	"github.com/bastet/filekitty/internal/pysym"
	"github.com/bastet/filekitty/internal/textfile"
)

// humanTimeFormat is the display format used with --human-time.
// The default is RFC 3339, which LLMs parse reliably.
const humanTimeFormat = "Jan 02, 2006 3:04 PM MST"

// Options controls how the combined document is built.
type Options struct {
	// SingleFile restricts output to one file from the selection.
	SingleFile string
	// SelectedItems are top-level Python classes/functions to extract
	// instead of whole file contents.
	SelectedItems []string
	// HumanTime switches the modified line from RFC 3339 to a
	// human-readable format.
	HumanTime bool
	// ProjectRoot abbreviates display paths; detected when empty.
	ProjectRoot string
	// TreeBlock, when non-empty, is prepended to the document.
	TreeBlock string
}

// Result is the rendered document plus per-file processing errors.
// Errors are accumulated, not fatal: a selection with one unreadable
// file still renders the rest.
type Result struct {
	Output      string
	ProjectRoot string
	Errors      []string
}

// Combined renders the Markdown document for a selection of files.
// Non-text files are skipped. Each file renders as a heading with its
// display path, a modified-time line, and a fenced code block.
func Combined(ctx context.Context, files []string, opts Options) (*Result, error) {
	root := opts.ProjectRoot
	if root == "" {
		root = pathdisplay.DetectProjectRoot(files)
	}

	process, err := filesToProcess(files, opts.SingleFile)
	if err != nil {
		return nil, err
	}

	res := &Result{ProjectRoot: root}
	if len(process) == 0 {
		res.Output = withTree(opts.TreeBlock, "# No text files selected or available to display content.\n")
		return res, nil
	}

	var parser *pysym.Parser
	var b strings.Builder

	for _, path := range process {
		display := pathdisplay.Display(path, root, true)
		modified := modifiedLine(path, opts.HumanTime)

		if isPython(path) && len(opts.SelectedItems) > 0 {
			if parser == nil {
				parser = pysym.NewParser()
			}
			block, renderErr := pythonBlock(ctx, parser, path, display, modified, opts)
			if renderErr != nil {
				res.Errors = append(res.Errors, display+": "+renderErr.Error())
				continue
			}
			if block != "" {
				b.WriteString(block)
				b.WriteString("\n\n")
			}
			continue
		}

		content, readErr := textfile.Read(path)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				res.Errors = append(res.Errors, display+": file not found")
			} else {
				res.Errors = append(res.Errors, display+": "+readErr.Error())
			}
			continue
		}
		writeFileBlock(&b, display, modified, textfile.DetectLanguage(path), content)
	}

	res.Output = withTree(opts.TreeBlock, strings.TrimSpace(b.String())+"\n")
	return res, nil
}

// filesToProcess applies the selection mode and text filtering.
func filesToProcess(files []string, singleFile string) ([]string, error) {
	if singleFile != "" {
		found := false
		for _, f := range files {
			if f == singleFile {
				found = true
				break
			}
		}
		if !found {
			return nil, output.NewUserError("selected file is not in the selection: " + singleFile)
		}
		if !textfile.IsText(singleFile) {
			return nil, output.NewUserError("selected file is not a text file: " + singleFile)
		}
		return []string{singleFile}, nil
	}

	var process []string
	for _, f := range files {
		if textfile.IsText(f) {
			process = append(process, f)
		}
	}
	return process, nil
}

// pythonBlock renders a Python file, extracting the selected symbols
// that exist in this file, or the whole content when none apply.
func pythonBlock(ctx context.Context, parser *pysym.Parser, path, display, modified string, opts Options) (string, error) {
	content, err := textfile.Read(path)
	if err != nil {
		return "", err
	}

	syms, err := parser.Parse(ctx, path, []byte(content))
	if err != nil {
		return "", err
	}

	var relevant []string
	for _, item := range opts.SelectedItems {
		if syms.Has(item) {
			relevant = append(relevant, item)
		}
	}

	// Single-file mode always filters; all-files mode filters only the
	// files that actually define a selected symbol.
	filter := opts.SingleFile != "" || len(relevant) > 0
	if !filter {
		var b strings.Builder
		writeFileBlock(&b, display, modified, "python", content)
		return strings.TrimRight(b.String(), "\n"), nil
	}
	if len(relevant) == 0 {
		if opts.SingleFile != "" {
			// Extract reports which selections were not found.
			relevant = opts.SelectedItems
		} else {
			// Selected symbols exist nowhere in this file; skip it.
			return "", nil
		}
	}

	extracted, err := parser.Extract(ctx, path, []byte(content), relevant, display, modified)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(extracted, "\n"), nil
}

// writeFileBlock appends one file's Markdown block.
func writeFileBlock(b *strings.Builder, display, modified, lang, content string) {
	fmt.Fprintf(b, "# %s\n%s\n\n```%s\n%s\n```\n\n", display, modified, lang, strings.TrimSpace(content))
}

// modifiedLine formats the file's modification time for the document.
func modifiedLine(path string, humanTime bool) string {
	info, err := textfile.Stat(path)
	if err != nil {
		return "**Last modified: ?**"
	}
	ts := info.ModTime
	if humanTime {
		return "**Last modified: " + ts.Format(humanTimeFormat) + "**"
	}
	return "**Last modified: " + ts.Format(time.RFC3339) + "**"
}

// withTree prepends the folder tree block when present.
func withTree(treeBlock, body string) string {
	if treeBlock == "" {
		return body
	}
	return strings.TrimRight(treeBlock, "\n") + "\n\n" + body
}

// isPython reports whether the path looks like a Python source file.
func isPython(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".py") || strings.HasSuffix(lower, ".pyw")
}
