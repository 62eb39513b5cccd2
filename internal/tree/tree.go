// Package tree renders a folder tree as a Markdown block for inclusion
// at the top of generated prompt context.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	lgtree "github.com/charmbracelet/lipgloss/tree"
	"github.com/gobwas/glob"

	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/pathdisplay"
)

// DefaultMaxDepth bounds recursion when no depth is configured.
const DefaultMaxDepth = 5

// DefaultIgnore is the default ignore pattern, matching build artifacts,
// VCS metadata, and editor droppings.
const DefaultIgnore = "__pycache__|.git|.DS_Store|.idea|.ruff_cache|.venv|.pytest_cache|tmp|run_history|" +
	"artifacts|__init__.py|.pre-commit-config.yaml|.env|.env.sample|.envrc|CLAUDE.md"

// Snapshot captures a rendered folder tree so history entries can
// reproduce it without re-walking the filesystem.
type Snapshot struct {
	BasePath        string `json:"base_path"`
	BasePathDisplay string `json:"base_path_display"`
	IgnoreRegex     string `json:"ignore_regex"`
	Rendered        string `json:"rendered"`
}

// Options controls tree generation.
type Options struct {
	// IgnoreRegex filters out any path matching the pattern.
	// Empty means DefaultIgnore.
	IgnoreRegex string
	// IgnoreGlobs filters out base names matching any of the globs.
	IgnoreGlobs []string
	// MaxDepth bounds recursion; 0 means DefaultMaxDepth.
	MaxDepth int
	// ProjectRoot is used for display-path abbreviation.
	ProjectRoot string
}

// Generate walks basePath and returns the Markdown tree block plus a
// snapshot of the inputs that produced it.
func Generate(basePath string, opts Options) (string, *Snapshot, error) {
	base, err := filepath.Abs(basePath)
	if err != nil {
		return "", nil, output.NewUserError("invalid base path: " + basePath)
	}
	st, err := os.Stat(base)
	if err != nil || !st.IsDir() {
		return "", nil, output.NewUserError("base path is not a directory: " + base)
	}

	ignoreRegex := opts.IgnoreRegex
	if ignoreRegex == "" {
		ignoreRegex = DefaultIgnore
	}
	ignore, err := regexp.Compile(ignoreRegex)
	if err != nil {
		return "", nil, output.NewUserError("invalid ignore pattern: " + err.Error())
	}

	globs := make([]glob.Glob, 0, len(opts.IgnoreGlobs))
	for _, pattern := range opts.IgnoreGlobs {
		g, globErr := glob.Compile(pattern)
		if globErr != nil {
			return "", nil, output.NewUserError("invalid ignore glob: " + pattern)
		}
		globs = append(globs, g)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	root := lgtree.Root(filepath.Base(base) + "/")
	addNodes(root, base, base, ignore, globs, 0, maxDepth)

	display := pathdisplay.Display(base, opts.ProjectRoot, true)
	rendered := root.String()
	block := fmt.Sprintf("# Folder Tree of %s\n\n```text\n%s\n```\n", display, strings.TrimRight(rendered, "\n"))

	return block, &Snapshot{
		BasePath:        base,
		BasePathDisplay: display,
		IgnoreRegex:     ignoreRegex,
		Rendered:        block,
	}, nil
}

// addNodes recursively fills the lipgloss tree. Directories sort before
// files, names compare case-insensitively, and ignored entries are
// skipped. The ignore regex matches against paths relative to base so
// that parent directory names never trigger it. Unreadable directories
// render a single placeholder leaf.
func addNodes(node *lgtree.Tree, base, dir string, ignore *regexp.Regexp, globs []glob.Glob, depth, maxDepth int) {
	if depth >= maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		node.Child("[permission denied]")
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		rel, relErr := filepath.Rel(base, full)
		if relErr != nil {
			rel = entry.Name()
		}
		if ignore.MatchString(filepath.ToSlash(rel)) || matchesAny(globs, entry.Name()) {
			continue
		}
		if entry.IsDir() {
			child := lgtree.Root(entry.Name() + "/")
			addNodes(child, base, full, ignore, globs, depth+1, maxDepth)
			node.Child(child)
			continue
		}
		node.Child(entry.Name())
	}
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
