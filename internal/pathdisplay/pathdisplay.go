// Package pathdisplay resolves project roots and formats paths for output.
package pathdisplay

import (
	"os"
	"path/filepath"
	"strings"
)

// projectMarkers are files or directories whose presence identifies a
// project root when walking up from the selection's common ancestor.
var projectMarkers = []string{
	"go.mod",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"package.json",
	"node_modules",
	"Cargo.toml",
	".git",
	"pom.xml",
	"build.gradle",
}

// DetectProjectRoot finds the likely project root for a set of files.
// It walks up from the common ancestor of the paths looking for a
// marker file, stopping at the user's home directory or the filesystem
// root. Falls back to the common ancestor when no marker is found.
// Returns "" for an empty selection.
func DetectProjectRoot(files []string) string {
	if len(files) == 0 {
		return ""
	}

	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return ""
		}
		abs = append(abs, p)
	}

	common := commonDir(abs)
	if common == "" {
		return ""
	}

	home, _ := os.UserHomeDir()
	for dir := common; ; dir = filepath.Dir(dir) {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		if dir == home || filepath.Dir(dir) == dir {
			break
		}
	}
	return common
}

// commonDir returns the deepest directory containing all paths.
// File paths contribute their parent directory.
func commonDir(paths []string) string {
	dirOf := func(p string) string {
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			return p
		}
		return filepath.Dir(p)
	}

	common := strings.Split(dirOf(paths[0]), string(filepath.Separator))
	for _, p := range paths[1:] {
		parts := strings.Split(dirOf(p), string(filepath.Separator))
		n := len(common)
		if len(parts) < n {
			n = len(parts)
		}
		i := 0
		for i < n && common[i] == parts[i] {
			i++
		}
		common = common[:i]
		if len(common) == 0 {
			return ""
		}
	}
	joined := filepath.Join(common...)
	if !filepath.IsAbs(joined) {
		joined = string(filepath.Separator) + joined
	}
	return joined
}

// Display formats a path for human and Markdown output.
//
// Paths under the home directory render with a ~ prefix. When the path
// is under a project root that itself lives under home, long root
// prefixes are ellipsized (~/first/…/last/rel/to/root). Paths outside
// home render absolute.
func Display(path, projectRoot string, ellipsis bool) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || !within(abs, home) {
		return abs
	}

	relHome, err := filepath.Rel(home, abs)
	if err != nil {
		return abs
	}
	relHome = filepath.ToSlash(relHome)
	if relHome == "." {
		return "~"
	}

	if projectRoot != "" && within(abs, projectRoot) && within(projectRoot, home) {
		rootRel, rootErr := filepath.Rel(home, projectRoot)
		fileRel, fileErr := filepath.Rel(projectRoot, abs)
		if rootErr == nil && fileErr == nil {
			rootParts := strings.Split(filepath.ToSlash(rootRel), "/")
			root := strings.Join(rootParts, "/")
			if ellipsis && len(rootParts) > 2 {
				root = rootParts[0] + "/…/" + rootParts[len(rootParts)-1]
			}
			if fileRel == "." {
				return "~/" + root
			}
			return "~/" + root + "/" + filepath.ToSlash(fileRel)
		}
	}

	parts := strings.Split(relHome, "/")
	if ellipsis && len(parts) > 5 {
		return "~/" + parts[0] + "/" + parts[1] + "/…/" + parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return "~/" + relHome
}

// within reports whether path is inside (or equal to) dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
