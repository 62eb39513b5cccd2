package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestCombined(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.go":   "package main\n\nfunc main() {}\n",
		"notes.txt": "remember the milk\n",
	})

	res, err := Combined(context.Background(), []string{
		filepath.Join(dir, "main.go"),
		filepath.Join(dir, "notes.txt"),
	}, Options{ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	for _, want := range []string{
		"# ", "main.go",
		"**Last modified: ",
		"```go\npackage main\n\nfunc main() {}\n```",
		"```\nremember the milk\n```",
	} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("output missing %q:\n%s", want, res.Output)
		}
	}

	// RFC 3339 is the default timestamp format.
	if !strings.Contains(res.Output, "T") || strings.Contains(res.Output, "Last modified: ?") {
		t.Errorf("expected RFC 3339 modified lines:\n%s", res.Output)
	}
}

func TestCombined_SkipsBinaryAndCollectsMissing(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.txt": "fine\n",
	})
	binPath := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(binPath, []byte{0x00, 0x01}, 0o600); err != nil {
		t.Fatalf("failed to write binary: %v", err)
	}

	res, err := Combined(context.Background(), []string{
		filepath.Join(dir, "ok.txt"),
		binPath,
	}, Options{ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}

	if !strings.Contains(res.Output, "fine") {
		t.Errorf("output missing text file:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "blob.bin") {
		t.Errorf("binary file should be skipped silently:\n%s", res.Output)
	}
}

func TestCombined_EmptySelection(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(binPath, []byte{0x00}, 0o600); err != nil {
		t.Fatalf("failed to write binary: %v", err)
	}

	res, err := Combined(context.Background(), []string{binPath}, Options{ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	if !strings.Contains(res.Output, "# No text files selected or available to display content.") {
		t.Errorf("output = %q", res.Output)
	}
}

func TestCombined_SingleFileMode(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "alpha\n",
		"b.txt": "beta\n",
	})
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")

	t.Run("renders only the selected file", func(t *testing.T) {
		res, err := Combined(context.Background(), []string{aPath, bPath},
			Options{SingleFile: aPath, ProjectRoot: dir})
		if err != nil {
			t.Fatalf("Combined failed: %v", err)
		}
		if !strings.Contains(res.Output, "alpha") || strings.Contains(res.Output, "beta") {
			t.Errorf("single-file output wrong:\n%s", res.Output)
		}
	})

	t.Run("rejects a file outside the selection", func(t *testing.T) {
		_, err := Combined(context.Background(), []string{aPath},
			Options{SingleFile: bPath, ProjectRoot: dir})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "not in the selection") {
			t.Errorf("error = %q", err.Error())
		}
	})
}

func TestCombined_PythonExtraction(t *testing.T) {
	source := `import json


def keep(x):
    return x


def drop(y):
    return y
`
	dir := writeFiles(t, map[string]string{
		"app.py":   source,
		"other.py": "import os\n\nVALUE = 1\n",
	})
	appPath := filepath.Join(dir, "app.py")
	otherPath := filepath.Join(dir, "other.py")

	res, err := Combined(context.Background(), []string{appPath, otherPath},
		Options{SelectedItems: []string{"keep"}, ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	if !strings.Contains(res.Output, "# Selected Classes/Functions:") {
		t.Errorf("output missing extraction header:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "def keep(x):") {
		t.Errorf("output missing selected function:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "def drop(y):") {
		t.Errorf("output should omit unselected function:\n%s", res.Output)
	}
	// A file defining none of the selected symbols renders whole.
	if !strings.Contains(res.Output, "VALUE = 1") {
		t.Errorf("output missing whole-file fallback:\n%s", res.Output)
	}
}

func TestCombined_PythonSyntaxErrorIsCollected(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.py":     "def fine():\n    pass\n",
		"broken.py": "def broken(:\n",
	})

	res, err := Combined(context.Background(), []string{
		filepath.Join(dir, "ok.py"),
		filepath.Join(dir, "broken.py"),
	}, Options{SelectedItems: []string{"fine"}, ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}

	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want one syntax error", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "syntax error") {
		t.Errorf("error = %q", res.Errors[0])
	}
	if !strings.Contains(res.Output, "def fine():") {
		t.Errorf("good file should still render:\n%s", res.Output)
	}
}

func TestCombined_HumanTime(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "x\n"})

	res, err := Combined(context.Background(), []string{filepath.Join(dir, "a.txt")},
		Options{HumanTime: true, ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	// Human format spells the month; RFC 3339 never does.
	if !strings.Contains(res.Output, "**Last modified: ") {
		t.Fatalf("missing modified line:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "Last modified: 20") {
		t.Errorf("human time should not start with the year:\n%s", res.Output)
	}
}

func TestCombined_TreeBlockPrepended(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "x\n"})
	treeBlock := "# Folder Tree of ~/proj\n\n```text\nproj/\n└── a.txt\n```\n"

	res, err := Combined(context.Background(), []string{filepath.Join(dir, "a.txt")},
		Options{TreeBlock: treeBlock, ProjectRoot: dir})
	if err != nil {
		t.Fatalf("Combined failed: %v", err)
	}
	if !strings.HasPrefix(res.Output, "# Folder Tree of ~/proj\n") {
		t.Errorf("tree block should lead the document:\n%s", res.Output)
	}
	if !strings.Contains(res.Output, "```\n\n# ") {
		t.Errorf("tree block should be separated from the body:\n%s", res.Output)
	}
}
