package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bastet/filekitty/internal/history"
)

// --- Test helpers ---

func makeTestStore(t *testing.T) *history.Store {
	t.Helper()
	return history.NewStore(t.TempDir())
}

func writeSelection(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

// --- Context handler tests ---

func TestHandleContext(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	handler := handleContext()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Output, "alpha") {
		t.Errorf("output missing file content:\n%s", out.Output)
	}
	if out.SnapshotID != "" {
		t.Error("context tool should not record history")
	}
}

func TestHandleContext_EmptyFiles(t *testing.T) {
	handler := handleContext()

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ContextInput{})
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
}

func TestHandleContext_WithTree(t *testing.T) {
	dir, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	handler := handleContext()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{},
		ContextInput{Files: paths, Tree: true, TreeBase: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.Output, "# Folder Tree of ") {
		t.Errorf("output missing tree block:\n%s", out.Output)
	}
}

// --- Capture handler tests ---

func TestHandleCapture(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	store := makeTestStore(t)
	handler := handleCapture(store)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SnapshotID == "" {
		t.Fatal("capture should return a snapshot ID")
	}

	snap, err := store.Get(out.SnapshotID)
	if err != nil {
		t.Fatalf("snapshot not stored: %v", err)
	}
	if snap.Output != out.Output {
		t.Error("stored output should match returned output")
	}
}

func TestHandleCapture_DuplicateStateTolerated(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	store := makeTestStore(t)
	handler := handleCapture(store)

	for i := 0; i < 2; i++ {
		if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths}); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	snaps, _, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots, want 1", len(snaps))
	}
}

// --- Tree handler tests ---

func TestHandleTree(t *testing.T) {
	dir, _ := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	handler := handleTree()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, TreeInput{Base: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Block, "a.txt") {
		t.Errorf("block missing file:\n%s", out.Block)
	}
}

func TestHandleTree_IgnoreGlobs(t *testing.T) {
	dir, _ := writeSelection(t, map[string]string{"a.txt": "alpha\n", "notes.md": "beta\n"})
	handler := handleTree()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{},
		TreeInput{Base: dir, IgnoreGlobs: []string{"*.md"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Block, "a.txt") {
		t.Errorf("block missing a.txt:\n%s", out.Block)
	}
	if strings.Contains(out.Block, "notes.md") {
		t.Errorf("block contains glob-ignored notes.md:\n%s", out.Block)
	}
}

func TestHandleTree_BadBase(t *testing.T) {
	handler := handleTree()

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{},
		TreeInput{Base: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected error for missing base")
	}
}

// --- Symbols handler tests ---

func TestHandleSymbols(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{
		"mod.py": "import os\n\n\nclass Thing:\n    pass\n\n\ndef make():\n    return Thing()\n",
	})
	handler := handleSymbols()

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SymbolsInput{File: paths[0]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Classes) != 1 || out.Classes[0] != "Thing" {
		t.Errorf("classes = %v", out.Classes)
	}
	if len(out.Functions) != 1 || out.Functions[0] != "make" {
		t.Errorf("functions = %v", out.Functions)
	}
	if len(out.Imports) != 1 || out.Imports[0] != "import os" {
		t.Errorf("imports = %v", out.Imports)
	}
}

func TestHandleSymbols_Errors(t *testing.T) {
	handler := handleSymbols()

	t.Run("missing file", func(t *testing.T) {
		_, _, err := handler(context.Background(), &mcp.CallToolRequest{},
			SymbolsInput{File: filepath.Join(t.TempDir(), "nope.py")})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("binary file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob.py")
		if err := os.WriteFile(path, []byte{0x00, 0x01}, 0o600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, SymbolsInput{File: path})
		if err == nil || !strings.Contains(err.Error(), "not a text file") {
			t.Errorf("error = %v", err)
		}
	})
}

// --- History handler tests ---

func TestHandleHistory(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n", "b.txt": "beta\n"})
	store := makeTestStore(t)
	capture := handleCapture(store)

	if _, _, err := capture(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths[:1]}); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if _, _, err := capture(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths}); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	handler := handleHistory(store)
	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, HistoryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 2 || len(out.Snapshots) != 2 {
		t.Fatalf("count = %d, snapshots = %d; want 2", out.Count, len(out.Snapshots))
	}
	if out.Snapshots[0].Current || !out.Snapshots[1].Current {
		t.Errorf("cursor should sit on the newest snapshot: %+v", out.Snapshots)
	}
}

func TestHandleHistory_Empty(t *testing.T) {
	handler := handleHistory(makeTestStore(t))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, HistoryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("count = %d, want 0", out.Count)
	}
}

// --- Stale handler tests ---

func TestHandleStale(t *testing.T) {
	_, paths := writeSelection(t, map[string]string{"a.txt": "alpha\n"})
	store := makeTestStore(t)

	capture := handleCapture(store)
	_, captured, err := capture(context.Background(), &mcp.CallToolRequest{}, ContextInput{Files: paths})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	handler := handleStale(store)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, StaleInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("fresh snapshot reported stale: %v", out.Stale)
	}

	if err := os.WriteFile(paths[0], []byte("changed\n"), 0o600); err != nil {
		t.Fatalf("failed to modify file: %v", err)
	}

	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, StaleInput{ID: captured.SnapshotID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 1 || out.Stale[paths[0]] != history.StaleModified {
		t.Errorf("stale = %v, want %s modified", out.Stale, paths[0])
	}
}

func TestHandleStale_UnknownID(t *testing.T) {
	handler := handleStale(makeTestStore(t))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, StaleInput{ID: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown snapshot")
	}
}
