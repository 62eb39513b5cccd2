package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/pathdisplay"
	"github.com/bastet/filekitty/internal/pysym"
	"github.com/bastet/filekitty/internal/render"
	"github.com/bastet/filekitty/internal/textfile"
	"github.com/bastet/filekitty/internal/tree"
)

// --- context / capture tools ---

// ContextInput selects files and rendering options.
type ContextInput struct {
	Files         []string `json:"files"                    jsonschema:"paths of the files to include"`
	SelectedItems []string `json:"selected_items,omitempty" jsonschema:"top-level Python classes/functions to extract"`
	SingleFile    string   `json:"single_file,omitempty"    jsonschema:"restrict output to this file from the selection"`
	Tree          bool     `json:"tree,omitempty"           jsonschema:"prepend a folder tree block"`
	TreeBase      string   `json:"tree_base,omitempty"      jsonschema:"folder tree base directory (default: project root)"`
	HumanTime     bool     `json:"human_time,omitempty"     jsonschema:"render modified times in human format instead of RFC 3339"`
}

// ContextOutput is the rendered document.
type ContextOutput struct {
	Output      string   `json:"output"                 jsonschema:"the rendered Markdown context document"`
	ProjectRoot string   `json:"project_root,omitempty" jsonschema:"detected project root"`
	Errors      []string `json:"errors,omitempty"       jsonschema:"per-file processing errors"`
	SnapshotID  string   `json:"snapshot_id,omitempty"  jsonschema:"ID of the saved history snapshot (capture only)"`
}

// buildContext renders the document for both the context and capture tools.
func buildContext(ctx context.Context, input ContextInput) (*render.Result, *tree.Snapshot, render.Options, error) {
	if len(input.Files) == 0 {
		return nil, nil, render.Options{}, errors.New("files must not be empty")
	}

	opts := render.Options{
		SingleFile:    input.SingleFile,
		SelectedItems: input.SelectedItems,
		HumanTime:     input.HumanTime,
	}

	var treeSnap *tree.Snapshot
	if input.Tree {
		base := input.TreeBase
		if base == "" {
			base = pathdisplay.DetectProjectRoot(input.Files)
		}
		block, snap, err := tree.Generate(base, tree.Options{})
		if err != nil {
			return nil, nil, opts, fmt.Errorf("generating tree: %w", err)
		}
		opts.TreeBlock = block
		treeSnap = snap
	}

	res, err := render.Combined(ctx, input.Files, opts)
	if err != nil {
		return nil, nil, opts, fmt.Errorf("rendering context: %w", err)
	}
	return res, treeSnap, opts, nil
}

func handleContext() mcp.ToolHandlerFor[ContextInput, ContextOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContextInput) (*mcp.CallToolResult, ContextOutput, error) {
		res, _, _, err := buildContext(ctx, input)
		if err != nil {
			return nil, ContextOutput{}, err
		}
		return nil, ContextOutput{
			Output:      res.Output,
			ProjectRoot: res.ProjectRoot,
			Errors:      res.Errors,
		}, nil
	}
}

func handleCapture(store *history.Store) mcp.ToolHandlerFor[ContextInput, ContextOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContextInput) (*mcp.CallToolResult, ContextOutput, error) {
		res, treeSnap, opts, err := buildContext(ctx, input)
		if err != nil {
			return nil, ContextOutput{}, err
		}

		sel := history.Selection{Mode: history.ModeAllFiles, SelectedItems: opts.SelectedItems}
		if opts.SingleFile != "" {
			sel.Mode = history.ModeSingleFile
			sel.SelectedFile = opts.SingleFile
		}
		snap := history.Capture(input.Files, sel, treeSnap, res.Output, res.ProjectRoot)

		if err := store.Save(snap); err != nil && !errors.Is(err, history.ErrDuplicateState) {
			return nil, ContextOutput{}, fmt.Errorf("saving snapshot: %w", err)
		}
		return nil, ContextOutput{
			Output:      res.Output,
			ProjectRoot: res.ProjectRoot,
			Errors:      res.Errors,
			SnapshotID:  snap.ID,
		}, nil
	}
}

// --- tree tool ---

// TreeInput selects the directory and filters for the folder tree.
type TreeInput struct {
	Base        string   `json:"base"                   jsonschema:"base directory to walk"`
	IgnoreRegex string   `json:"ignore_regex,omitempty" jsonschema:"regex filtering out matching paths"`
	IgnoreGlobs []string `json:"ignore_globs,omitempty" jsonschema:"globs filtering out matching entry names"`
	MaxDepth    int      `json:"max_depth,omitempty"    jsonschema:"maximum recursion depth (default 5)"`
}

// TreeOutput is the rendered folder tree block.
type TreeOutput struct {
	Block string `json:"block" jsonschema:"Markdown folder tree block"`
}

func handleTree() mcp.ToolHandlerFor[TreeInput, TreeOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TreeInput) (*mcp.CallToolResult, TreeOutput, error) {
		block, _, err := tree.Generate(input.Base, tree.Options{
			IgnoreRegex: input.IgnoreRegex,
			IgnoreGlobs: input.IgnoreGlobs,
			MaxDepth:    input.MaxDepth,
		})
		if err != nil {
			return nil, TreeOutput{}, fmt.Errorf("generating tree: %w", err)
		}
		return nil, TreeOutput{Block: block}, nil
	}
}

// --- symbols tool ---

// SymbolsInput names the Python file to inspect.
type SymbolsInput struct {
	File string `json:"file" jsonschema:"path of the Python file"`
}

// SymbolsOutput lists what the module defines at its top level.
type SymbolsOutput struct {
	Classes   []string `json:"classes"   jsonschema:"top-level class names"`
	Functions []string `json:"functions" jsonschema:"top-level function names"`
	Imports   []string `json:"imports"   jsonschema:"import statements, verbatim"`
}

func handleSymbols() mcp.ToolHandlerFor[SymbolsInput, SymbolsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SymbolsInput) (*mcp.CallToolResult, SymbolsOutput, error) {
		content, err := os.ReadFile(input.File)
		if err != nil {
			return nil, SymbolsOutput{}, fmt.Errorf("reading %s: %w", input.File, err)
		}
		if !textfile.IsText(input.File) {
			return nil, SymbolsOutput{}, fmt.Errorf("not a text file: %s", input.File)
		}
		syms, err := pysym.NewParser().Parse(ctx, input.File, content)
		if err != nil {
			return nil, SymbolsOutput{}, err
		}
		return nil, SymbolsOutput{
			Classes:   syms.Classes,
			Functions: syms.Functions,
			Imports:   syms.Imports,
		}, nil
	}
}

// --- history tool ---

// HistoryInput is the input for the history tool (no parameters needed).
type HistoryInput struct{}

// SnapshotRef is a reference to a history snapshot.
type SnapshotRef struct {
	ID        string `json:"id"         jsonschema:"snapshot ID"`
	CreatedAt string `json:"created_at" jsonschema:"capture timestamp"`
	FileCount int    `json:"file_count" jsonschema:"number of files in the selection"`
	Current   bool   `json:"current"    jsonschema:"true for the snapshot at the cursor"`
}

// HistoryOutput lists the snapshots oldest to newest.
type HistoryOutput struct {
	Count     int           `json:"count"               jsonschema:"number of snapshots"`
	Snapshots []SnapshotRef `json:"snapshots,omitempty" jsonschema:"snapshots oldest to newest"`
}

func handleHistory(store *history.Store) mcp.ToolHandlerFor[HistoryInput, HistoryOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		snaps, _, err := store.List()
		if err != nil {
			return nil, HistoryOutput{}, fmt.Errorf("listing history: %w", err)
		}

		currentID := ""
		if current, curErr := store.Current(); curErr == nil {
			currentID = current.ID
		}

		out := HistoryOutput{Count: len(snaps)}
		for _, snap := range snaps {
			out.Snapshots = append(out.Snapshots, SnapshotRef{
				ID:        snap.ID,
				CreatedAt: snap.CreatedAt.Format(time.RFC3339),
				FileCount: len(snap.Files),
				Current:   snap.ID == currentID,
			})
		}
		return nil, out, nil
	}
}

// --- stale tool ---

// StaleInput selects the snapshot to check.
type StaleInput struct {
	ID string `json:"id,omitempty" jsonschema:"snapshot ID (default: current)"`
}

// StaleOutput maps each changed file to its staleness class.
type StaleOutput struct {
	SnapshotID string            `json:"snapshot_id"     jsonschema:"the checked snapshot"`
	Count      int               `json:"count"           jsonschema:"number of stale files"`
	Stale      map[string]string `json:"stale,omitempty" jsonschema:"path to missing/error/modified"`
}

func handleStale(store *history.Store) mcp.ToolHandlerFor[StaleInput, StaleOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StaleInput) (*mcp.CallToolResult, StaleOutput, error) {
		var snap *history.Snapshot
		var err error
		if input.ID != "" {
			snap, err = store.Get(input.ID)
		} else {
			snap, err = store.Current()
		}
		if err != nil {
			return nil, StaleOutput{}, fmt.Errorf("loading snapshot: %w", err)
		}

		stale := store.Stale(snap)
		return nil, StaleOutput{SnapshotID: snap.ID, Count: len(stale), Stale: stale}, nil
	}
}
