package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/clipboard"
	"github.com/bastet/filekitty/internal/config"
	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/pathdisplay"
	"github.com/bastet/filekitty/internal/render"
	"github.com/bastet/filekitty/internal/tree"
)

// copyFlags holds the copy command's flag values.
type copyFlags struct {
	stdout     bool
	outputFile string
	withTree   bool
	treeBase   string
	treeIgnore string
	treeGlobs  []string
	treeDepth  int
	selects    []string
	singleFile string
	humanTime  bool
	noHistory  bool
}

// newCopyCmd creates the copy command.
func newCopyCmd() *cobra.Command {
	return newCopyCmdInternal(nil)
}

// newCopyCmdInternal creates the copy command with optional store injection.
// If store is nil, the real history store is opened when the command runs.
func newCopyCmdInternal(store *history.Store) *cobra.Command {
	flags := &copyFlags{}

	cmd := &cobra.Command{
		Use:   "copy <file>...",
		Short: "Concatenate files into Markdown and copy to the clipboard",
		Long: `Concatenate the given files into a Markdown document and copy it to
the clipboard. The selection is saved as a history snapshot unless
--no-history is set.

Examples:
  filekitty copy main.go handler.go              # Copy two files
  filekitty copy --tree cmd/*.go                 # Prefix a folder tree
  filekitty copy --select MyClass app.py util.py # Extract one Python class
  filekitty copy --stdout notes.md               # Print instead of copying`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, store, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "Print the document instead of copying it")
	cmd.Flags().StringVarP(&flags.outputFile, "output", "o", "", "Write the document to a file instead of copying it")
	cmd.Flags().BoolVar(&flags.withTree, "tree", false, "Prepend a folder tree block")
	cmd.Flags().StringVar(&flags.treeBase, "tree-base", "", "Folder tree base directory (default: detected project root)")
	cmd.Flags().StringVar(&flags.treeIgnore, "tree-ignore", "", "Regex filtering paths out of the folder tree")
	cmd.Flags().StringArrayVar(&flags.treeGlobs, "tree-ignore-glob", nil, "Glob filtering names out of the folder tree (repeatable)")
	cmd.Flags().IntVar(&flags.treeDepth, "tree-depth", 0, "Maximum folder tree depth (default 5)")
	cmd.Flags().StringArrayVar(&flags.selects, "select", nil, "Python class/function to extract (repeatable)")
	cmd.Flags().StringVar(&flags.singleFile, "file", "", "Restrict output to a single file from the selection")
	cmd.Flags().BoolVar(&flags.humanTime, "human-time", false, "Render modified times in human format instead of RFC 3339")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record a history snapshot")

	return cmd
}

// runCopy executes the copy command.
func runCopy(cmd *cobra.Command, store *history.Store, args []string, flags *copyFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}

	args = resolveSelection(args, settings.DefaultPath)

	// Every file must exist up front; a typo should not half-render.
	for _, path := range args {
		if _, statErr := os.Stat(path); statErr != nil {
			err := output.NewUserError("file not found: " + path)
			printer.Error(err)
			return err
		}
	}

	// With auto_copy off and no explicit destination, the document
	// goes to stdout.
	if !flags.stdout && flags.outputFile == "" && !settings.AutoCopyEnabled() {
		flags.stdout = true
	}

	opts := render.Options{
		SingleFile:    flags.singleFile,
		SelectedItems: flags.selects,
		HumanTime:     flags.humanTime || settings.HumanTime,
	}

	treeSnap, err := resolveTree(args, flags, settings, &opts)
	if err != nil {
		printer.Error(err)
		return err
	}

	res, err := render.Combined(cmd.Context(), args, opts)
	if err != nil {
		printer.Error(err)
		return err
	}
	for _, msg := range res.Errors {
		printer.Warn("%s", msg)
	}

	if err := deliver(printer, res.Output, flags); err != nil {
		printer.Error(err)
		return err
	}

	snapshotID := ""
	if !flags.noHistory {
		snapshotID, err = saveSnapshot(store, settings, args, flags, treeSnap, res)
		if err != nil {
			printer.Error(err)
			return err
		}
	}

	return reportCopy(printer, res, flags, snapshotID, len(args))
}

// resolveTree generates the folder tree block when enabled by flag or settings.
func resolveTree(files []string, flags *copyFlags, settings *config.Settings, opts *render.Options) (*tree.Snapshot, error) {
	if !flags.withTree && !settings.Tree.Enabled {
		return nil, nil
	}

	base := flags.treeBase
	if base == "" {
		base = settings.Tree.Base
	}
	if base == "" {
		base = pathdisplay.DetectProjectRoot(files)
	}

	ignoreRegex := flags.treeIgnore
	if ignoreRegex == "" {
		ignoreRegex = settings.Tree.IgnoreRegex
	}
	ignoreGlobs := flags.treeGlobs
	if len(ignoreGlobs) == 0 {
		ignoreGlobs = settings.Tree.IgnoreGlobs
	}
	maxDepth := flags.treeDepth
	if maxDepth == 0 {
		maxDepth = settings.Tree.MaxDepth
	}

	block, snap, err := tree.Generate(base, tree.Options{
		IgnoreRegex: ignoreRegex,
		IgnoreGlobs: ignoreGlobs,
		MaxDepth:    maxDepth,
	})
	if err != nil {
		return nil, err
	}
	opts.TreeBlock = block
	return snap, nil
}

// deliver sends the document to the clipboard, stdout, or a file.
func deliver(printer *output.Printer, doc string, flags *copyFlags) error {
	switch {
	case flags.outputFile != "":
		if err := os.WriteFile(flags.outputFile, []byte(doc), 0o600); err != nil {
			return output.NewSystemErrorWithCause("failed to write "+flags.outputFile, err)
		}
	case flags.stdout:
		printer.Print("%s", doc)
	default:
		if err := clipboard.Copy(doc); err != nil {
			return err
		}
	}
	return nil
}

// saveSnapshot records the selection in history and returns the
// snapshot ID ("" when the state was unchanged).
func saveSnapshot(store *history.Store, settings *config.Settings, files []string, flags *copyFlags, treeSnap *tree.Snapshot, res *render.Result) (string, error) {
	if store == nil {
		var err error
		store, err = openStore(settings)
		if err != nil {
			return "", err
		}
	}

	sel := history.Selection{Mode: history.ModeAllFiles, SelectedItems: flags.selects}
	if flags.singleFile != "" {
		sel.Mode = history.ModeSingleFile
		sel.SelectedFile = flags.singleFile
	}

	snap := history.Capture(files, sel, treeSnap, res.Output, res.ProjectRoot)
	if err := store.Save(snap); err != nil {
		if errors.Is(err, history.ErrDuplicateState) {
			return "", nil
		}
		return "", err
	}
	return snap.ID, nil
}

// reportCopy emits the final success output.
func reportCopy(printer *output.Printer, res *render.Result, flags *copyFlags, snapshotID string, fileCount int) error {
	lines := countNonEmptyLines(res.Output)

	if printer.IsJSON() {
		data := map[string]any{
			"files": fileCount,
			"lines": lines,
		}
		if snapshotID != "" {
			data["snapshot_id"] = snapshotID
		}
		if len(res.Errors) > 0 {
			data["errors"] = res.Errors
		}
		switch {
		case flags.outputFile != "":
			data["written_to"] = flags.outputFile
		case flags.stdout:
			data["copied"] = false
		default:
			data["copied"] = true
		}
		return printer.WriteJSON(data)
	}

	if flags.stdout {
		// The document itself already went to stdout.
		return nil
	}

	msg := messageFor(flags, fileCount, lines)
	if snapshotID != "" {
		msg += " (snapshot " + shortID(snapshotID) + ")"
	}
	return printer.Success(map[string]any{"message": msg})
}

func messageFor(flags *copyFlags, fileCount, lines int) string {
	target := "clipboard"
	if flags.outputFile != "" {
		target = flags.outputFile
	}
	noun := "files"
	if fileCount == 1 {
		noun = "file"
	}
	return fmt.Sprintf("Copied %d %s (%d lines) to %s", fileCount, noun, lines, target)
}

// resolveSelection joins relative selection paths onto the configured
// default path. Absolute paths and an empty default pass through.
func resolveSelection(args []string, defaultPath string) []string {
	if defaultPath == "" {
		return args
	}
	resolved := make([]string, len(args))
	for i, path := range args {
		if filepath.IsAbs(path) {
			resolved[i] = path
			continue
		}
		resolved[i] = filepath.Join(defaultPath, path)
	}
	return resolved
}

// shortID truncates a snapshot UUID to its first hex group.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// countNonEmptyLines counts lines with any non-whitespace content.
func countNonEmptyLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
