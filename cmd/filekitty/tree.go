package main

import (
	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/clipboard"
	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/tree"
)

// newTreeCmd creates the tree command.
func newTreeCmd() *cobra.Command {
	var (
		ignoreRegex string
		ignoreGlobs []string
		maxDepth    int
		copyOut     bool
	)

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Render a folder tree as a Markdown block",
		Long: `Render the folder tree of a directory as a fenced Markdown block,
the same block the copy command prepends with --tree.

Defaults to the current directory. Common noise (.git, __pycache__,
node_modules, lock files) is filtered out; override with --ignore.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args, ignoreRegex, ignoreGlobs, maxDepth, copyOut)
		},
	}

	cmd.Flags().StringVar(&ignoreRegex, "ignore", "", "Regex filtering paths out of the tree")
	cmd.Flags().StringArrayVar(&ignoreGlobs, "ignore-glob", nil, "Glob filtering names out of the tree (repeatable)")
	cmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum tree depth (default 5)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the block to the clipboard as well")

	return cmd
}

// runTree executes the tree command.
func runTree(cmd *cobra.Command, args []string, ignoreRegex string, ignoreGlobs []string, maxDepth int, copyOut bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	base := "."
	if len(args) == 1 {
		base = args[0]
	}

	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}
	if ignoreRegex == "" {
		ignoreRegex = settings.Tree.IgnoreRegex
	}
	if len(ignoreGlobs) == 0 {
		ignoreGlobs = settings.Tree.IgnoreGlobs
	}
	if maxDepth == 0 {
		maxDepth = settings.Tree.MaxDepth
	}

	block, snap, err := tree.Generate(base, tree.Options{
		IgnoreRegex: ignoreRegex,
		IgnoreGlobs: ignoreGlobs,
		MaxDepth:    maxDepth,
	})
	if err != nil {
		printer.Error(err)
		return err
	}

	if copyOut {
		if err := clipboard.Copy(block); err != nil {
			printer.Error(err)
			return err
		}
	}

	if printer.IsJSON() {
		return printer.WriteJSON(snap)
	}
	printer.Print("%s", block)
	if copyOut {
		printer.Stderr("Copied tree to clipboard\n")
	}
	return nil
}
