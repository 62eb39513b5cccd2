package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/pysym"
	"github.com/bastet/filekitty/internal/textfile"
)

// newSymbolsCmd creates the symbols command.
func newSymbolsCmd() *cobra.Command {
	var selects []string

	cmd := &cobra.Command{
		Use:   "symbols <file.py>",
		Short: "List classes, functions, and imports in a Python file",
		Long: `Parse a Python file and list its top-level classes, functions, and
imports. With --select, print the extracted source of the named
classes or functions instead, the same payload the copy command
produces for a selection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSymbols(cmd, args[0], selects)
		},
	}

	cmd.Flags().StringArrayVar(&selects, "select", nil, "Class/function to extract (repeatable)")

	return cmd
}

// runSymbols executes the symbols command.
func runSymbols(cmd *cobra.Command, path string, selects []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	content, err := os.ReadFile(path)
	if err != nil {
		err = output.NewUserError("cannot read " + path + ": " + err.Error())
		printer.Error(err)
		return err
	}
	if !textfile.IsText(path) {
		err := output.NewUserError(path + " is not a text file")
		printer.Error(err)
		return err
	}

	parser := pysym.NewParser()

	if len(selects) > 0 {
		modified := "**Last modified: ?**"
		if info, statErr := textfile.Stat(path); statErr == nil {
			modified = "**Last modified: " + info.ModTime.Format(time.RFC3339) + "**"
		}
		extracted, err := parser.Extract(cmd.Context(), path, content, selects, path, modified)
		if err != nil {
			printer.Error(err)
			return err
		}
		if printer.IsJSON() {
			return printer.WriteJSON(map[string]any{"path": path, "extracted": extracted})
		}
		printer.Print("%s", extracted)
		return nil
	}

	syms, err := parser.Parse(cmd.Context(), path, content)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"path":      path,
			"classes":   syms.Classes,
			"functions": syms.Functions,
			"imports":   syms.Imports,
		})
	}

	printer.Section(filepath.Base(path))
	printer.KeyValue("Classes", joinOrNone(syms.Classes))
	printer.KeyValue("Functions", joinOrNone(syms.Functions))
	printer.KeyValue("Imports", joinOrNone(syms.Imports))
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
