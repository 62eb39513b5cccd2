// Package main provides the entry point for the filekitty CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/config"
	"github.com/bastet/filekitty/internal/envfile"
	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/output"
)

// Build info set via ldflags at build time.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the filekitty CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filekitty",
		Short: "Concatenate files into Markdown context for LLM prompts",
		Long: `FileKitty - turn a file selection into LLM prompt context.

FileKitty concatenates files into a Markdown document, optionally
prefixed with a folder tree, and copies the result to the clipboard.
Every copy is recorded as a history snapshot so past selections can be
restored and checked for staleness (files modified or deleted since
capture). Python files can contribute individual top-level classes and
functions instead of their whole content.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'filekitty --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Load .env.local, .env, and the global env file for overrides
	// like FILEKITTY_HISTORY_HOME.
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		envfile.LoadDefaults(config.Dir())
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "history", Title: "History Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	// Core commands: render and inspect selections
	addGroupedCommand(cmd, newCopyCmd(), "core")
	addGroupedCommand(cmd, newTreeCmd(), "core")
	addGroupedCommand(cmd, newSymbolsCmd(), "core")
	addGroupedCommand(cmd, newConfigCmd(), "core")

	// History commands: navigate and audit past selections
	addGroupedCommand(cmd, newHistoryCmd(), "history")
	addGroupedCommand(cmd, newBackCmd(), "history")
	addGroupedCommand(cmd, newForwardCmd(), "history")
	addGroupedCommand(cmd, newStaleCmd(), "history")

	// Agent commands
	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

// openStore resolves the history directory from settings and the
// environment and returns a store for it.
func openStore(settings *config.Settings) (*history.Store, error) {
	dir, err := history.DefaultDir(settings.HistoryPath)
	if err != nil {
		return nil, err
	}
	return history.NewStore(dir), nil
}

// loadSettings reads user settings, mapping failures to system errors.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to load settings", err)
	}
	return settings, nil
}
