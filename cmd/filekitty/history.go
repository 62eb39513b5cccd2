package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/output"
)

// newHistoryCmd creates the history command and its subcommands.
func newHistoryCmd() *cobra.Command {
	return newHistoryCmdInternal(nil)
}

// newHistoryCmdInternal creates the history command with optional store
// injection. If store is nil, the real store is opened when a
// subcommand runs.
func newHistoryCmdInternal(store *history.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect selection snapshots",
		Long: `List the saved selection snapshots, show the content of one, or
clear the history entirely.

Snapshots form a linear stack: saving while not at the newest one
discards everything newer, like an editor's undo history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, store)
		},
	}

	cmd.AddCommand(newHistoryListCmd(store))
	cmd.AddCommand(newHistoryShowCmd(store))
	cmd.AddCommand(newHistoryClearCmd(store))
	return cmd
}

func newHistoryListCmd(store *history.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, store)
		},
	}
}

func newHistoryShowCmd(store *history.Store) *cobra.Command {
	var (
		latest bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one snapshot (defaults to the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runHistoryShow(cmd, store, id, latest, raw)
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Show the newest snapshot instead of the current one")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the snapshot's rendered Markdown output only")

	return cmd
}

func newHistoryClearCmd(store *history.Store) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, store, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

// runHistoryList executes the history list command.
func runHistoryList(cmd *cobra.Command, store *history.Store) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	store, err := resolveStore(store)
	if err != nil {
		printer.Error(err)
		return err
	}

	snaps, stats, err := store.List()
	if err != nil {
		printer.Error(err)
		return err
	}
	if stats.Skipped > 0 {
		printer.Warn("skipped %d corrupt snapshot file(s)", stats.Skipped)
	}

	currentID := ""
	if current, curErr := store.Current(); curErr == nil {
		currentID = current.ID
	}

	if printer.IsJSON() {
		type row struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			Files     int    `json:"files"`
			Mode      string `json:"mode"`
			Current   bool   `json:"current"`
		}
		rows := make([]row, 0, len(snaps))
		for _, snap := range snaps {
			rows = append(rows, row{
				ID:        snap.ID,
				CreatedAt: snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				Files:     len(snap.Files),
				Mode:      snap.Selection.Mode,
				Current:   snap.ID == currentID,
			})
		}
		return printer.WriteJSON(map[string]any{"snapshots": rows, "total": len(rows)})
	}

	if len(snaps) == 0 {
		printer.Println("No history snapshots. Run 'filekitty copy' to create one.")
		return nil
	}

	headers := []string{"", "ID", "CREATED", "FILES", "MODE"}
	rows := make([][]string, 0, len(snaps))
	for _, snap := range snaps {
		marker := " "
		if snap.ID == currentID {
			marker = "*"
		}
		// Full IDs so a row can be pasted into 'history show <id>'.
		rows = append(rows, []string{
			marker,
			snap.ID,
			snap.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", len(snap.Files)),
			snap.Selection.Mode,
		})
	}
	printer.Table(headers, rows)
	printer.Stderr("\n%d snapshot(s); * marks the current position\n", len(snaps))
	return nil
}

// runHistoryShow executes the history show command.
func runHistoryShow(cmd *cobra.Command, store *history.Store, id string, latest, raw bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	store, err := resolveStore(store)
	if err != nil {
		printer.Error(err)
		return err
	}

	snap, err := lookupSnapshot(store, id, latest)
	if err != nil {
		if errors.Is(err, history.ErrNoSnapshots) {
			err = output.NewUserError("no history snapshots found")
		}
		printer.Error(err)
		return err
	}

	if raw {
		printer.Print("%s", snap.Output)
		return nil
	}
	if printer.IsJSON() {
		return printer.WriteJSON(snap)
	}

	printer.Section("Snapshot " + shortID(snap.ID))
	printer.KeyValue("ID", snap.ID)
	printer.KeyValue("Created", snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printer.KeyValue("Mode", snap.Selection.Mode)
	if snap.Selection.SelectedFile != "" {
		printer.KeyValue("File", snap.Selection.SelectedFile)
	}
	if len(snap.Selection.SelectedItems) > 0 {
		printer.KeyValue("Selected", strings.Join(snap.Selection.SelectedItems, ", "))
	}
	if snap.Tree != nil {
		printer.KeyValue("Tree base", snap.Tree.BasePathDisplay)
	}

	printer.Section("Files")
	for _, fm := range snap.FileMeta {
		printer.Println("  " + fm.DisplayPath)
	}

	stale := store.Stale(snap)
	if len(stale) > 0 {
		printer.Section("Stale")
		for _, fm := range snap.FileMeta {
			if status, ok := stale[fm.Path]; ok {
				printer.Println("  " + fm.DisplayPath + " (" + status + ")")
			}
		}
	}
	return nil
}

// runHistoryClear executes the history clear command.
func runHistoryClear(cmd *cobra.Command, store *history.Store, force bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	store, err := resolveStore(store)
	if err != nil {
		printer.Error(err)
		return err
	}

	if !force && !printer.IsJSON() {
		printer.Stderr("Delete all history snapshots in %s? [y/N] ", store.Dir())
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			printer.Println("Aborted.")
			return nil
		}
	}

	removed, err := store.Clear()
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"removed": removed})
	}
	return printer.Success(map[string]any{
		"message": fmt.Sprintf("Removed %d history file(s)", removed),
	})
}

// lookupSnapshot resolves a snapshot by explicit ID, --latest, or the
// cursor position.
func lookupSnapshot(store *history.Store, id string, latest bool) (*history.Snapshot, error) {
	switch {
	case id != "":
		return store.Get(id)
	case latest:
		return store.Latest()
	default:
		return store.Current()
	}
}

// resolveStore returns the injected store or opens the real one.
func resolveStore(store *history.Store) (*history.Store, error) {
	if store != nil {
		return store, nil
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return openStore(settings)
}
