package main

import (
	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/clipboard"
	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/output"
)

// navFlags holds flag values shared by the back and forward commands.
type navFlags struct {
	stdout bool
	noCopy bool
}

// newBackCmd creates the back command.
func newBackCmd() *cobra.Command {
	return newBackCmdInternal(nil)
}

func newBackCmdInternal(store *history.Store) *cobra.Command {
	flags := &navFlags{}

	cmd := &cobra.Command{
		Use:   "back",
		Short: "Step to the previous snapshot and re-copy its output",
		Long: `Move the history cursor one snapshot older and copy that snapshot's
Markdown output back to the clipboard. Files that changed since the
snapshot was taken are reported as stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, store, flags, func(s *history.Store) (*history.Snapshot, error) {
				return s.Back()
			})
		},
	}

	addNavFlags(cmd, flags)
	return cmd
}

func addNavFlags(cmd *cobra.Command, flags *navFlags) {
	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "Print the snapshot's output instead of copying it")
	cmd.Flags().BoolVar(&flags.noCopy, "no-copy", false, "Move the cursor without touching the clipboard")
}

// runNavigate moves the cursor with step and delivers the resulting
// snapshot's output.
func runNavigate(cmd *cobra.Command, store *history.Store, flags *navFlags, step func(*history.Store) (*history.Snapshot, error)) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	settings, err := loadSettings()
	if err != nil {
		printer.Error(err)
		return err
	}
	if store == nil {
		store, err = openStore(settings)
		if err != nil {
			printer.Error(err)
			return err
		}
	}

	snap, err := step(store)
	if err != nil {
		printer.Error(err)
		return err
	}

	stale := store.Stale(snap)
	for _, fm := range snap.FileMeta {
		if status, ok := stale[fm.Path]; ok {
			printer.Warn("%s is %s since this snapshot", fm.DisplayPath, status)
		}
	}

	copied := false
	switch {
	case flags.stdout:
		printer.Print("%s", snap.Output)
	case flags.noCopy || !settings.AutoCopyEnabled():
		// Cursor moved; clipboard left alone.
	default:
		if err := clipboard.Copy(snap.Output); err != nil {
			printer.Error(err)
			return err
		}
		copied = true
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"id":         snap.ID,
			"created_at": snap.CreatedAt,
			"files":      snap.Files,
			"copied":     copied,
			"stale":      stale,
		})
	}
	if flags.stdout {
		return nil
	}

	msg := "At snapshot " + shortID(snap.ID) + " (" + snap.CreatedAt.Local().Format("2006-01-02 15:04") + ")"
	if copied {
		msg += ", output copied"
	}
	return printer.Success(map[string]any{"message": msg})
}
