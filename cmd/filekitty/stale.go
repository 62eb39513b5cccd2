package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/history"
	"github.com/bastet/filekitty/internal/output"
	"github.com/bastet/filekitty/internal/watch"
)

// newStaleCmd creates the stale command.
func newStaleCmd() *cobra.Command {
	return newStaleCmdInternal(nil)
}

func newStaleCmdInternal(store *history.Store) *cobra.Command {
	var (
		id        string
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Report files that changed since a snapshot was taken",
		Long: `Rehash the files recorded in a snapshot and report each one that is
missing, unreadable, or modified. Defaults to the current snapshot.

With --watch, keep running and report staleness transitions as they
happen, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStale(cmd, store, id, watchMode)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Snapshot ID to check (default: current)")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Keep watching and report changes live")

	return cmd
}

// runStale executes the stale command.
func runStale(cmd *cobra.Command, store *history.Store, id string, watchMode bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	store, err := resolveStore(store)
	if err != nil {
		printer.Error(err)
		return err
	}

	snap, err := lookupSnapshot(store, id, false)
	if err != nil {
		if errors.Is(err, history.ErrNoSnapshots) {
			err = output.NewUserError("no history snapshots found")
		}
		printer.Error(err)
		return err
	}

	stale := store.Stale(snap)

	if printer.IsJSON() && !watchMode {
		return printer.WriteJSON(map[string]any{
			"id":    snap.ID,
			"stale": stale,
			"clean": len(stale) == 0,
		})
	}

	if len(stale) == 0 {
		_ = printer.Success(map[string]any{
			"message": "All files match snapshot " + shortID(snap.ID),
		})
	} else {
		for _, fm := range snap.FileMeta {
			if status, ok := stale[fm.Path]; ok {
				printer.Println(fm.DisplayPath + " (" + status + ")")
			}
		}
	}

	if !watchMode {
		if len(stale) > 0 {
			return output.NewConflictError("snapshot is stale")
		}
		return nil
	}

	return watchStale(cmd, printer, snap)
}

// watchStale reports staleness transitions until interrupted.
func watchStale(cmd *cobra.Command, printer *output.Printer, snap *history.Snapshot) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer.Stderr("Watching %d file(s); Ctrl-C to stop\n", len(snap.Hashes()))

	w := watch.New(snap, func(path, status string) {
		if printer.IsJSON() {
			_ = printer.WriteJSON(map[string]any{"path": path, "status": status})
			return
		}
		printer.Println(path + " (" + status + ")")
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		err = output.NewSystemError(err.Error())
		printer.Error(err)
		return err
	}
	return nil
}
