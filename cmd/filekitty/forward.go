package main

import (
	"github.com/spf13/cobra"

	"github.com/bastet/filekitty/internal/history"
)

// newForwardCmd creates the forward command.
func newForwardCmd() *cobra.Command {
	return newForwardCmdInternal(nil)
}

func newForwardCmdInternal(store *history.Store) *cobra.Command {
	flags := &navFlags{}

	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Step to the next snapshot and re-copy its output",
		Long: `Move the history cursor one snapshot newer and copy that snapshot's
Markdown output back to the clipboard. Files that changed since the
snapshot was taken are reported as stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, store, flags, func(s *history.Store) (*history.Snapshot, error) {
				return s.Forward()
			})
		},
	}

	addNavFlags(cmd, flags)
	return cmd
}
