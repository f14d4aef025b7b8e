// Package cli holds the cheatctl commands.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the cheatctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cheatctl",
		Short:         "Operate the cheat code coach",
		Long:          "cheatctl prints the color legend, replays scripted sessions through the engine and runs maintenance sweeps against the database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLegendCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newSweepCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
