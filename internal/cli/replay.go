package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/cheatcodes/internal/replay"
)

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml|->",
		Short: "Replay a YAML event script through the engine",
		Long:  "Replay runs every scripted event against a fresh state with a pinned clock and random seed, then prints the final radar and the events each step emitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			script, err := replay.Parse(in)
			if err != nil {
				return err
			}
			res, err := replay.Run(script)
			if err != nil {
				return err
			}
			return res.Write(cmd.OutOrStdout())
		},
	}
}
