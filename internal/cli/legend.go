package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/cheatcodes/internal/models"
)

func newLegendCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "legend",
		Short: "Show sections, colors, guardrails and milestones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			legend := models.NewLegend()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(legend)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tLABEL")
			for _, s := range legend.Sections {
				fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Label)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "COLOR\tMIN SCORE\tMIN LOGS\tMIN UNIQUE")
			for _, r := range legend.Rules {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", r.Color, r.MinScore, r.Guardrail.Logs, r.Guardrail.Unique)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "MILESTONE\tAFTER")
			for _, m := range legend.Milestones {
				fmt.Fprintf(tw, "%s\t%v\n", m.Key, m.After)
			}
			fmt.Fprintln(tw)
			fmt.Fprintf(tw, "active slots per section\t%d\n", legend.MaxActivePerSection)
			fmt.Fprintf(tw, "logs per section per day\t%d\n", legend.DailyCapPerSection)
			fmt.Fprintf(tw, "decay\t-%d/day after %d idle days\n", legend.DecayPerDay, legend.DecayGraceDays)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the legend as JSON")
	return cmd
}
