package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newReportCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the archetype population diagnostic of the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx, g)
			if err != nil {
				return err
			}
			defer svc.Stop()

			rep, err := svc.PopulationReport(ctx)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			case "text":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ARCHETYPE\tCOUNT\tSHARE\tFALLBACK\tFLAG")
				for _, b := range rep.Buckets {
					flag := ""
					switch {
					case b.Undersized:
						flag = fmt.Sprintf("undersized (<%d)", rep.MinBucket)
					case b.Oversized:
						flag = fmt.Sprintf("oversized (>%.0f%%)", rep.MaxShare*100)
					}
					fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%d\t%s\n", b.Label, b.Count, b.Share*100, b.Fallback, flag)
				}
				fmt.Fprintf(tw, "TOTAL\t%d\t\t\t\n", rep.Total)
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}
