package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/draftrange/internal/adapters/repository"
)

func newProjectCmd(g *globalFlags) *cobra.Command {
	var (
		input  string
		output string
		pretty bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project every prospect in a file and print the results as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prospects, err := repository.LoadProfiles(input)
			if err != nil {
				return err
			}
			svc, err := startService(ctx, g)
			if err != nil {
				return err
			}
			defer svc.Stop()

			out, batchErr := svc.ProjectBatch(ctx, prospects)
			if batchErr != nil && len(out.Items) == 0 {
				return batchErr
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("encode results: %w", err)
			}

			if out.Failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d prospects failed\n", out.Failed, len(out.Items))
				if strict {
					return fmt.Errorf("%d prospects failed", out.Failed)
				}
			}
			return batchErr
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "prospect file (.json, .yaml, optionally .gz)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any prospect fails")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
