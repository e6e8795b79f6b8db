// File: cmd/runs.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/aviator-cli/internal/journal"
	"github.com/xkilldash9x/aviator-cli/internal/observability"
)

// newRunsCmd creates the `runs` command, listing journaled runs.
func newRunsCmd() *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			path, err := resolveJournalPath(appConfig)
			if err != nil {
				return err
			}
			j, err := journal.Open(path, observability.GetLogger())
			if err != nil {
				return fmt.Errorf("failed to open the run journal: %w", err)
			}
			defer j.Close()

			runs, err := j.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tOUTCOME\tSTEPS\tGOAL\tSUMMARY")
			for _, r := range runs {
				outcome := r.Outcome
				if outcome == "" {
					outcome = "running"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					outcome, r.StepCount, r.Goal, r.Summary)
			}
			return w.Flush()
		},
	}
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return runsCmd
}
