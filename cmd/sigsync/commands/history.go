package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailsig/sigsync/repository/bolt"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent synchronization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := bolt.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("history store: %w", err)
			}
			defer store.Close()

			if limit <= 0 {
				limit = cfg.History.Limit
			}
			reports, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			for _, report := range reports {
				mode := "sync"
				if report.DryRun {
					mode = "plan"
				}
				fmt.Printf("%s  %s  %-7s  processed=%d skipped=%d failed=%d\n",
					report.StartedAt.Format("2006-01-02 15:04:05"),
					report.ID,
					mode,
					len(report.Outcome.Processed),
					len(report.Outcome.Skipped),
					len(report.Outcome.Failed),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs to list (default from HISTORY_LIMIT)")
	return cmd
}
