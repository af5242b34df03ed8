package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailsig/sigsync/domain"
	syncUC "github.com/mailsig/sigsync/usecase/sync"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass against the configured domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := buildLocalService(!cfg.Sync.DryRun)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Context.RunTimeout)
			defer cancel()

			report, err := service.Execute(ctx, syncUC.RunOptions{
				TemplateID:    templateID(),
				IncludedUsers: flagUsers,
			})
			if err != nil && report == nil {
				return err
			}

			printReport(report)
			return err
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Preview which mailboxes a run would update, without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := buildLocalService(false)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Context.RunTimeout)
			defer cancel()

			report, err := service.Plan(ctx, syncUC.RunOptions{
				TemplateID:    templateID(),
				IncludedUsers: flagUsers,
			})
			if err != nil && report == nil {
				return err
			}

			printReport(report)
			return err
		},
	}
}

func printReport(report *domain.RunReport) {
	mode := "sync"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Printf("run %s (%s) on %s finished in %s\n",
		report.ID, mode, report.Domain, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	fmt.Printf("  processed: %d\n", len(report.Outcome.Processed))
	fmt.Printf("  skipped:   %d\n", len(report.Outcome.Skipped))
	fmt.Printf("  failed:    %d\n", len(report.Outcome.Failed))

	if len(report.Outcome.Failed) > 0 {
		emails := make([]string, 0, len(report.Outcome.Failed))
		for email := range report.Outcome.Failed {
			emails = append(emails, email)
		}
		sort.Strings(emails)
		for _, email := range emails {
			fmt.Printf("    %s: %s\n", email, report.Outcome.Failed[email])
		}
	}
}
