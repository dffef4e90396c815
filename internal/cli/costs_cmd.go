package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/ledger"
	"github.com/spf13/cobra"
)

func newCostsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Inspect and report provider spend",
	}

	cmd.AddCommand(
		newCostsReportCmd(app),
		newCostsNotifyCmd(app),
	)
	return cmd
}

func newCostsReportCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a per-service cost breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			window := ledger.TrailingWindow(time.Now(), days)
			report, err := app.Ledger.Report(context.Background(), window)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out(), "%s\n\n",
				formatter.StyleHeader.Render(fmt.Sprintf("Costs, last %d day(s)", days)))
			fmt.Fprint(app.out(), formatter.FormatCostReport(report))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Size of the trailing report window in days")
	return cmd
}

func newCostsNotifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Post the daily cost report to the notification channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := time.Now()

			daily, err := app.Ledger.Report(ctx, ledger.DayWindow(now))
			if err != nil {
				return err
			}
			trailing, err := app.Ledger.Report(ctx, ledger.TrailingWindow(now, 7))
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Daily AI Cost Report - %s", now.UTC().Format("2006-01-02"))
			if err := app.Notifier.SendCostReport(ctx, title, daily, trailing); err != nil {
				return err
			}
			fmt.Fprintf(app.out(), "%s cost report posted\n", formatter.StyleGreen.Render("✓"))
			return nil
		},
	}
}
