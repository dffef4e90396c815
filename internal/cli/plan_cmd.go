package cli

import (
	"fmt"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/scheduler"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the weekly posting plan derived from pillar weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			plan, err := scheduler.BuildWeeklyPlan(cfg)
			if err != nil {
				return err
			}

			fmt.Fprint(app.out(), formatter.FormatWeeklyPlan(plan))
			return nil
		},
	}
}
