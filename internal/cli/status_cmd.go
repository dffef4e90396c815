package cli

import (
	"context"
	"fmt"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the brand's drafts grouped by lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			overview, err := app.Status.Overview(context.Background(), cfg.BrandID)
			if err != nil {
				return err
			}

			fmt.Fprint(app.out(), formatter.FormatStatusOverview(overview))
			return nil
		},
	}
}
