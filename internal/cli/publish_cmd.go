package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/service"
	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var allApproved bool

	cmd := &cobra.Command{
		Use:   "publish [draft-id...]",
		Short: "Post approved drafts to their target platforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if len(args) > 0 && allApproved {
				return fmt.Errorf("pass draft ids or --all-approved, not both")
			}

			ids := args
			if len(ids) == 0 {
				if !allApproved {
					return fmt.Errorf("nothing to publish: pass draft ids or --all-approved")
				}
				cfg, err := app.LoadConfig()
				if err != nil {
					return err
				}
				approved, err := app.Status.ListByStatus(ctx, cfg.BrandID, domain.DraftApproved)
				if err != nil {
					return err
				}
				for _, d := range approved {
					ids = append(ids, d.ID)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(app.out(), "No approved drafts to publish.")
				return nil
			}

			failures := 0
			for _, id := range ids {
				draft, err := app.Publisher.Publish(ctx, id)
				switch {
				case errors.Is(err, service.ErrNotApproved):
					fmt.Fprintf(app.out(), "%s skipped %s: not approved\n",
						formatter.StyleYellow.Render("–"), formatter.ShortID(id))
				case err != nil:
					failures++
					fmt.Fprintf(app.out(), "%s %s: %v\n",
						formatter.StyleRed.Render("✗"), formatter.ShortID(id), err)
				case draft.ExternalPostID != nil:
					fmt.Fprintf(app.out(), "%s published %s as post %s\n",
						formatter.StyleGreen.Render("✓"), formatter.ShortID(id), *draft.ExternalPostID)
				default:
					fmt.Fprintf(app.out(), "%s published %s\n",
						formatter.StyleGreen.Render("✓"), formatter.ShortID(id))
				}
			}

			switch {
			case failures == len(ids):
				return fmt.Errorf("all %d publish attempt(s) failed", failures)
			case failures > 0:
				return fmt.Errorf("%d of %d publish attempt(s) failed: %w", failures, len(ids), ErrPartialRun)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allApproved, "all-approved", false, "Publish every approved draft for the configured brand")

	cmd.AddCommand(newPublishResubmitCmd(app))
	return cmd
}

func newPublishResubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resubmit <draft-id>",
		Short: "Move a failed draft back to approved for another attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := app.Publisher.Resubmit(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintf(app.out(), "%s draft %s is approved again; run `pressroom publish %s` to retry\n",
				formatter.StyleGreen.Render("✓"), formatter.ShortID(id), id)
			return nil
		},
	}
}
