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

func newReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Route drafts through human review",
	}

	cmd.AddCommand(
		newReviewSubmitCmd(app),
		newReviewDecideCmd(app),
		newReviewQueueCmd(app),
	)
	return cmd
}

func newReviewSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [draft-id]",
		Short: "Post pending drafts to the review channel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			var ids []string
			if len(args) == 1 {
				ids = args
			} else {
				pending, err := app.Status.ReviewQueue(ctx, cfg.BrandID)
				if err != nil {
					return err
				}
				for _, d := range pending {
					ids = append(ids, d.ID)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(app.out(), "No pending drafts to submit.")
				return nil
			}

			failures := 0
			for _, id := range ids {
				msgID, err := app.Review.SubmitForReview(ctx, cfg, id)
				if err != nil {
					failures++
					fmt.Fprintf(app.out(), "%s %s: %v\n", formatter.StyleRed.Render("✗"), id, err)
					continue
				}
				fmt.Fprintf(app.out(), "%s %s → message %s\n", formatter.StyleGreen.Render("✓"), id, msgID)
			}

			switch {
			case failures == len(ids):
				return fmt.Errorf("all %d submissions failed", failures)
			case failures > 0:
				return fmt.Errorf("%d of %d submissions failed: %w", failures, len(ids), ErrPartialRun)
			}
			return nil
		},
	}
}

func newReviewDecideCmd(app *App) *cobra.Command {
	var approve, reject bool
	var reviewer string

	cmd := &cobra.Command{
		Use:   "decide <draft-id>",
		Short: "Record an approve/reject decision for a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID := args[0]

			decision, decided := flagDecision(approve, reject)
			if !decided {
				if !app.interactive() {
					return fmt.Errorf("pass --approve or --reject (interactive form needs a terminal)")
				}
				var err error
				decision, reviewer, err = runDecisionForm(draftID, reviewer)
				if err != nil {
					return err
				}
			}
			if reviewer == "" {
				return fmt.Errorf("--reviewer is required")
			}

			err := app.Review.RecordDecision(context.Background(), draftID, decision, reviewer)
			var rerr *service.ReviewError
			if errors.As(err, &rerr) {
				// Stale decisions arrive; they are warnings, not crashes.
				fmt.Fprintf(app.out(), "%s %v\n", formatter.StyleYellow.Render("ignored:"), rerr)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(app.out(), "%s recorded %s for draft %s (reviewer %s)\n",
				formatter.StyleGreen.Render("✓"), decision, draftID, reviewer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the draft for publishing")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the draft")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Who is deciding")

	return cmd
}

func flagDecision(approve, reject bool) (domain.ReviewDecision, bool) {
	switch {
	case approve && !reject:
		return domain.DecisionApprove, true
	case reject && !approve:
		return domain.DecisionReject, true
	default:
		return "", false
	}
}

func newReviewQueueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Work through pending drafts interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			pending, err := app.Status.ReviewQueue(ctx, cfg.BrandID)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(app.out(), "Review queue is empty.")
				return nil
			}

			if !app.interactive() {
				// Plain listing for pipes and CI.
				for _, d := range pending {
					fmt.Fprintln(app.out(), formatter.FormatDraftLine(d))
				}
				return nil
			}

			return runQueueTUI(app, cfg, pending)
		},
	}
}
