// Package cli wires the pressroom commands. Commands talk to service
// interfaces only; no business rules live here.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/ledger"
	"github.com/bingitech/pressroom/internal/service"
	"github.com/spf13/cobra"
)

// ErrPartialRun marks a command that completed with some failures. main
// translates it into exit code 2 so Makefile-style callers can tell "retry
// the failed part" from "everything is broken".
var ErrPartialRun = errors.New("completed with partial failures")

// CostNotifier posts rendered cost reports to the notification channel.
// notify.Client satisfies this.
type CostNotifier interface {
	SendCostReport(ctx context.Context, title string, report, trailing *domain.CostReport) error
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Orchestrator service.Orchestrator
	Review       service.ReviewGate
	Publisher    service.Publisher
	Status       service.StatusService
	Ledger       ledger.Ledger
	Notifier     CostNotifier

	// LoadConfig reads the brand config snapshot for this invocation.
	LoadConfig func() (*brand.Config, error)

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	Out io.Writer
}

func (app *App) out() io.Writer {
	if app.Out != nil {
		return app.Out
	}
	return os.Stdout
}

func (app *App) interactive() bool {
	return app.IsInteractive != nil && app.IsInteractive()
}

// NewRootCmd creates the top-level "pressroom" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pressroom",
		Short:         "Brand content pipeline: generate, review, publish, account",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newGenerateCmd(app),
		newReviewCmd(app),
		newPublishCmd(app),
		newCostsCmd(app),
		newStatusCmd(app),
		newPlanCmd(app),
	)

	return root
}
