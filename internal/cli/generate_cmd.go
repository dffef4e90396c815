package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// agentKindsValue parses a comma-separated agent kind list as a pflag value,
// rejecting unknown kinds at flag-parse time.
type agentKindsValue struct {
	kinds []domain.AgentKind
}

var _ pflag.Value = (*agentKindsValue)(nil)

func (v *agentKindsValue) String() string {
	parts := make([]string, len(v.kinds))
	for i, k := range v.kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func (v *agentKindsValue) Set(raw string) error {
	v.kinds = nil
	for _, part := range strings.Split(raw, ",") {
		k := domain.AgentKind(strings.TrimSpace(part))
		if k == "" {
			continue
		}
		if !domain.ValidAgentKinds[k] {
			return fmt.Errorf("unknown agent kind %q (valid: text, visual)", k)
		}
		v.kinds = append(v.kinds, k)
	}
	return nil
}

func (v *agentKindsValue) Type() string { return "kinds" }

func newGenerateCmd(app *App) *cobra.Command {
	var agents agentKindsValue
	var pillars []string
	var seed string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the generation pipeline for the configured brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			report, err := app.Orchestrator.RunPipeline(context.Background(), cfg, service.PipelineRequest{
				Kinds:   agents.kinds,
				Pillars: pillars,
				Seed:    seed,
			})
			if err != nil {
				return err
			}

			fmt.Fprint(app.out(), formatter.FormatRunReport(report))

			switch report.Status {
			case domain.RunPartial:
				return fmt.Errorf("%d agent(s) failed: %w", len(report.FailedAgents()), ErrPartialRun)
			case domain.RunFailed:
				return fmt.Errorf("all agents failed")
			}
			return nil
		},
	}

	cmd.Flags().Var(&agents, "agents", "Comma-separated agent kinds to run (default: all)")
	cmd.Flags().StringArrayVar(&pillars, "pillar", nil, "Content pillar to generate (repeatable; default: all)")
	cmd.Flags().StringVar(&seed, "seed", "", "Generation seed (default: brand config version)")

	return cmd
}
