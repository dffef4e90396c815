package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bingitech/pressroom/internal/agent"
	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/repository"
	"github.com/google/uuid"
)

type orchestrator struct {
	agents   map[domain.AgentKind]agent.Agent
	drafts   repository.DraftRepo
	draftTx  repository.DraftTxRepo
	costs    repository.CostEntryRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewOrchestrator wires the generation pipeline. The agents slice is the
// closed capability set; kinds requested at run time must come from it.
func NewOrchestrator(
	agents []agent.Agent,
	drafts repository.DraftRepo,
	draftTx repository.DraftTxRepo,
	costs repository.CostEntryRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) Orchestrator {
	byKind := make(map[domain.AgentKind]agent.Agent, len(agents))
	for _, a := range agents {
		byKind[a.Kind()] = a
	}
	return &orchestrator{
		agents:   byKind,
		drafts:   drafts,
		draftTx:  draftTx,
		costs:    costs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (o *orchestrator) RunPipeline(ctx context.Context, cfg *brand.Config, req PipelineRequest) (*domain.RunReport, error) {
	start := time.Now().UTC()

	if cfg == nil {
		return nil, &brand.ConfigError{Err: fmt.Errorf("pipeline requires a brand config snapshot")}
	}

	kinds, err := o.resolveKinds(req.Kinds)
	if err != nil {
		return nil, err
	}
	pillars, err := resolvePillars(cfg, req.Pillars)
	if err != nil {
		return nil, err
	}
	seed := req.Seed
	if seed == "" {
		seed = cfg.Version
	}

	report := &domain.RunReport{
		RunID:         uuid.New().String(),
		BrandID:       cfg.BrandID,
		ConfigVersion: cfg.Version,
		Seed:          seed,
		StartedAt:     start,
	}

	// Agents run sequentially in dependency order. A failing agent ends its
	// own slice of the run; the remaining agents still execute.
	for _, kind := range kinds {
		report.Agents = append(report.Agents, o.runAgent(ctx, o.agents[kind], cfg, pillars, seed))
	}

	report.FinishedAt = time.Now().UTC()
	report.Status = runStatus(report)

	observe(ctx, o.observer, "run_pipeline", start, nil, map[string]any{
		"run_id":         report.RunID,
		"brand_id":       report.BrandID,
		"config_version": report.ConfigVersion,
		"seed":           seed,
		"status":         string(report.Status),
		"drafts":         report.DraftCount(),
	})
	return report, nil
}

func (o *orchestrator) runAgent(ctx context.Context, ag agent.Agent, cfg *brand.Config, pillars []string, seed string) domain.AgentResult {
	start := time.Now()
	result := domain.AgentResult{Kind: ag.Kind()}

	for _, pillar := range pillars {
		outcome, err := o.generateOne(ctx, ag, cfg, pillar, seed)
		if err != nil {
			result.Err = err.Error()
			break
		}
		result.Drafts = append(result.Drafts, *outcome)
	}

	result.Duration = time.Since(start)
	return result
}

// generateOne produces or reuses one draft. The existence check makes
// re-runs free: a known id means no provider call and no cost entry. The
// transactional compare-and-create then closes the remaining race window,
// with the cost entry committing only when this process actually created
// the draft.
func (o *orchestrator) generateOne(ctx context.Context, ag agent.Agent, cfg *brand.Config, pillar, seed string) (*domain.DraftOutcome, error) {
	id := ag.DraftID(cfg, pillar, seed)

	exists, err := o.drafts.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checking draft %s: %w", id, err)
	}
	if exists {
		return &domain.DraftOutcome{DraftID: id, Pillar: pillar, Reused: true}, nil
	}

	res, err := ag.Generate(ctx, cfg, pillar, seed)
	if err != nil {
		return nil, fmt.Errorf("agent %s on pillar %q: %w", ag.Kind(), pillar, err)
	}

	reused := false
	err = o.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		created, err := o.draftTx.CreateIfAbsentTx(ctx, tx, res.Draft)
		if err != nil {
			return err
		}
		if !created.Created {
			// A concurrent run won the insert; its transaction carries the
			// cost entry. Adding another here would double-bill.
			reused = true
			return nil
		}
		entry := &domain.CostEntry{
			ID:        uuid.New().String(),
			DraftID:   &res.Draft.ID,
			Service:   res.Billing.Service,
			Operation: res.Billing.Operation,
			Amount:    res.Billing.Amount,
			Currency:  res.Billing.Currency,
			UnitCount: res.Billing.UnitCount,
			Timestamp: time.Now().UTC(),
		}
		return o.costs.AppendTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("persisting draft %s: %w", res.Draft.ID, err)
	}

	return &domain.DraftOutcome{DraftID: res.Draft.ID, Pillar: pillar, Reused: reused}, nil
}

// resolveKinds validates the requested agent kinds and normalizes them into
// execution order. An empty request selects every agent.
func (o *orchestrator) resolveKinds(requested []domain.AgentKind) ([]domain.AgentKind, error) {
	selected := make(map[domain.AgentKind]bool, len(requested))
	for _, k := range requested {
		if !domain.ValidAgentKinds[k] {
			return nil, fmt.Errorf("unknown agent kind %q", k)
		}
		if _, ok := o.agents[k]; !ok {
			return nil, fmt.Errorf("agent kind %q is not wired into this pipeline", k)
		}
		selected[k] = true
	}

	var kinds []domain.AgentKind
	for _, k := range domain.AgentExecutionOrder {
		if _, wired := o.agents[k]; !wired {
			continue
		}
		if len(selected) == 0 || selected[k] {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no agents selected")
	}
	return kinds, nil
}

func resolvePillars(cfg *brand.Config, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return cfg.PillarNames(), nil
	}
	for _, p := range requested {
		if _, err := cfg.FindPillar(p); err != nil {
			return nil, err
		}
	}
	return requested, nil
}

func runStatus(r *domain.RunReport) domain.RunStatus {
	failed := len(r.FailedAgents())
	switch {
	case failed == 0:
		return domain.RunSucceeded
	case failed == len(r.Agents):
		return domain.RunFailed
	default:
		return domain.RunPartial
	}
}
