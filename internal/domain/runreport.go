package domain

import "time"

// DraftOutcome records one draft an agent produced or reused during a run.
type DraftOutcome struct {
	DraftID string
	Pillar  string
	Reused  bool // true when the draft id already existed (idempotent re-run)
}

// AgentResult is the per-agent slice of a run report.
type AgentResult struct {
	Kind     AgentKind
	Drafts   []DraftOutcome
	Err      string // empty on success
	Duration time.Duration
}

// RunReport is the single source of truth for what succeeded and failed in
// one orchestrator run. Partial failures are reported here, never hidden.
type RunReport struct {
	RunID         string
	BrandID       string
	ConfigVersion string
	Seed          string
	StartedAt     time.Time
	FinishedAt    time.Time
	Agents        []AgentResult
	Status        RunStatus
}

// FailedAgents returns the kinds of agents that reported an error.
func (r *RunReport) FailedAgents() []AgentKind {
	var failed []AgentKind
	for _, a := range r.Agents {
		if a.Err != "" {
			failed = append(failed, a.Kind)
		}
	}
	return failed
}

// DraftCount returns the total number of drafts touched by the run,
// including reused ones.
func (r *RunReport) DraftCount() int {
	n := 0
	for _, a := range r.Agents {
		n += len(a.Drafts)
	}
	return n
}
