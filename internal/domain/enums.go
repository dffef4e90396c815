package domain

type DraftStatus string

const (
	DraftPendingReview DraftStatus = "pending_review"
	DraftApproved      DraftStatus = "approved"
	DraftRejected      DraftStatus = "rejected"
	DraftPublished     DraftStatus = "published"
	DraftFailed        DraftStatus = "failed"
)

// IsTerminal reports whether a draft may no longer be mutated by the
// review gate or publisher. Terminal drafts only leave this state through
// explicit operator resubmission (failed -> approved).
func (s DraftStatus) IsTerminal() bool {
	return s == DraftPublished || s == DraftFailed
}

type AgentKind string

const (
	AgentText   AgentKind = "text"
	AgentVisual AgentKind = "visual"
)

// AgentExecutionOrder is the fixed dependency order the orchestrator uses to
// sequence agents within a run. Cost-aware agents always run before anything
// that consumes their drafts.
var AgentExecutionOrder = []AgentKind{AgentText, AgentVisual}

// ValidAgentKinds is the canonical set of accepted agent kinds.
var ValidAgentKinds = map[AgentKind]bool{
	AgentText: true, AgentVisual: true,
}

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)
