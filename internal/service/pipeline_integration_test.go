package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent runs over the same config version race on the same draft ids.
// The compare-and-create inside the transaction must leave exactly one draft
// and exactly one cost entry per id, with every loser observing a reuse.
func TestPipeline_ConcurrentRunsProduceOneCostEntryPerDraft(t *testing.T) {
	f := newFileFixture(t)
	cfg := testutil.NewTestBrandConfig("v1")
	ctx := context.Background()

	const runners = 8
	reports := make([]*domain.RunReport, runners)
	errs := make([]error, runners)

	var wg sync.WaitGroup
	for i := 0; i < runners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orch := f.orchestrator(newStubAgent(domain.AgentText), newStubAgent(domain.AgentVisual))
			reports[i], errs[i] = orch.RunPipeline(ctx, cfg, PipelineRequest{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "runner %d", i)
		require.Equal(t, domain.RunSucceeded, reports[i].Status, "runner %d", i)
	}

	// All runners agree on the draft ids.
	ids := map[string]bool{}
	for _, r := range reports {
		for _, ar := range r.Agents {
			for _, outcome := range ar.Drafts {
				ids[outcome.DraftID] = true
			}
		}
	}
	assert.Len(t, ids, 4, "two agents times two pillars, shared across runners")

	for id := range ids {
		entries, err := f.costs.ListByDraft(ctx, id)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "draft %s must be billed exactly once", id)
	}

	// Exactly one runner created each draft; everyone else reused it.
	for id := range ids {
		created := 0
		for _, r := range reports {
			for _, ar := range r.Agents {
				for _, outcome := range ar.Drafts {
					if outcome.DraftID == id && !outcome.Reused {
						created++
					}
				}
			}
		}
		assert.Equal(t, 1, created, "draft %s must have exactly one creator", id)
	}
}

// End-to-end lifecycle: generate, submit, approve, publish. Exercises the
// services against shared sqlite state the way the CLI wires them.
func TestPipeline_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	cfg := testutil.NewTestBrandConfig("v1")
	ctx := context.Background()

	orch := f.orchestrator(newStubAgent(domain.AgentText))
	gate := NewReviewGate(f.drafts, &stubNotifier{})
	client := newStubPlatform()
	pub := fastPublisher(f, client)

	report, err := orch.RunPipeline(ctx, cfg, PipelineRequest{Pillars: []string{"technical_deep_dives"}})
	require.NoError(t, err)
	require.Equal(t, 1, report.DraftCount())
	draftID := report.Agents[0].Drafts[0].DraftID

	msgID, err := gate.SubmitForReview(ctx, cfg, draftID)
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)

	require.NoError(t, gate.RecordDecision(ctx, draftID, domain.DecisionApprove, "casey"))

	published, err := pub.Publish(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftPublished, published.Status)
	require.NotNil(t, published.ExternalPostID)

	// Re-running generation after publish must not disturb the published draft.
	rerun, err := orch.RunPipeline(ctx, cfg, PipelineRequest{Pillars: []string{"technical_deep_dives"}})
	require.NoError(t, err)
	assert.True(t, rerun.Agents[0].Drafts[0].Reused)

	final, err := f.drafts.GetByID(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftPublished, final.Status)

	entries, err := f.costs.ListByDraft(ctx, draftID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
