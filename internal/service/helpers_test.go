package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bingitech/pressroom/internal/agent"
	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/platform"
	"github.com/bingitech/pressroom/internal/repository"
	"github.com/bingitech/pressroom/internal/testutil"
	"github.com/shopspring/decimal"
)

// stubAgent is an in-memory Agent with scripted per-pillar failures and a
// call counter, so tests can assert how often generation actually ran.
type stubAgent struct {
	kind     domain.AgentKind
	failOn   map[string]error
	genCalls atomic.Int32
}

func newStubAgent(kind domain.AgentKind) *stubAgent {
	return &stubAgent{kind: kind, failOn: map[string]error{}}
}

func (a *stubAgent) Kind() domain.AgentKind { return a.kind }

func (a *stubAgent) DraftID(cfg *brand.Config, pillar, seed string) string {
	return domain.NewDraftID(cfg.BrandID, a.discriminator(), pillar, seed)
}

func (a *stubAgent) discriminator() string {
	if a.kind == domain.AgentVisual {
		return "micro-blog/visual"
	}
	return "micro-blog"
}

func (a *stubAgent) Generate(ctx context.Context, cfg *brand.Config, pillar, seed string) (*agent.Result, error) {
	a.genCalls.Add(1)
	if err := a.failOn[pillar]; err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	draft := &domain.Draft{
		ID:        a.DraftID(cfg, pillar, seed),
		BrandID:   cfg.BrandID,
		Platform:  "micro-blog",
		Pillar:    pillar,
		Body:      fmt.Sprintf("%s content for %s", a.kind, pillar),
		Status:    domain.DraftPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.kind == domain.AgentVisual {
		draft.MediaRefs = []string{"https://cdn.example.com/" + draft.ID + ".png"}
	}
	return &agent.Result{
		Draft: draft,
		Billing: agent.Billing{
			Service:   billingService(a.kind),
			Operation: string(a.kind) + "_generation",
			Amount:    decimal.RequireFromString("0.03"),
			Currency:  "USD",
			UnitCount: 1,
		},
	}, nil
}

func billingService(kind domain.AgentKind) string {
	if kind == domain.AgentVisual {
		return "ideogram"
	}
	return "openai"
}

// stubNotifier records submissions and hands out sequential message ids.
type stubNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (n *stubNotifier) SubmitDraft(ctx context.Context, cfg *brand.Config, draft *domain.Draft) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	n.calls++
	return fmt.Sprintf("msg-%d", n.calls), nil
}

func (n *stubNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// stubPlatform scripts publish outcomes. Posts deduplicate by idempotency
// key, matching the contract of the real platform.
type stubPlatform struct {
	mu            sync.Mutex
	posts         map[string]string // idempotency key -> post id
	postErrs      []error           // consumed one per Post call
	landOnError   bool              // record the post even when erroring (ambiguous outcomes)
	lookupErr     error
	postCalls     int
	lookupCalls   int
	lastPostedKey string
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{posts: map[string]string{}}
}

func (p *stubPlatform) Post(ctx context.Context, req *platform.PostRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postCalls++
	p.lastPostedKey = req.IdempotencyKey

	if len(p.postErrs) > 0 {
		err := p.postErrs[0]
		p.postErrs = p.postErrs[1:]
		if err != nil {
			if p.landOnError {
				p.recordLocked(req.IdempotencyKey)
			}
			return "", err
		}
	}
	return p.recordLocked(req.IdempotencyKey), nil
}

func (p *stubPlatform) recordLocked(key string) string {
	if id, ok := p.posts[key]; ok {
		return id
	}
	id := fmt.Sprintf("post-%d", len(p.posts)+1)
	p.posts[key] = id
	return id
}

func (p *stubPlatform) LookupByIdempotencyKey(ctx context.Context, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookupCalls++
	if p.lookupErr != nil {
		return "", p.lookupErr
	}
	if id, ok := p.posts[key]; ok {
		return id, nil
	}
	return "", platform.ErrPostNotFound
}

// fixture bundles the sqlite-backed collaborators every service test needs.
type fixture struct {
	database *sql.DB
	drafts   *repository.SQLiteDraftRepo
	costs    *repository.SQLiteCostEntryRepo
	uow      db.UnitOfWork
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &fixture{
		database: database,
		drafts:   repository.NewSQLiteDraftRepo(database),
		costs:    repository.NewSQLiteCostEntryRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

func newFileFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewFileTestDB(t)
	return &fixture{
		database: database,
		drafts:   repository.NewSQLiteDraftRepo(database),
		costs:    repository.NewSQLiteCostEntryRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

func (f *fixture) orchestrator(agents ...agent.Agent) Orchestrator {
	return NewOrchestrator(agents, f.drafts, f.drafts, f.costs, f.uow)
}

// seedDraft persists a fixture draft in the given status.
func (f *fixture) seedDraft(t *testing.T, status domain.DraftStatus, opts ...testutil.DraftOption) *domain.Draft {
	t.Helper()
	opts = append(opts, testutil.WithDraftStatus(status))
	d := testutil.NewTestDraft("bingitech", "technical_deep_dives", opts...)
	res, err := f.drafts.CreateIfAbsent(context.Background(), d)
	if err != nil {
		t.Fatalf("seeding draft: %v", err)
	}
	if !res.Created {
		t.Fatalf("fixture draft %s already existed", d.ID)
	}
	return res.Draft
}
