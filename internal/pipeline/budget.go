package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-agent/internal/resilience"
	"github.com/sells-group/leads-agent/pkg/jina"
)

// ErrSearchBudgetExhausted is returned by SearchBudget.Search once the
// per-lead budget is spent.
var ErrSearchBudgetExhausted = eris.New("search budget exhausted")

// SearchBudget is a counting wrapper around the search client. The
// orchestrator creates one per lead run and hands it to the research stage,
// so the budget is enforced structurally: nothing the stage (or a
// misbehaving backend) does can issue more calls than the budget allows.
// Budgets are per-lead and never shared across concurrent runs.
type SearchBudget struct {
	client    jina.Client
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	remaining int
	used      int
}

// newSearchBudget wraps client with a per-lead call budget. The limiter and
// breaker are process-wide and may be nil in tests.
func newSearchBudget(client jina.Client, maxSearches int, limiter *rate.Limiter, breaker *resilience.CircuitBreaker) *SearchBudget {
	return &SearchBudget{
		client:    client,
		limiter:   limiter,
		breaker:   breaker,
		remaining: maxSearches,
	}
}

// Remaining returns how many search calls are left in the budget.
func (b *SearchBudget) Remaining() int {
	return b.remaining
}

// Used returns how many search calls were issued.
func (b *SearchBudget) Used() int {
	return b.used
}

// Search issues one budgeted search call. The budget is decremented before
// the call so a hung or failed call still counts against it.
func (b *SearchBudget) Search(ctx context.Context, query string, opts ...jina.SearchOption) (*jina.SearchResponse, error) {
	if b.remaining <= 0 {
		return nil, ErrSearchBudgetExhausted
	}
	b.remaining--
	b.used++

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pipeline: search rate limit wait")
		}
	}

	var resp *jina.SearchResponse
	call := func(ctx context.Context) error {
		var err error
		resp, err = b.client.Search(ctx, query, opts...)
		return err
	}

	var err error
	if b.breaker != nil {
		err = b.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ReadSite fetches one page via the reader endpoint. Reads are bounded by
// the caller (one per lead), not by the search budget.
func (b *SearchBudget) ReadSite(ctx context.Context, url string) (*jina.ReadResponse, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pipeline: read rate limit wait")
		}
	}
	return b.client.Read(ctx, url)
}
