package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-agent/internal/config"
	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/profile"
	"github.com/sells-group/leads-agent/internal/resilience"
	"github.com/sells-group/leads-agent/pkg/anthropic"
	"github.com/sells-group/leads-agent/pkg/jina"
)

// Pipeline runs a lead through triage, research, and scoring. One Pipeline
// serves many leads concurrently; the rate limiter and circuit breaker on
// the search backend are shared, the search budget is per lead.
type Pipeline struct {
	ai      anthropic.Client
	search  jina.Client
	profile *profile.Profile

	aiCfg       config.AnthropicConfig
	maxSearches int
	limiter     *rate.Limiter
	breaker     *resilience.CircuitBreaker

	triageSystem   []anthropic.SystemBlock
	researchSystem []anthropic.SystemBlock
	scoringSystem  []anthropic.SystemBlock
}

func New(cfg *config.Config, ai anthropic.Client, search jina.Client, prof *profile.Profile) *Pipeline {
	return &Pipeline{
		ai:          ai,
		search:      search,
		profile:     prof,
		aiCfg:       cfg.Anthropic,
		maxSearches: cfg.Search.MaxSearches,
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.Search.RatePerMinute)/60.0), 1),
		breaker:     resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),

		triageSystem:   anthropic.BuildCachedSystemBlocks(triagePrompt(prof)),
		researchSystem: anthropic.BuildCachedSystemBlocks(researchPrompt(prof)),
		scoringSystem:  anthropic.BuildCachedSystemBlocks(scoringPrompt(prof)),
	}
}

// Run processes a single lead end to end. It returns an error only when
// triage fails: a discard verdict short-circuits, research degradation and
// scoring failure both still yield a deliverable outcome.
func (p *Pipeline) Run(ctx context.Context, lead model.Lead, messageTS string) (*model.LeadOutcome, error) {
	start := time.Now()
	corrID := model.CorrelationID(messageTS, lead)
	log := zap.L().With(
		zap.String("correlation_id", corrID),
		zap.String("email", lead.Email),
	)
	log.Info("lead started", zap.String("company", lead.Company))

	outcome := &model.LeadOutcome{
		Lead:          lead,
		CorrelationID: corrID,
	}

	triage, err := p.Triage(ctx, lead)
	if err != nil {
		log.Error("triage failed", zap.Error(err))
		return nil, err
	}
	outcome.Triage = triage

	if !triage.Pursue() {
		outcome.Elapsed = time.Since(start)
		log.Info("lead discarded",
			zap.Float64("confidence", triage.Confidence),
			zap.String("reason", triage.Reason),
			zap.Duration("elapsed", outcome.Elapsed),
		)
		return outcome, nil
	}

	budget := newSearchBudget(p.search, p.maxSearches, p.limiter, p.breaker)
	research := p.Research(ctx, lead, triage, budget)
	outcome.Research = &research

	score, err := p.Score(ctx, lead, triage, research)
	if err != nil {
		// Partial outcomes are still worth delivering: triage and research
		// stand on their own.
		log.Error("scoring failed, delivering partial outcome", zap.Error(err))
	} else {
		outcome.Score = score
	}

	outcome.Elapsed = time.Since(start)
	fields := []zap.Field{
		zap.String("disposition", string(triage.Disposition)),
		zap.Int("searches", research.Searches),
		zap.Bool("degraded", research.Degraded),
		zap.Duration("elapsed", outcome.Elapsed),
	}
	if outcome.Score != nil {
		fields = append(fields,
			zap.Int("score", outcome.Score.Score),
			zap.String("action", string(outcome.Score.Action)),
		)
	}
	log.Info("lead finished", fields...)
	return outcome, nil
}
