package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/config"
	"github.com/sells-group/leads-agent/internal/deliver"
	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/internal/pipeline"
	"github.com/sells-group/leads-agent/internal/profile"
	"github.com/sells-group/leads-agent/internal/store"
	anthropicpkg "github.com/sells-group/leads-agent/pkg/anthropic"
	"github.com/sells-group/leads-agent/pkg/jina"
	"github.com/sells-group/leads-agent/pkg/slack"
)

// pipelineEnv holds the initialized clients, journal, and pipeline shared
// by the serve/classify/backtest/replay commands.
type pipelineEnv struct {
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Slack     slack.Client
	Extractor *extract.Extractor
	Deliverer *deliver.Deliverer
	Profile   *profile.Profile
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the journal, API clients, profile, and pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate journal")
	}

	prof, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if prof.Empty() {
		zap.L().Warn("no client profile loaded, prompts run without ICP context",
			zap.String("path", cfg.Profile.Path),
		)
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	jinaOpts := []jina.Option{jina.WithBaseURL(cfg.Search.BaseURL)}
	if cfg.Search.SearchBaseURL != "" {
		jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Search.SearchBaseURL))
	}
	jinaClient := jina.NewClient(cfg.Search.JinaKey, jinaOpts...)
	slackClient := slack.NewClient(cfg.Slack.BotToken)

	zap.L().Info("pipeline initialized",
		zap.String("anthropic_key", config.MaskSecret(cfg.Anthropic.Key)),
		zap.String("jina_key", config.MaskSecret(cfg.Search.JinaKey)),
		zap.String("triage_model", cfg.Anthropic.TriageModel),
		zap.Int("max_searches", cfg.Search.MaxSearches),
		zap.Bool("dry_run", cfg.Pipeline.DryRun),
	)

	return &pipelineEnv{
		Store:     st,
		Pipeline:  pipeline.New(cfg, anthropicClient, jinaClient, prof),
		Slack:     slackClient,
		Extractor: extract.New(cfg.Slack.SenderName),
		Deliverer: deliver.New(slackClient, st, cfg.Slack.TestChannelID, cfg.Pipeline.DryRun),
		Profile:   prof,
	}, nil
}
