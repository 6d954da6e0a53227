package main

import (
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/pipeline"
)

var (
	backtestConcurrency   int
	backtestSkipDelivered bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest <events-file>",
	Short: "Run captured events through the pipeline without posting",
	Long:  "Loads a capture file written by the collect command, extracts the lead notifications, classifies each one concurrently, and prints the verdicts to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := extract.LoadRecords(args[0])
		if err != nil {
			return err
		}
		leads := env.Extractor.LeadsFromRecords(records)
		zap.L().Info("backtest loaded",
			zap.Int("records", len(records)),
			zap.Int("leads", len(leads)),
		)
		if len(leads) == 0 {
			return eris.New("no lead notifications in capture file")
		}

		concurrency := backtestConcurrency
		if concurrency == 0 {
			concurrency = cfg.Pipeline.MaxConcurrentLeads
		}

		var mu sync.Mutex
		outcomes := make([]*model.LeadOutcome, len(leads))
		var pursued, discarded, failed int

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, le := range leads {
			g.Go(func() error {
				if backtestSkipDelivered {
					corrID := model.CorrelationID(le.Event.TS, le.Lead)
					delivered, err := env.Store.IsDelivered(gctx, corrID)
					if err != nil {
						return err
					}
					if delivered {
						zap.L().Info("skipping delivered lead", zap.String("correlation_id", corrID))
						return nil
					}
				}

				outcome, err := env.Pipeline.Run(gctx, le.Lead, le.Event.TS)
				if err != nil {
					// One bad lead does not abort the batch.
					zap.L().Error("backtest lead failed",
						zap.String("email", le.Lead.Email),
						zap.Error(err),
					)
					mu.Lock()
					failed++
					mu.Unlock()
					return nil
				}

				mu.Lock()
				outcomes[i] = outcome
				if outcome.Triage.Pursue() {
					pursued++
				} else {
					discarded++
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, outcome := range outcomes {
			if outcome == nil {
				continue
			}
			fmt.Printf("=== %s ===\n%s\n\n", outcome.CorrelationID, pipeline.FormatDetailed(outcome))
		}
		fmt.Printf("leads: %d  pursued: %d  discarded: %d  failed: %d\n",
			len(leads), pursued, discarded, failed)
		return nil
	},
}

func init() {
	backtestCmd.Flags().IntVar(&backtestConcurrency, "concurrency", 0, "concurrent leads (default from config)")
	backtestCmd.Flags().BoolVar(&backtestSkipDelivered, "skip-delivered", false, "skip leads already in the delivery journal")
	rootCmd.AddCommand(backtestCmd)
}
