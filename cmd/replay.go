package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/model"
)

var (
	replayChannel string
	replayLimit   int
	replayDryRun  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-process recent channel history and deliver missing verdicts",
	Long:  "Fetches the channel's recent messages, extracts lead notifications, classifies each one, and posts verdicts as thread replies. Leads already in the delivery journal are skipped, so replaying is safe after downtime.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.RequireSlack(); err != nil {
			return err
		}
		if replayDryRun {
			cfg.Pipeline.DryRun = true
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		channel := replayChannel
		if channel == "" {
			channel = cfg.Slack.ChannelID
		}
		if channel == "" {
			return eris.New("no channel configured, set slack.channel_id or --channel")
		}

		events, err := fetchChannelEvents(ctx, env.Slack, channel, replayLimit)
		if err != nil {
			return err
		}

		var processed, skipped, failed int
		for _, ev := range events {
			if !env.Extractor.Match(ev) {
				continue
			}
			lead, ok := env.Extractor.FromEvent(ev)
			if !ok {
				continue
			}

			corrID := model.CorrelationID(ev.TS, *lead)
			delivered, err := env.Store.IsDelivered(ctx, corrID)
			if err != nil {
				return err
			}
			if delivered {
				skipped++
				continue
			}

			outcome, err := env.Pipeline.Run(ctx, *lead, ev.TS)
			if err != nil {
				zap.L().Error("replay lead failed",
					zap.String("email", lead.Email),
					zap.String("ts", ev.TS),
					zap.Error(err),
				)
				failed++
				continue
			}
			if err := env.Deliverer.Deliver(ctx, outcome, channel, ev.TS); err != nil {
				zap.L().Error("replay delivery failed",
					zap.String("correlation_id", outcome.CorrelationID),
					zap.Error(err),
				)
				failed++
				continue
			}
			processed++
		}

		zap.L().Info("replay finished",
			zap.Int("messages", len(events)),
			zap.Int("processed", processed),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed),
		)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayChannel, "channel", "", "channel to replay (default from config)")
	replayCmd.Flags().IntVar(&replayLimit, "limit", 100, "max messages to fetch")
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "journal outcomes without posting replies")
	rootCmd.AddCommand(replayCmd)
}
