package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/pkg/slack"
)

var (
	collectChannel string
	collectLimit   int
	collectOut     string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Capture channel history to a file for backtesting",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.RequireSlack(); err != nil {
			return err
		}

		channel := collectChannel
		if channel == "" {
			channel = cfg.Slack.ChannelID
		}
		if channel == "" {
			return eris.New("no channel configured, set slack.channel_id or --channel")
		}

		client := slack.NewClient(cfg.Slack.BotToken)
		events, err := fetchChannelEvents(ctx, client, channel, collectLimit)
		if err != nil {
			return err
		}

		records := make([]extract.Record, 0, len(events))
		for _, ev := range events {
			records = append(records, extract.Record{Event: &ev})
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal records")
		}
		if err := os.WriteFile(collectOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "write capture file %s", collectOut)
		}

		zap.L().Info("capture written",
			zap.String("path", collectOut),
			zap.Int("messages", len(records)),
		)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectChannel, "channel", "", "channel to capture (default from config)")
	collectCmd.Flags().IntVar(&collectLimit, "limit", 500, "max messages to fetch")
	collectCmd.Flags().StringVar(&collectOut, "out", "events.json", "output file")
	rootCmd.AddCommand(collectCmd)
}
