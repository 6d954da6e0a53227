package main

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/pkg/slack"
)

// fetchChannelEvents pages through a channel's history, newest first, up to
// limit messages. limit <= 0 means one page.
func fetchChannelEvents(ctx context.Context, client slack.Client, channel string, limit int) ([]extract.RawEvent, error) {
	const pageSize = 200

	var (
		events []extract.RawEvent
		cursor string
	)
	for {
		page := pageSize
		if limit > 0 && limit-len(events) < page {
			page = limit - len(events)
		}

		resp, err := client.History(ctx, slack.HistoryRequest{
			Channel: channel,
			Limit:   page,
			Cursor:  cursor,
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range resp.Messages {
			var ev extract.RawEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				zap.L().Warn("skipping unparsable history message", zap.Error(err))
				continue
			}
			ev.Channel = channel
			events = append(events, ev)
		}

		if !resp.HasMore || resp.ResponseMetadata.NextCursor == "" {
			break
		}
		if limit > 0 && len(events) >= limit {
			break
		}
		cursor = resp.ResponseMetadata.NextCursor
	}
	return events, nil
}
