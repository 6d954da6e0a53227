package deliver

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/pipeline"
	"github.com/sells-group/leads-agent/internal/store"
	"github.com/sells-group/leads-agent/pkg/slack"
)

// Deliverer posts pipeline outcomes back to the chat surface and journals
// them. Delivery is idempotent on the outcome's correlation id, so a
// replayed or redelivered event never produces a duplicate thread reply.
type Deliverer struct {
	slack   slack.Client
	journal store.Store

	// testChannel, when set, receives detailed standalone posts instead of
	// thread replies. Used to exercise the pipeline without touching the
	// live leads channel.
	testChannel string
	dryRun      bool
}

func New(client slack.Client, journal store.Store, testChannel string, dryRun bool) *Deliverer {
	return &Deliverer{
		slack:       client,
		journal:     journal,
		testChannel: testChannel,
		dryRun:      dryRun,
	}
}

// Deliver journals the outcome and posts its verdict as a reply in the
// source thread. An already delivered correlation id is skipped. A posting
// failure does not lose the classification work: the outcome is journaled
// before the post is attempted.
func (d *Deliverer) Deliver(ctx context.Context, outcome *model.LeadOutcome, channel, threadTS string) error {
	delivered, err := d.journal.IsDelivered(ctx, outcome.CorrelationID)
	if err != nil {
		return eris.Wrap(err, "deliver: check journal")
	}
	if delivered {
		zap.L().Info("verdict already delivered, skipping",
			zap.String("correlation_id", outcome.CorrelationID),
		)
		return nil
	}

	if _, err := d.journal.RecordOutcome(ctx, outcome); err != nil {
		return eris.Wrap(err, "deliver: journal outcome")
	}

	text := pipeline.Format(outcome)
	targetChannel := channel
	targetThread := threadTS
	if d.testChannel != "" {
		text = pipeline.FormatDetailed(outcome)
		targetChannel = d.testChannel
		targetThread = ""
	}

	if d.dryRun {
		zap.L().Info("dry run, suppressing post",
			zap.String("correlation_id", outcome.CorrelationID),
			zap.String("channel", targetChannel),
			zap.String("text", text),
		)
		return nil
	}

	resp, err := d.slack.PostMessage(ctx, slack.PostMessageRequest{
		Channel:  targetChannel,
		Text:     text,
		ThreadTS: targetThread,
	})
	if err != nil {
		// The journaled outcome survives; only the post is lost.
		zap.L().Error("verdict post failed",
			zap.String("correlation_id", outcome.CorrelationID),
			zap.String("channel", targetChannel),
			zap.Error(err),
		)
		return eris.Wrap(err, "deliver: post verdict")
	}

	if err := d.journal.MarkDelivered(ctx, outcome.CorrelationID, resp.Channel, resp.TS); err != nil {
		return eris.Wrap(err, "deliver: mark delivered")
	}

	zap.L().Info("verdict delivered",
		zap.String("correlation_id", outcome.CorrelationID),
		zap.String("channel", resp.Channel),
		zap.String("ts", resp.TS),
	)
	return nil
}
