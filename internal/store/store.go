package store

import (
	"context"
	"time"

	"github.com/sells-group/leads-agent/internal/model"
)

// OutcomeRecord is a journaled pipeline result.
type OutcomeRecord struct {
	ID            string
	CorrelationID string
	Email         string
	Company       string
	Disposition   string
	Score         *int
	Outcome       *model.LeadOutcome
	CreatedAt     time.Time
}

// OutcomeFilter specifies criteria for listing journaled outcomes.
type OutcomeFilter struct {
	Disposition string
	Limit       int
	Offset      int
}

// Store is the persistence interface for the delivery journal. Every
// processed lead is journaled; deliveries are recorded separately so a
// replay can skip leads whose verdict already reached the thread.
type Store interface {
	// Outcomes
	RecordOutcome(ctx context.Context, outcome *model.LeadOutcome) (*OutcomeRecord, error)
	GetOutcome(ctx context.Context, correlationID string) (*OutcomeRecord, error)
	ListOutcomes(ctx context.Context, filter OutcomeFilter) ([]OutcomeRecord, error)

	// Deliveries
	IsDelivered(ctx context.Context, correlationID string) (bool, error)
	MarkDelivered(ctx context.Context, correlationID, channel, messageTS string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
