package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-agent/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleOutcome(corrID string) *model.LeadOutcome {
	score := &model.ScoreResult{Score: 4, Action: model.ActionFollowUp, Reason: "good fit"}
	return &model.LeadOutcome{
		Lead: model.Lead{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@acme.com",
			Company:   "Acme",
			Message:   "Pricing please",
		},
		Triage: model.TriageResult{
			Disposition: model.DispositionPursue,
			Confidence:  0.8,
			Reason:      "pricing question",
		},
		Score:         score,
		CorrelationID: corrID,
	}
}

func TestSQLite_RecordAndGetOutcome(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec, err := st.RecordOutcome(ctx, sampleOutcome("1718000000.000100"))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "pursue", rec.Disposition)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 4, *rec.Score)

	got, err := st.GetOutcome(ctx, "1718000000.000100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jane@acme.com", got.Email)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, model.DispositionPursue, got.Outcome.Triage.Disposition)
}

func TestSQLite_GetOutcome_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetOutcome(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ListOutcomes_FilterByDisposition(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	pursued := sampleOutcome("a")
	discarded := sampleOutcome("b")
	discarded.Triage.Disposition = model.DispositionDiscard
	discarded.Score = nil

	_, err := st.RecordOutcome(ctx, pursued)
	require.NoError(t, err)
	_, err = st.RecordOutcome(ctx, discarded)
	require.NoError(t, err)

	records, err := st.ListOutcomes(ctx, OutcomeFilter{Disposition: "discard"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].CorrelationID)
	assert.Nil(t, records[0].Score)
}

func TestSQLite_DeliveryJournal(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	delivered, err := st.IsDelivered(ctx, "1718000000.000100")
	require.NoError(t, err)
	assert.False(t, delivered)

	require.NoError(t, st.MarkDelivered(ctx, "1718000000.000100", "C0123", "1718000001.000001"))

	delivered, err = st.IsDelivered(ctx, "1718000000.000100")
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestSQLite_MarkDelivered_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.MarkDelivered(ctx, "x", "C0123", "1"))
	require.NoError(t, st.MarkDelivered(ctx, "x", "C0123", "2"), "re-marking is a no-op")

	delivered, err := st.IsDelivered(ctx, "x")
	require.NoError(t, err)
	assert.True(t, delivered)
}
