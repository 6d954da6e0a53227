package model

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// LeadOutcome is the terminal, immutable record for one lead run. Research
// and Score are nil when the lead was discarded at triage, or when scoring
// failed (a partial outcome is still deliverable).
type LeadOutcome struct {
	Lead     Lead
	Triage   TriageResult
	Research *ResearchResult
	Score    *ScoreResult

	// CorrelationID ties the outcome back to the source message for reply
	// placement, tracing, and delivery idempotency.
	CorrelationID string
	Elapsed       time.Duration
}

// CorrelationID derives a stable identifier for a lead. The source message
// timestamp wins when available (it doubles as the thread anchor); otherwise
// the lowercased email, otherwise a short content hash so replayed events
// keep colliding with themselves.
func CorrelationID(messageTS string, lead Lead) string {
	if messageTS != "" {
		return messageTS
	}
	if lead.Email != "" {
		return strings.ToLower(lead.Email)
	}

	body := lead.Message
	if body == "" {
		body = lead.RawText
	}
	if len(body) > 500 {
		body = body[:500]
	}
	base := strings.Join([]string{lead.Company, lead.FirstName, lead.LastName, body}, "|")
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])[:12]
}
