package model

// Disposition is the triage decision on a lead.
type Disposition string

const (
	// DispositionPursue marks a lead worth researching and scoring.
	DispositionPursue Disposition = "pursue"
	// DispositionDiscard marks a lead not worth further spend. This is the
	// default for anything ambiguous.
	DispositionDiscard Disposition = "discard"
)

// ValidDisposition reports whether s is a recognized disposition value.
func ValidDisposition(s string) bool {
	switch Disposition(s) {
	case DispositionPursue, DispositionDiscard:
		return true
	}
	return false
}

// TriageResult is the output of the triage stage.
type TriageResult struct {
	Disposition Disposition
	// Confidence is always within [0.0, 1.0]; the stage rejects out-of-range
	// values from the backend rather than clamping them.
	Confidence float64
	Reason     string
	// Company is the resolved company name. Resolution order: company stated
	// in the message > company field parsed from the lead > email-domain
	// heuristic. Empty when none of those yield anything.
	Company string
	// Summary is a 1-2 sentence recap of the inquiry.
	Summary string
	// Signals are short tags describing why the lead was classified this way.
	Signals []string
}

// Pursue reports whether the lead should continue to research and scoring.
func (t TriageResult) Pursue() bool {
	return t.Disposition == DispositionPursue
}
