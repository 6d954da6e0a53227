package model

// Action is the recommended next step for a scored lead.
type Action string

const (
	ActionDiscard    Action = "discard"
	ActionFollowUp   Action = "follow_up"
	ActionPrioritize Action = "prioritize"
)

// ValidAction reports whether s is a recognized action value.
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionDiscard, ActionFollowUp, ActionPrioritize:
		return true
	}
	return false
}

// ActionForScore maps a 1-5 score to its canonical action:
// 1-2 discard, 3-4 follow_up, 5 prioritize.
func ActionForScore(score int) Action {
	switch {
	case score <= 2:
		return ActionDiscard
	case score <= 4:
		return ActionFollowUp
	default:
		return ActionPrioritize
	}
}

// ScoreResult is the output of the scoring stage.
type ScoreResult struct {
	// Score is a closed 1-5 priority scale.
	Score  int
	Action Action
	Reason string
}

// Consistent reports whether the action matches the canonical mapping for
// the score. The scoring stage enforces this before returning.
func (s ScoreResult) Consistent() bool {
	return s.Action == ActionForScore(s.Score)
}
