package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/resilience"
	"github.com/sells-group/leads-agent/pkg/anthropic"
)

type scoreResponse struct {
	Score  int    `json:"score"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Score rates a pursued lead 1-5 and maps the rating to a recommended
// action. A score outside 1-5 is a schema violation and fails the stage;
// an action inconsistent with the score is corrected locally since the
// mapping is deterministic.
func (p *Pipeline) Score(ctx context.Context, lead model.Lead, triage model.TriageResult, research model.ResearchResult) (*model.ScoreResult, error) {
	req := anthropic.MessageRequest{
		Model:       p.aiCfg.ScoringModel,
		MaxTokens:   1024,
		System:      p.scoringSystem,
		Temperature: zeroTemperature(),
		Messages: []anthropic.Message{
			{Role: "user", Content: scoringInput(lead, triage, research)},
		},
	}

	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ai.CreateMessage(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, newInferenceError("scoring", err)
	}
	resp.Usage.LogCost(p.aiCfg.ScoringModel, "scoring")

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		return nil, newInferenceError("scoring", err)
	}

	if parsed.Score < 1 || parsed.Score > 5 {
		return nil, newInferenceError("scoring",
			fmt.Errorf("score %d outside 1-5", parsed.Score))
	}

	result := &model.ScoreResult{
		Score:  parsed.Score,
		Action: model.Action(parsed.Action),
		Reason: parsed.Reason,
	}
	if !model.ValidAction(parsed.Action) || !result.Consistent() {
		expected := model.ActionForScore(result.Score)
		zap.L().Warn("score action inconsistent with rating, corrected",
			zap.Int("score", result.Score),
			zap.String("stated_action", string(result.Action)),
			zap.String("action", string(expected)),
		)
		result.Action = expected
	}
	return result, nil
}

func scoringInput(lead model.Lead, triage model.TriageResult, research model.ResearchResult) string {
	var b strings.Builder
	b.WriteString("Lead:\n")
	b.WriteString(lead.PromptText())
	fmt.Fprintf(&b, "\n\nTriage: %s (%.0f%%) - %s\n", triage.Disposition, triage.Confidence*100, triage.Reason)
	if triage.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", triage.Summary)
	}

	if c := research.Company; c != nil {
		fmt.Fprintf(&b, "\nCompany research: %s\n%s\n", c.Name, c.Description)
		if c.Industry != nil {
			fmt.Fprintf(&b, "Industry: %s\n", *c.Industry)
		}
		if c.Size != nil {
			fmt.Fprintf(&b, "Size: %s\n", *c.Size)
		}
	}
	if ct := research.Contact; ct != nil {
		fmt.Fprintf(&b, "\nContact research: %s\n", ct.FullName)
		if ct.Title != nil {
			fmt.Fprintf(&b, "Title: %s\n", *ct.Title)
		}
		if ct.Summary != nil {
			fmt.Fprintf(&b, "%s\n", *ct.Summary)
		}
	}
	if research.Degraded {
		fmt.Fprintf(&b, "\nNote: research was incomplete (%s). Score on available information.\n", research.DegradedReason)
	}
	return b.String()
}
