package pipeline

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/resilience"
	"github.com/sells-group/leads-agent/pkg/anthropic"
)

// triageResponse is the schema the triage model must return.
type triageResponse struct {
	Disposition string   `json:"disposition"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	Company     string   `json:"company"`
	Summary     string   `json:"summary"`
	Signals     []string `json:"signals"`
}

// Triage classifies a lead into pursue or discard. Backend failures and
// schema violations surface as *InferenceError; the orchestrator treats
// them as fatal for this lead rather than retrying past the backend's own
// retry budget.
func (p *Pipeline) Triage(ctx context.Context, lead model.Lead) (model.TriageResult, error) {
	req := anthropic.MessageRequest{
		Model:       p.aiCfg.TriageModel,
		MaxTokens:   1024,
		System:      p.triageSystem,
		Temperature: zeroTemperature(),
		Messages: []anthropic.Message{
			{Role: "user", Content: lead.PromptText()},
		},
	}

	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ai.CreateMessage(ctx, req)
		return callErr
	})
	if err != nil {
		return model.TriageResult{}, newInferenceError("triage", err)
	}
	resp.Usage.LogCost(p.aiCfg.TriageModel, "triage")

	var parsed triageResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		return model.TriageResult{}, newInferenceError("triage", eris.Wrap(err, "parse response"))
	}

	if !model.ValidDisposition(parsed.Disposition) {
		return model.TriageResult{}, newInferenceError("triage",
			eris.Errorf("disposition %q outside schema", parsed.Disposition))
	}
	// Out-of-range confidence is a backend contract violation. Clamping
	// would mask a schema problem upstream, so reject instead.
	if parsed.Confidence < 0.0 || parsed.Confidence > 1.0 {
		return model.TriageResult{}, newInferenceError("triage",
			eris.Errorf("confidence %v outside [0,1]", parsed.Confidence))
	}

	result := model.TriageResult{
		Disposition: model.Disposition(parsed.Disposition),
		Confidence:  parsed.Confidence,
		Reason:      parsed.Reason,
		Company:     resolveCompany(parsed.Company, lead),
		Summary:     parsed.Summary,
		Signals:     parsed.Signals,
	}

	zap.L().Debug("triage complete",
		zap.String("disposition", string(result.Disposition)),
		zap.Float64("confidence", result.Confidence),
		zap.String("company", result.Company),
	)
	return result, nil
}

// resolveCompany applies the company resolution precedence: company stated
// in the message (extracted by the model) > company field parsed from the
// lead > email-domain heuristic. A domain guess never overrides a stated
// company.
func resolveCompany(stated string, lead model.Lead) string {
	if stated != "" {
		return stated
	}
	if lead.Company != "" {
		return lead.Company
	}
	return lead.CompanyFromDomain()
}

func zeroTemperature() *float64 {
	t := 0.0
	return &t
}
