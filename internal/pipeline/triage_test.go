package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-agent/internal/config"
	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/internal/profile"
	"github.com/sells-group/leads-agent/pkg/anthropic"
	"github.com/sells-group/leads-agent/pkg/jina"
)

func newTestPipeline(ai anthropic.Client, search jina.Client) *Pipeline {
	prof := &profile.Profile{}
	return &Pipeline{
		ai:      ai,
		search:  search,
		profile: prof,
		aiCfg: config.AnthropicConfig{
			TriageModel:   "triage-model",
			ResearchModel: "research-model",
			ScoringModel:  "scoring-model",
		},
		maxSearches:    2,
		triageSystem:   anthropic.BuildCachedSystemBlocks(triagePrompt(prof)),
		researchSystem: anthropic.BuildCachedSystemBlocks(researchPrompt(prof)),
		scoringSystem:  anthropic.BuildCachedSystemBlocks(scoringPrompt(prof)),
	}
}

func TestTriagePursue(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"disposition":"pursue","confidence":0.85,"reason":"asking about pricing","company":"Acme Corp","summary":"Ops lead evaluating vendors.","signals":["budget authority"]}`,
	), nil)

	p := newTestPipeline(ai, nil)
	result, err := p.Triage(context.Background(), model.Lead{
		FirstName: "Jane",
		Email:     "jane@acme.com",
		Message:   "What does your enterprise tier cost?",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DispositionPursue, result.Disposition)
	assert.InDelta(t, 0.85, result.Confidence, 0.001)
	assert.Equal(t, "Acme Corp", result.Company)
	assert.Equal(t, []string{"budget authority"}, result.Signals)
	ai.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestTriageHandlesFencedJSON(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		"```json\n{\"disposition\":\"discard\",\"confidence\":0.95,\"reason\":\"seo spam\"}\n```",
	), nil)

	p := newTestPipeline(ai, nil)
	result, err := p.Triage(context.Background(), model.Lead{Message: "rank #1 on google"})
	require.NoError(t, err)
	assert.Equal(t, model.DispositionDiscard, result.Disposition)
}

func TestTriageInvalidDisposition(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"disposition":"maybe","confidence":0.5,"reason":"unsure"}`,
	), nil)

	p := newTestPipeline(ai, nil)
	_, err := p.Triage(context.Background(), model.Lead{Message: "hello"})
	require.Error(t, err)

	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, "triage", infErr.Stage)
}

func TestTriageConfidenceOutOfRange(t *testing.T) {
	for _, confidence := range []float64{-0.1, 1.5} {
		ai := new(mockAnthropicClient)
		body := fmt.Sprintf(`{"disposition":"pursue","confidence":%v,"reason":"r"}`, confidence)
		ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(body), nil)

		p := newTestPipeline(ai, nil)
		_, err := p.Triage(context.Background(), model.Lead{Message: "hello"})

		var infErr *InferenceError
		require.ErrorAs(t, err, &infErr, "confidence %v must be rejected, not clamped", confidence)
	}
}

func TestResolveCompanyPrecedence(t *testing.T) {
	lead := model.Lead{Company: "Acme", Email: "jane@other.com"}

	assert.Equal(t, "Stated Co", resolveCompany("Stated Co", lead),
		"message-stated company wins")
	assert.Equal(t, "Acme", resolveCompany("", lead),
		"lead company field beats email domain")
	assert.Equal(t, "Other", resolveCompany("", model.Lead{Email: "jane@other.com"}),
		"email domain is the last resort")
	assert.Equal(t, "", resolveCompany("", model.Lead{}))
}
