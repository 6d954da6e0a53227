package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-agent/internal/model"
	"github.com/sells-group/leads-agent/pkg/anthropic"
	"github.com/sells-group/leads-agent/pkg/jina"
)

// forModel matches a CreateMessage request by its model name, so each
// pipeline stage can be stubbed independently.
func forModel(name string) interface{} {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == name
	})
}

func TestRunDiscardShortCircuits(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, forModel("triage-model")).Return(textResponse(
		`{"disposition":"discard","confidence":0.9,"reason":"recruiting outreach"}`,
	), nil)
	search := new(mockJinaClient)

	p := newTestPipeline(ai, search)
	outcome, err := p.Run(context.Background(), model.Lead{
		Email:   "spam@agency.com",
		Message: "We have great candidates for you",
	}, "1718000000.000100")
	require.NoError(t, err)

	assert.Equal(t, model.DispositionDiscard, outcome.Triage.Disposition)
	assert.Nil(t, outcome.Research)
	assert.Nil(t, outcome.Score)
	assert.Equal(t, "1718000000.000100", outcome.CorrelationID)

	search.AssertNotCalled(t, "Search")
	ai.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestRunPursueFullPipeline(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, forModel("triage-model")).Return(textResponse(
		`{"disposition":"pursue","confidence":0.8,"reason":"pricing question","company":"Acme","summary":"Buyer evaluating options."}`,
	), nil)
	ai.On("CreateMessage", mock.Anything, forModel("research-model")).Return(textResponse(
		`{"company":{"name":"Acme","description":"Makes widgets.","industry":"Manufacturing","size":"200-500","website":"https://acme.example"},"contact":{"full_name":"Jane Doe","title":"VP Ops","summary":"Runs procurement."}}`,
	), nil)
	ai.On("CreateMessage", mock.Anything, forModel("scoring-model")).Return(textResponse(
		`{"score":5,"action":"prioritize","reason":"strong fit with budget"}`,
	), nil)

	search := new(mockJinaClient)
	search.On("Search", mock.Anything, mock.Anything).Return(&jina.SearchResponse{
		Data: []jina.SearchResult{
			{Title: "Acme", URL: "https://example.org/acme", Description: "Widget maker"},
		},
	}, nil)

	p := newTestPipeline(ai, search)
	outcome, err := p.Run(context.Background(), model.Lead{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@acme.com",
		Message:   "What does the enterprise plan cost?",
	}, "1718000000.000200")
	require.NoError(t, err)

	require.NotNil(t, outcome.Research)
	require.NotNil(t, outcome.Research.Company)
	assert.Equal(t, "Acme", outcome.Research.Company.Name)
	assert.False(t, outcome.Research.Degraded)
	assert.LessOrEqual(t, outcome.Research.Searches, 2)

	require.NotNil(t, outcome.Score)
	assert.Equal(t, 5, outcome.Score.Score)
	assert.Equal(t, model.ActionPrioritize, outcome.Score.Action)
}

func TestRunSearchFailureDegradesResearch(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, forModel("triage-model")).Return(textResponse(
		`{"disposition":"pursue","confidence":0.7,"reason":"demo request","company":"Acme"}`,
	), nil)
	ai.On("CreateMessage", mock.Anything, forModel("scoring-model")).Return(textResponse(
		`{"score":3,"action":"follow_up","reason":"plausible but unverified"}`,
	), nil)

	search := new(mockJinaClient)
	search.On("Search", mock.Anything, mock.Anything).Return(nil, eris.New("search backend down"))

	p := newTestPipeline(ai, search)
	outcome, err := p.Run(context.Background(), model.Lead{
		Email:   "jane@acme.com",
		Message: "Can I get a demo?",
	}, "1718000000.000300")
	require.NoError(t, err, "research failure must not fail the lead")

	require.NotNil(t, outcome.Research)
	assert.True(t, outcome.Research.Degraded)
	assert.Nil(t, outcome.Research.Company)

	require.NotNil(t, outcome.Score, "lead still reaches scoring")
	assert.Equal(t, 3, outcome.Score.Score)
}

func TestRunScoringFailureYieldsPartialOutcome(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, forModel("triage-model")).Return(textResponse(
		`{"disposition":"pursue","confidence":0.75,"reason":"inbound interest","company":"Acme"}`,
	), nil)
	ai.On("CreateMessage", mock.Anything, forModel("research-model")).Return(textResponse(
		`{"company":{"name":"Acme","description":"Widgets."},"contact":null}`,
	), nil)
	ai.On("CreateMessage", mock.Anything, forModel("scoring-model")).Return(textResponse(
		`{"score":9,"action":"prioritize","reason":"off scale"}`,
	), nil)

	search := new(mockJinaClient)
	search.On("Search", mock.Anything, mock.Anything).Return(&jina.SearchResponse{
		Data: []jina.SearchResult{{Title: "Acme", URL: "https://example.org/a"}},
	}, nil)

	p := newTestPipeline(ai, search)
	outcome, err := p.Run(context.Background(), model.Lead{
		Email:   "jane@acme.com",
		Message: "Interested in your product",
	}, "1718000000.000400")
	require.NoError(t, err)

	assert.NotNil(t, outcome.Research)
	assert.Nil(t, outcome.Score, "out-of-range score fails the stage, not the lead")
	assert.True(t, outcome.Triage.Pursue())
}

func TestScoreCorrectsInconsistentAction(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"score":2,"action":"prioritize","reason":"weak fit"}`,
	), nil)

	p := newTestPipeline(ai, nil)
	result, err := p.Score(context.Background(), model.Lead{Message: "hi"},
		model.TriageResult{Disposition: model.DispositionPursue, Confidence: 0.6},
		model.ResearchResult{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, model.ActionDiscard, result.Action, "action follows the canonical mapping")
}

func TestScoreOutOfRange(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`{"score":0,"action":"discard","reason":"n/a"}`,
	), nil)

	p := newTestPipeline(ai, nil)
	_, err := p.Score(context.Background(), model.Lead{Message: "hi"},
		model.TriageResult{}, model.ResearchResult{})

	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, "scoring", infErr.Stage)
}

func TestCorrelationIDFallbacks(t *testing.T) {
	withEmail := model.Lead{Email: "Jane@Acme.com", Message: "hi"}
	assert.Equal(t, "jane@acme.com", model.CorrelationID("", withEmail))

	noEmail := model.Lead{FirstName: "Jane", Company: "Acme", Message: "hi"}
	id := model.CorrelationID("", noEmail)
	assert.Len(t, id, 12)
	assert.Equal(t, id, model.CorrelationID("", noEmail), "content hash is stable")
}
