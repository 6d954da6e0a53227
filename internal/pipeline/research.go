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
	"github.com/sells-group/leads-agent/pkg/jina"
)

// researchResponse is the schema the research model must return.
type researchResponse struct {
	Company *struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Industry    string `json:"industry"`
		Size        string `json:"size"`
		Website     string `json:"website"`
	} `json:"company"`
	Contact *struct {
		FullName string `json:"full_name"`
		Title    string `json:"title"`
		Summary  string `json:"summary"`
	} `json:"contact"`
}

// evidence is one search result captured for the summarization prompt.
type evidence struct {
	query   string
	title   string
	url     string
	snippet string
}

// Research gathers external context for a pursued lead within the search
// budget handed in by the orchestrator. It never fails the lead: backend
// errors produce a degraded (partially or fully empty) result so a pursue
// decision always reaches scoring.
func (p *Pipeline) Research(ctx context.Context, lead model.Lead, triage model.TriageResult, budget *SearchBudget) model.ResearchResult {
	evidence, website, searchErr := p.gatherEvidence(ctx, lead, triage, budget)

	if len(evidence) == 0 {
		result := model.ResearchResult{Searches: budget.Used()}
		if searchErr != nil {
			result.Degraded = true
			result.DegradedReason = searchErr.Error()
			zap.L().Warn("research degraded: no evidence",
				zap.Int("searches", budget.Used()),
				zap.Error(searchErr),
			)
		}
		// No evidence means no summarization call: the model would have
		// nothing to ground its claims in.
		return result
	}

	result, err := p.summarizeEvidence(ctx, lead, triage, evidence, website)
	if err != nil {
		zap.L().Warn("research degraded: summarization failed",
			zap.Int("searches", budget.Used()),
			zap.Error(err),
		)
		return model.ResearchResult{
			Searches:       budget.Used(),
			Degraded:       true,
			DegradedReason: err.Error(),
		}
	}

	result.Searches = budget.Used()
	if searchErr != nil {
		result.Degraded = true
		result.DegradedReason = searchErr.Error()
	}
	return result
}

// gatherEvidence runs the ordered search policy:
//  1. resolve the company via the contact's email domain,
//  2. broaden to the company name only if the domain search was inconclusive,
//  3. contact name + company last, only if budget remains.
//
// It returns collected evidence, the confirmed website (if any), and the
// first search error encountered (searches after an error are still
// attempted while budget remains).
func (p *Pipeline) gatherEvidence(ctx context.Context, lead model.Lead, triage model.TriageResult, budget *SearchBudget) ([]evidence, string, error) {
	var (
		collected []evidence
		website   string
		firstErr  error
	)

	record := func(query string, resp *jina.SearchResponse) {
		for i, r := range resp.Data {
			if i >= 3 { // top results only; the rest is noise
				break
			}
			collected = append(collected, evidence{
				query:   query,
				title:   r.Title,
				url:     r.URL,
				snippet: firstNonEmpty(r.Description, truncate(r.Content, 500)),
			})
			if website == "" && strings.Contains(r.URL, lead.EmailDomain()) && lead.EmailDomain() != "" {
				website = r.URL
			}
		}
	}

	domain := lead.EmailDomain()
	if domain != "" && budget.Remaining() > 0 {
		query := domain + " company"
		resp, err := budget.Search(ctx, query, jina.WithSiteFilter(domain))
		if err != nil {
			firstErr = err
		} else {
			record(query, resp)
		}
	}

	company := triage.Company
	// Broaden to the company name only when the domain pass came up short.
	if company != "" && len(collected) == 0 && budget.Remaining() > 0 {
		query := fmt.Sprintf("%q company", company)
		resp, err := budget.Search(ctx, query)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			record(query, resp)
		}
	}

	if name := lead.FullName(); name != "" && budget.Remaining() > 0 {
		query := fmt.Sprintf("%q %q", name, company)
		if company == "" {
			query = fmt.Sprintf("%q %s", name, domain)
		}
		resp, err := budget.Search(ctx, query)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			record(query, resp)
		}
	}

	// One bounded read of the confirmed site for a first-party description.
	if website != "" {
		if page, err := budget.ReadSite(ctx, website); err == nil && page.Data.Content != "" {
			collected = append(collected, evidence{
				query:   "site:" + website,
				title:   page.Data.Title,
				url:     website,
				snippet: truncate(page.Data.Content, 800),
			})
		}
	}

	return collected, website, firstErr
}

// summarizeEvidence folds raw search evidence into a structured result via
// one inference call.
func (p *Pipeline) summarizeEvidence(ctx context.Context, lead model.Lead, triage model.TriageResult, ev []evidence, website string) (model.ResearchResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Lead:\n- Contact: %s\n- Email: %s\n- Company (best guess): %s\n\n",
		orUnknown(lead.FullName()), orUnknown(lead.Email), orUnknown(triage.Company))
	fmt.Fprintf(&b, "Triage: %s (%.0f%%) - %s\n\n", triage.Disposition, triage.Confidence*100, triage.Reason)
	b.WriteString("Search evidence:\n")
	for i, e := range ev {
		fmt.Fprintf(&b, "[%d] query=%s\n    %s\n    %s\n    %s\n", i+1, e.query, e.title, e.url, e.snippet)
	}

	req := anthropic.MessageRequest{
		Model:       p.aiCfg.ResearchModel,
		MaxTokens:   2048,
		System:      p.researchSystem,
		Temperature: zeroTemperature(),
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	}

	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var callErr error
		resp, callErr = p.ai.CreateMessage(ctx, req)
		return callErr
	})
	if err != nil {
		return model.ResearchResult{}, err
	}
	resp.Usage.LogCost(p.aiCfg.ResearchModel, "research")

	var parsed researchResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &parsed); err != nil {
		return model.ResearchResult{}, err
	}

	var result model.ResearchResult
	if parsed.Company != nil && parsed.Company.Name != "" {
		result.Company = &model.CompanyResearch{
			Name:        parsed.Company.Name,
			Description: parsed.Company.Description,
			Industry:    optString(parsed.Company.Industry),
			Size:        optString(parsed.Company.Size),
			Website:     optString(firstNonEmpty(parsed.Company.Website, website)),
		}
	}
	if parsed.Contact != nil && parsed.Contact.FullName != "" {
		result.Contact = &model.ContactResearch{
			FullName: parsed.Contact.FullName,
			Title:    optString(parsed.Contact.Title),
			Summary:  optString(parsed.Contact.Summary),
		}
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
