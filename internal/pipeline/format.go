package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/leads-agent/internal/model"
)

// actionLabels map actions to the labels sales reps see in the thread.
var actionLabels = map[model.Action]string{
	model.ActionDiscard:    "Discard",
	model.ActionFollowUp:   "Follow up",
	model.ActionPrioritize: "*Prioritize*",
}

// Format renders an outcome as a Slack mrkdwn thread reply. It is a pure
// function of the outcome: sections with no data are omitted rather than
// rendered empty.
func Format(o *model.LeadOutcome) string {
	var b strings.Builder

	if !o.Triage.Pursue() {
		fmt.Fprintf(&b, "🚫 *IGNORE* (%.0f%%)\n", o.Triage.Confidence*100)
		if o.Triage.Reason != "" {
			fmt.Fprintf(&b, "_%s_", o.Triage.Reason)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	fmt.Fprintf(&b, "✅ *PURSUE* (%.0f%%)\n", o.Triage.Confidence*100)
	if o.Triage.Reason != "" {
		fmt.Fprintf(&b, "_%s_\n", o.Triage.Reason)
	}
	if o.Triage.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", o.Triage.Summary)
	}
	if len(o.Triage.Signals) > 0 {
		b.WriteString("\n")
		for _, s := range o.Triage.Signals {
			fmt.Fprintf(&b, "• %s\n", s)
		}
	}

	if o.Research != nil {
		writeCompany(&b, o.Research.Company)
		writeContact(&b, o.Research.Contact)
		if o.Research.Degraded {
			fmt.Fprintf(&b, "\n⚠️ _Research incomplete: %s_\n", o.Research.DegradedReason)
		}
	}

	if s := o.Score; s != nil {
		fmt.Fprintf(&b, "\n*Score: %d/5* → %s", s.Score, actionLabels[s.Action])
		if s.Reason != "" {
			fmt.Fprintf(&b, "\n_%s_", s.Reason)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatDetailed prepends the parsed lead fields to the standard rendering.
// Used when posting to a review channel where the source notification is
// not in the same thread.
func FormatDetailed(o *model.LeadOutcome) string {
	var b strings.Builder
	b.WriteString("*Lead*\n")
	if name := o.Lead.FullName(); name != "" {
		fmt.Fprintf(&b, "Name: %s\n", name)
	}
	if o.Lead.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", o.Lead.Email)
	}
	if o.Lead.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", o.Lead.Company)
	}
	if o.Lead.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", o.Lead.Message)
	}
	b.WriteString("\n")
	b.WriteString(Format(o))
	return b.String()
}

func writeCompany(b *strings.Builder, c *model.CompanyResearch) {
	if c == nil {
		return
	}
	fmt.Fprintf(b, "\n*Company: %s*\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(b, "%s\n", c.Description)
	}
	var facts []string
	if c.Industry != nil {
		facts = append(facts, *c.Industry)
	}
	if c.Size != nil {
		facts = append(facts, *c.Size)
	}
	if len(facts) > 0 {
		fmt.Fprintf(b, "%s\n", strings.Join(facts, " · "))
	}
	if c.Website != nil {
		fmt.Fprintf(b, "<%s>\n", *c.Website)
	}
}

func writeContact(b *strings.Builder, c *model.ContactResearch) {
	if c == nil {
		return
	}
	fmt.Fprintf(b, "\n*Contact: %s*\n", c.FullName)
	if c.Title != nil {
		fmt.Fprintf(b, "%s\n", *c.Title)
	}
	if c.Summary != nil {
		fmt.Fprintf(b, "%s\n", *c.Summary)
	}
}
