// Package extract turns raw chat transport events into structured leads.
// The business filter here is the primary noise-rejection gate: it runs on
// string comparisons only, before any inference spend.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/leads-agent/internal/model"
)

// defaultSender is the automation name recognized by the business filter.
const defaultSender = "hubspot"

// Extractor parses lead-notification events. Extraction is idempotent and
// side-effect-free: the same event always yields the same lead or rejection.
type Extractor struct {
	sender string
}

// New creates an extractor recognizing the given automation sender name.
// An empty sender falls back to "hubspot".
func New(sender string) *Extractor {
	if sender == "" {
		sender = defaultSender
	}
	return &Extractor{sender: strings.ToLower(sender)}
}

// Match applies the business filter: the event must be a bot_message from the
// recognized sender, a top-level message, and carry at least one attachment.
func (x *Extractor) Match(ev RawEvent) bool {
	if ev.Subtype != "bot_message" {
		return false
	}
	if !strings.EqualFold(ev.Username, x.sender) {
		return false
	}
	if ev.IsThreadReply() {
		return false
	}
	return len(ev.Attachments) > 0
}

// FromEvent extracts a lead from a transport event. Returns (nil, false) for
// events that fail the business filter or carry no usable text.
func (x *Extractor) FromEvent(ev RawEvent) (*model.Lead, bool) {
	if !x.Match(ev) {
		return nil, false
	}

	att := ev.Attachments[0]
	raw := att.Fallback
	if raw == "" {
		raw = att.Text
	}
	if raw == "" {
		return nil, false
	}

	lead := ParseLeadText(raw)
	if !lead.Valid() {
		return nil, false
	}
	return &lead, true
}

// Field-labeled lines in the HubSpot notification body, e.g. `*Email*: x@y.com`.
// The message field runs to the end of the text and may span lines.
var (
	reFirstName = regexp.MustCompile(`(?mi)^\*First Name\*:[ \t]*(.+)$`)
	reLastName  = regexp.MustCompile(`(?mi)^\*Last Name\*:[ \t]*(.+)$`)
	reEmail     = regexp.MustCompile(`(?i)\*Email\*:\s*(?:<mailto:[^|]+\|)?([^\s>]+)`)
	reCompany   = regexp.MustCompile(`(?mi)^\*Company\*:[ \t]*(.+)$`)
	reMessage   = regexp.MustCompile(`(?si)\*Message\*:\s*(.+)$`)

	reMailtoLink = regexp.MustCompile(`<mailto:[^|]+\|([^>]+)>`)
	reSlackLink  = regexp.MustCompile(`<[^|>]+\|([^>]+)>`)
)

// ParseLeadText parses a HubSpot-formatted notification body into a lead.
// Unmatched fields stay empty rather than failing; the full text is retained
// as RawText regardless of parse success.
func ParseLeadText(text string) model.Lead {
	lead := model.Lead{RawText: text}

	if m := reFirstName.FindStringSubmatch(text); m != nil {
		lead.FirstName = cleanValue(m[1])
	}
	if m := reLastName.FindStringSubmatch(text); m != nil {
		lead.LastName = cleanValue(m[1])
	}
	if m := reEmail.FindStringSubmatch(text); m != nil {
		lead.Email = cleanValue(m[1])
	}
	if m := reCompany.FindStringSubmatch(text); m != nil {
		lead.Company = cleanValue(m[1])
	}
	if m := reMessage.FindStringSubmatch(text); m != nil {
		lead.Message = cleanValue(m[1])
	}

	return lead
}

// cleanValue strips surrounding whitespace and unwraps Slack link markup
// (<mailto:addr|addr> and <url|text>) down to the display value.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = reMailtoLink.ReplaceAllString(s, "$1")
	s = reSlackLink.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
