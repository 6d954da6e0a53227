package pipeline

import "github.com/sells-group/leads-agent/internal/profile"

// Stage system prompts. The ideal-client profile is appended as data; the
// stages themselves never branch on its contents.

const triageSystemPrompt = `You are doing FAST triage on inbound leads from a company contact form.

Goal:
- Quickly rule out leads that are clearly not worth pursuing (spam, scams, students, resumes, solicitations, vendor pitches).
- If the lead shows potentially real business intent, mark it pursue even if details are incomplete.

Rules:
- Be conservative: if the intent is unclear or no real business need is evident, choose discard.
- If the message states a company name, report it; otherwise leave company empty. Never invent one.
- Provide a brief reason, a 1-2 sentence summary, and 3-8 short signal tags.

Respond with a valid JSON object:
{"disposition": "pursue" or "discard", "confidence": <0.0-1.0>, "reason": "<brief>", "company": "<stated company or empty>", "summary": "<1-2 sentences>", "signals": ["<tag>", ...]}`

const researchSystemPrompt = `You summarize web-search evidence about an inbound lead into structured research fields.

You will receive the lead details and raw search results. Fill in only what the evidence supports:
- company: official name, what they do, industry, size, website
- contact: full name, role/title, short professional summary

Integrity rules:
- Do NOT use prior knowledge about the company or person. Only the provided evidence counts.
- If the evidence does not support a field, set it to null.
- If the evidence supports neither section, set that section to null.

Respond with a valid JSON object:
{"company": {"name": "...", "description": "...", "industry": null, "size": null, "website": null} or null,
 "contact": {"full_name": "...", "title": null, "summary": null} or null}`

const scoringSystemPrompt = `You are scoring an inbound lead for prioritization.

You will receive parsed lead details, a triage classification, and optional web research about the company and contact.

Scoring rubric:
- 1: not worth pursuing (spam/scam/irrelevant)
- 2: low value, clearly not a fit
- 3: plausible but weak or unclear (follow up if time permits)
- 4: real business intent, plausible fit (follow up)
- 5: strong ideal-client fit, high intent, credible company and contact (prioritize)

Action mapping (must follow):
- score 1-2 -> action=discard
- score 3-4 -> action=follow_up
- score 5 -> action=prioritize

If no ideal-client profile is given, score on the substance of the inquiry alone.

Respond with a valid JSON object:
{"score": <1-5>, "action": "discard" or "follow_up" or "prioritize", "reason": "<brief, concrete>"}`

// triagePrompt appends profile context to the triage system prompt.
func triagePrompt(p *profile.Profile) string {
	return triageSystemPrompt + p.PromptSection()
}

// scoringPrompt appends profile context to the scoring system prompt.
func scoringPrompt(p *profile.Profile) string {
	return scoringSystemPrompt + p.PromptSection()
}

// researchPrompt appends profile context (research focus areas matter here)
// to the research system prompt.
func researchPrompt(p *profile.Profile) string {
	return researchSystemPrompt + p.PromptSection()
}
