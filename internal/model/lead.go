// Package model defines the core types flowing through the lead pipeline.
package model

import (
	"strings"
)

// Lead is one inbound inquiry extracted from a HubSpot notification message.
// Fields that failed to parse are left empty; RawText is always retained so
// downstream stages have fallback signal. A Lead is never mutated after
// extraction; stages produce derived results alongside it.
type Lead struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Message   string
	RawText   string
}

// Valid reports whether the lead carries enough signal to enter the pipeline.
// A lead with no email, no message, and no raw text is unusable.
func (l Lead) Valid() bool {
	return l.Email != "" || l.Message != "" || l.RawText != ""
}

// FullName joins first and last name, or returns "" if neither is present.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// EmailDomain returns the domain part of the lead's email, lowercased,
// or "" if there is no parseable email.
func (l Lead) EmailDomain() string {
	at := strings.LastIndex(l.Email, "@")
	if at < 0 || at == len(l.Email)-1 {
		return ""
	}
	return strings.ToLower(l.Email[at+1:])
}

// CompanyFromDomain derives a best-effort company name from the email domain:
// the token before the top-level domain, title-cased. Returns "" when there
// is no usable domain. This is a heuristic fallback only; callers must never
// let it override an explicitly stated company.
func (l Lead) CompanyFromDomain() string {
	domain := l.EmailDomain()
	if domain == "" {
		return ""
	}
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return ""
	}
	token := parts[len(parts)-2]
	if token == "" {
		return ""
	}
	return strings.ToUpper(token[:1]) + token[1:]
}

// PromptText renders the lead for an inference prompt. Parsed fields are
// preferred; if nothing parsed, the raw text is used as-is.
func (l Lead) PromptText() string {
	var parts []string
	if l.FirstName != "" {
		parts = append(parts, "First Name: "+l.FirstName)
	}
	if l.LastName != "" {
		parts = append(parts, "Last Name: "+l.LastName)
	}
	if l.Email != "" {
		parts = append(parts, "Email: "+l.Email)
	}
	if l.Company != "" {
		parts = append(parts, "Company: "+l.Company)
	}
	if l.Message != "" {
		parts = append(parts, "Message: "+l.Message)
	}
	if len(parts) == 0 {
		return l.RawText
	}
	return strings.Join(parts, "\n")
}
