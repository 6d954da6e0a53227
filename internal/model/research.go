package model

// CompanyResearch holds evidence-backed findings about the lead's company.
// Optional fields are nil when search returned no supporting evidence;
// absence is represented, never guessed.
type CompanyResearch struct {
	Name        string
	Description string
	Industry    *string
	Size        *string
	Website     *string
}

// ContactResearch holds evidence-backed findings about the contact person.
type ContactResearch struct {
	FullName string
	Title    *string
	Summary  *string
}

// ResearchResult is the output of the research stage. Both sections may be
// absent when search yielded nothing usable.
type ResearchResult struct {
	Company *CompanyResearch
	Contact *ContactResearch
	// Searches is the number of search-tool calls actually issued.
	Searches int
	// Degraded marks a deliberate downgrade to a partial result after a
	// backend failure. Distinguishable from an ordinary empty result so
	// quality monitoring can tell them apart.
	Degraded       bool
	DegradedReason string
}

// Empty reports whether research produced no findings at all.
func (r ResearchResult) Empty() bool {
	return r.Company == nil && r.Contact == nil
}
