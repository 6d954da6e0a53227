// Package profile loads the deployment-specific prompt customization: who
// the company is, what an ideal client looks like, and what to focus on
// during research. All of it is data injected into stage prompts; stages
// never branch on profile contents.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ICP describes the ideal client profile.
type ICP struct {
	Description          string   `yaml:"description,omitempty"`
	TargetIndustries     []string `yaml:"target_industries,omitempty"`
	TargetCompanySizes   []string `yaml:"target_company_sizes,omitempty"`
	TargetRoles          []string `yaml:"target_roles,omitempty"`
	GeographicFocus      []string `yaml:"geographic_focus,omitempty"`
	DisqualifyingSignals []string `yaml:"disqualifying_signals,omitempty"`
}

// Profile is the full prompt customization. Every field is optional; an
// empty profile means "no fit criteria; judge on inquiry substance alone".
type Profile struct {
	CompanyName         string   `yaml:"company_name,omitempty"`
	ServicesDescription string   `yaml:"services_description,omitempty"`
	ICP                 *ICP     `yaml:"icp,omitempty"`
	QualifyingQuestions []string `yaml:"qualifying_questions,omitempty"`
	ResearchFocusAreas  []string `yaml:"research_focus_areas,omitempty"`
	CustomInstructions  string   `yaml:"custom_instructions,omitempty"`
}

// Load reads a profile from a YAML file. A missing file is not an error;
// it yields an empty profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Profile{}, nil
		}
		return nil, eris.Wrapf(err, "profile: read %s", path)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "profile: parse %s", path)
	}
	return &p, nil
}

// Empty reports whether no customization is configured.
func (p *Profile) Empty() bool {
	return p.CompanyName == "" &&
		p.ServicesDescription == "" &&
		p.ICP == nil &&
		len(p.QualifyingQuestions) == 0 &&
		len(p.ResearchFocusAreas) == 0 &&
		p.CustomInstructions == ""
}

// PromptSection renders the profile as a system-prompt addendum. Returns ""
// for an empty profile so base prompts stay untouched.
func (p *Profile) PromptSection() string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nBusiness context:\n")
	if p.CompanyName != "" {
		fmt.Fprintf(&b, "- Company: %s\n", p.CompanyName)
	}
	if p.ServicesDescription != "" {
		fmt.Fprintf(&b, "- Services: %s\n", p.ServicesDescription)
	}
	if p.ICP != nil {
		b.WriteString("\nIdeal client profile:\n")
		if p.ICP.Description != "" {
			fmt.Fprintf(&b, "- %s\n", p.ICP.Description)
		}
		writeList(&b, "Target industries", p.ICP.TargetIndustries)
		writeList(&b, "Target company sizes", p.ICP.TargetCompanySizes)
		writeList(&b, "Target roles", p.ICP.TargetRoles)
		writeList(&b, "Geographic focus", p.ICP.GeographicFocus)
		writeList(&b, "Disqualifying signals", p.ICP.DisqualifyingSignals)
	}
	if len(p.QualifyingQuestions) > 0 {
		b.WriteString("\nQualifying questions to consider:\n")
		for _, q := range p.QualifyingQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	if len(p.ResearchFocusAreas) > 0 {
		writeList(&b, "\nResearch focus areas", p.ResearchFocusAreas)
	}
	if p.CustomInstructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions:\n%s\n", p.CustomInstructions)
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, ", "))
}
