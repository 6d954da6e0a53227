package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyProfile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Equal(t, "", p.PromptSection())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	data := `
company_name: Sells Group
services_description: M&A advisory for lower middle market companies
icp:
  description: Founder-led businesses considering an exit
  target_industries: [manufacturing, distribution]
  disqualifying_signals: [students, job seekers]
qualifying_questions:
  - Does the inquiry mention revenue or company size?
custom_instructions: Be skeptical of generic outreach.
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.False(t, p.Empty())
	assert.Equal(t, "Sells Group", p.CompanyName)
	require.NotNil(t, p.ICP)
	assert.Equal(t, []string{"manufacturing", "distribution"}, p.ICP.TargetIndustries)

	section := p.PromptSection()
	assert.Contains(t, section, "Company: Sells Group")
	assert.Contains(t, section, "Target industries: manufacturing, distribution")
	assert.Contains(t, section, "Disqualifying signals: students, job seekers")
	assert.Contains(t, section, "Does the inquiry mention revenue")
	assert.Contains(t, section, "Be skeptical of generic outreach.")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("company_name: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
