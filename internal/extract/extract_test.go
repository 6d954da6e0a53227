package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotification = "*First Name*: Jane\n" +
	"*Last Name*: Doe\n" +
	"*Email*: <mailto:jane@acme.com|jane@acme.com>\n" +
	"*Company*: Acme Corp\n" +
	"*Message*: We're looking for help with our data pipeline.\nBudget is approved."

func leadEvent() RawEvent {
	return RawEvent{
		Type:     "message",
		Subtype:  "bot_message",
		Username: "HubSpot",
		Channel:  "C0LEADS",
		TS:       "1718000000.000100",
		Attachments: []Attachment{
			{Fallback: sampleNotification},
		},
	}
}

func TestMatch(t *testing.T) {
	x := New("hubspot")

	assert.True(t, x.Match(leadEvent()))

	human := leadEvent()
	human.Subtype = ""
	assert.False(t, x.Match(human), "human messages never match")

	otherBot := leadEvent()
	otherBot.Username = "GitHub"
	assert.False(t, x.Match(otherBot))

	reply := leadEvent()
	reply.ThreadTS = "1717999999.000001"
	assert.False(t, x.Match(reply), "thread replies never match")

	selfThread := leadEvent()
	selfThread.ThreadTS = selfThread.TS
	assert.True(t, x.Match(selfThread), "thread parent is a top-level message")

	bare := leadEvent()
	bare.Attachments = nil
	assert.False(t, x.Match(bare))
}

func TestMatchSenderCaseInsensitive(t *testing.T) {
	x := New("HubSpot")
	ev := leadEvent()
	ev.Username = "hubspot"
	assert.True(t, x.Match(ev))
}

func TestFromEvent(t *testing.T) {
	x := New("")

	lead, ok := x.FromEvent(leadEvent())
	require.True(t, ok)

	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "Doe", lead.LastName)
	assert.Equal(t, "jane@acme.com", lead.Email)
	assert.Equal(t, "Acme Corp", lead.Company)
	assert.Contains(t, lead.Message, "data pipeline")
	assert.Contains(t, lead.Message, "Budget is approved", "message keeps its trailing lines")
	assert.Equal(t, sampleNotification, lead.RawText)
}

func TestFromEventFallsBackToAttachmentText(t *testing.T) {
	x := New("")
	ev := leadEvent()
	ev.Attachments = []Attachment{{Text: sampleNotification}}

	lead, ok := x.FromEvent(ev)
	require.True(t, ok)
	assert.Equal(t, "jane@acme.com", lead.Email)
}

func TestFromEventRejectsEmptyAttachment(t *testing.T) {
	x := New("")
	ev := leadEvent()
	ev.Attachments = []Attachment{{}}

	_, ok := x.FromEvent(ev)
	assert.False(t, ok)
}

func TestParseLeadTextPartialFields(t *testing.T) {
	lead := ParseLeadText("*Email*: bob@example.com")
	assert.Equal(t, "bob@example.com", lead.Email)
	assert.Empty(t, lead.FirstName)
	assert.Empty(t, lead.Message)
	assert.True(t, lead.Valid())

	noise := ParseLeadText("nothing labeled here")
	assert.True(t, noise.Valid(), "raw text alone is still usable signal")
	assert.Equal(t, "nothing labeled here", noise.RawText)

	empty := ParseLeadText("")
	assert.False(t, empty.Valid())
}

func TestParseLeadTextUnwrapsLinks(t *testing.T) {
	lead := ParseLeadText("*Company*: <https://acme.com|Acme Corp>\n*Email*: <mailto:a@b.co|a@b.co>")
	assert.Equal(t, "Acme Corp", lead.Company)
	assert.Equal(t, "a@b.co", lead.Email)
}

func TestLeadsFromRecords(t *testing.T) {
	x := New("")

	records := []Record{
		{Event: &RawEvent{Type: "message", Text: "lunch?"}}, // human chatter
		{Event: func() *RawEvent { ev := leadEvent(); return &ev }()},
		{Type: "events_api", Payload: mustJSON(t, map[string]interface{}{
			"event": leadEvent(),
		})},
	}

	leads := x.LeadsFromRecords(records)
	require.Len(t, leads, 2)
	assert.Equal(t, "jane@acme.com", leads[0].Lead.Email)
	assert.Equal(t, "1718000000.000100", leads[1].Event.TS)
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	data := `[{"event":{"type":"message","subtype":"bot_message","username":"HubSpot","ts":"1.2","attachments":[{"fallback":"*Email*: x@y.co"}]}}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	leads := New("").LeadsFromRecords(records)
	require.Len(t, leads, 1)
	assert.Equal(t, "x@y.co", leads[0].Lead.Email)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
