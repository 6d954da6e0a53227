package extract

// RawEvent is the message event payload as delivered by the chat transport.
// It is treated as immutable for the duration of one ingestion call.
type RawEvent struct {
	Type        string       `json:"type"`
	Subtype     string       `json:"subtype,omitempty"`
	Username    string       `json:"username,omitempty"`
	BotID       string       `json:"bot_id,omitempty"`
	Channel     string       `json:"channel,omitempty"`
	TS          string       `json:"ts,omitempty"`
	ThreadTS    string       `json:"thread_ts,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a structured attachment block. HubSpot puts the lead data in
// the first attachment's fallback or text.
type Attachment struct {
	Fallback string `json:"fallback,omitempty"`
	Text     string `json:"text,omitempty"`
}

// IsThreadReply reports whether the event is a reply inside a thread rather
// than a top-level message. Thread replies are never leads.
func (e RawEvent) IsThreadReply() bool {
	return e.ThreadTS != "" && e.ThreadTS != e.TS
}
