package extract

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-agent/internal/model"
)

// LeadEvent pairs a matched event with its extracted lead.
type LeadEvent struct {
	Event RawEvent
	Lead  model.Lead
}

// Record is one captured transport event as written by the collect mode.
// Older capture files stored the payload directly; newer ones wrap it with
// the envelope metadata. Both shapes are accepted.
type Record struct {
	Type       string          `json:"type,omitempty"`
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`

	// Event is set when the record is a bare event payload.
	Event *RawEvent `json:"event,omitempty"`
}

// LoadRecords reads a JSON array of captured events from path.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read events file %s", path)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "extract: parse events file %s", path)
	}
	return records, nil
}

// EventFromRecord unwraps the message event from a captured record.
// Returns false when the record holds no message event.
func EventFromRecord(rec Record) (RawEvent, bool) {
	// Wrapped form: {"type": ..., "envelope_id": ..., "payload": {"event": {...}}}.
	if len(rec.Payload) > 0 {
		var payload struct {
			Event *RawEvent `json:"event,omitempty"`
		}
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return RawEvent{}, false
		}
		if payload.Event != nil {
			return *payload.Event, payload.Event.Type == "message"
		}
		// Payload may itself be the event.
		var ev RawEvent
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return RawEvent{}, false
		}
		return ev, ev.Type == "message"
	}

	if rec.Event != nil {
		return *rec.Event, rec.Event.Type == "message"
	}
	return RawEvent{}, false
}

// LeadsFromRecords runs the business filter and extraction over captured
// records, returning the matched events paired with their leads in file order.
func (x *Extractor) LeadsFromRecords(records []Record) []LeadEvent {
	var out []LeadEvent
	for _, rec := range records {
		ev, ok := EventFromRecord(rec)
		if !ok {
			continue
		}
		lead, ok := x.FromEvent(ev)
		if !ok {
			continue
		}
		out = append(out, LeadEvent{Event: ev, Lead: *lead})
	}
	return out
}
