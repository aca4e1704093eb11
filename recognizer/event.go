package recognizer

import (
	"encoding/json"
	"strings"
)

// Kind classifies one decoded helper event.
type Kind int

const (
	// KindPartial is provisional text, replaced by the next event of any kind.
	KindPartial Kind = iota + 1
	// KindFinal is committed text, appended to the draft and never revisited.
	KindFinal
	// KindError is a non-fatal recognition-side error message.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindPartial:
		return "partial"
	case KindFinal:
		return "final"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one decoded line from the helper's stdout.
type Event struct {
	Kind Kind
	Text string // transcript text for partial/final events
	Err  string // message for error events
}

// wireEvent matches the helper's line protocol:
// {"type":"partial","text":...} | {"type":"final","text":...} | {"type":"error","error":...}
type wireEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

// DecodeLine parses one stdout line from the helper. The helper interleaves
// incidental log noise with events, so anything that does not decode as a
// known event shape is dropped (ok=false), never reported as an error.
// Partial and final events with empty trimmed text are dropped too.
func DecodeLine(line []byte) (Event, bool) {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" || trimmed[0] != '{' {
		return Event{}, false
	}

	var w wireEvent
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return Event{}, false
	}

	switch w.Type {
	case "partial":
		text := strings.TrimSpace(w.Text)
		if text == "" {
			return Event{}, false
		}
		return Event{Kind: KindPartial, Text: text}, true
	case "final":
		text := strings.TrimSpace(w.Text)
		if text == "" {
			return Event{}, false
		}
		return Event{Kind: KindFinal, Text: text}, true
	case "error":
		msg := strings.TrimSpace(w.Error)
		if msg == "" {
			return Event{}, false
		}
		return Event{Kind: KindError, Err: msg}, true
	default:
		return Event{}, false
	}
}
