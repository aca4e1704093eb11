package session

import "strings"

// joinFinal appends one committed transcript segment to the draft:
// segments are individually trimmed and joined with single spaces.
func joinFinal(draft, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return draft
	}
	if draft == "" {
		return text
	}
	return draft + " " + text
}
