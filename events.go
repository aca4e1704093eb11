package main

import (
	"murmur/session"
	"murmur/store"
)

// EventSink abstracts the display layer so the Bubble Tea TUI and any
// headless harness receive the same session and status events.
type EventSink interface {
	SessionChanged(s session.Snapshot)
	Status(text string)
	Prompts(ps []store.Prompt)
}

// tuiSink forwards events into the Bubble Tea program.
type tuiSink struct{}

func (tuiSink) SessionChanged(s session.Snapshot) { tuiSend(SnapshotMsg(s)) }
func (tuiSink) Status(text string)                { tuiSend(StatusMsg{Text: text}) }
func (tuiSink) Prompts(ps []store.Prompt)         { tuiSend(PromptsMsg{Prompts: ps}) }
