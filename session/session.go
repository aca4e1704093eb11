// Package session owns the recording lifecycle: it serializes user commands
// and recognizer events through one run loop, folds partial/final transcript
// events into the draft, and turns helper crashes into status transitions
// instead of process-wide faults.
package session

import (
	"errors"
	"strings"
	"sync"

	"murmur/recognizer"
)

// ErrEditing is returned when recording is requested while the draft is
// being edited.
var ErrEditing = errors.New("draft is being edited")

// Source is one live recognizer session as seen by the manager.
// *recognizer.Session satisfies it; tests substitute channel-driven fakes.
type Source interface {
	Events() <-chan recognizer.Event
	Done() <-chan recognizer.Exit
	Stop()
}

// StartFunc launches a new recognizer session.
type StartFunc func() (Source, error)

// Snapshot is the display-facing view of the session, delivered to the
// notify hook on every change.
type Snapshot struct {
	State   State
	Draft   string // accumulated committed text
	Partial string // live provisional text, preview only
	Status  string // last status or diagnostic line
}

// Manager is the single arbiter of session state. All mutation happens on
// its run goroutine; exported methods funnel closures through cmds, so the
// helper's asynchronous output and user actions never race on the draft.
type Manager struct {
	start  StartFunc
	notify func(Snapshot)

	cmds      chan func()
	quit      chan struct{}
	closeOnce sync.Once

	// Owned by the run goroutine.
	state         State
	draft         string
	partial       string
	status        string
	src           Source
	eventsDone    bool
	stopRequested bool
	exitHandled   bool
}

// New creates a manager and starts its run loop. notify may be nil.
func New(start StartFunc, notify func(Snapshot)) *Manager {
	m := &Manager{
		start:  start,
		notify: notify,
		cmds:   make(chan func()),
		quit:   make(chan struct{}),
		state:  StateIdle,
	}
	go m.run()
	return m
}

// Close stops the run loop, requesting termination of any live helper.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.quit) })
}

// Start begins a new recording session: any previous session is fully torn
// down first, then the draft is cleared and the helper launched. A launch
// failure (missing model, spawn error) leaves state and draft unchanged.
func (m *Manager) Start() error {
	var err error
	m.do(func() { err = m.startSession() })
	return err
}

// Stop ends the active recording, retaining the accumulated draft. It is
// idempotent and a no-op outside of Recording.
func (m *Manager) Stop() {
	m.do(m.stopSession)
}

// BeginEdit switches to Editing, stopping any active recording first.
func (m *Manager) BeginEdit() {
	m.do(m.beginEdit)
}

// EndEdit leaves Editing, committing text as the canonical draft.
func (m *Manager) EndEdit(text string) {
	m.do(func() { m.endEdit(text) })
}

// SetDraft replaces the draft while Idle; ignored in other states.
func (m *Manager) SetDraft(text string) {
	m.do(func() {
		if m.state != StateIdle {
			return
		}
		m.draft = text
		m.partial = ""
		m.notifyChange()
	})
}

// SetStatus updates the status line shown by the display layer.
func (m *Manager) SetStatus(text string) {
	m.do(func() {
		m.status = text
		m.notifyChange()
	})
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	var s Snapshot
	m.do(func() { s = m.snapshot() })
	return s
}

func (m *Manager) run() {
	for {
		var events <-chan recognizer.Event
		var done <-chan recognizer.Exit
		if m.src != nil {
			if !m.eventsDone {
				events = m.src.Events()
			}
			done = m.src.Done()
		}

		select {
		case <-m.quit:
			if m.src != nil {
				m.src.Stop()
			}
			return
		case f := <-m.cmds:
			f()
		case ev, ok := <-events:
			if !ok {
				m.eventsDone = true
				continue
			}
			m.applyEvent(ev)
		case exit, ok := <-done:
			if ok {
				m.finishExit(exit)
			}
			m.src = nil
			m.eventsDone = false
		}
	}
}

// do runs f on the run goroutine and waits for it to complete.
func (m *Manager) do(f func()) {
	reply := make(chan struct{})
	select {
	case m.cmds <- func() { f(); close(reply) }:
		select {
		case <-reply:
		case <-m.quit:
		}
	case <-m.quit:
	}
}

func (m *Manager) startSession() error {
	if m.state == StateEditing {
		return ErrEditing
	}
	if m.state == StateRecording {
		m.stopSession()
	}
	if m.src != nil {
		// Previous helper still winding down: wait for its exit so two
		// processes never race to write the same draft.
		m.drain()
	}

	src, err := m.start()
	if err != nil {
		m.status = err.Error()
		m.notifyChange()
		return err
	}

	m.src = src
	m.eventsDone = false
	m.stopRequested = false
	m.exitHandled = false
	m.draft = ""
	m.partial = ""
	m.status = ""
	m.state = StateRecording
	m.notifyChange()
	return nil
}

func (m *Manager) stopSession() {
	if m.state != StateRecording {
		return
	}
	if m.src != nil {
		m.src.Stop()
	}
	m.stopRequested = true
	m.partial = ""
	m.state = StateIdle
	m.notifyChange()
}

func (m *Manager) beginEdit() {
	if m.state == StateEditing {
		return
	}
	if m.state == StateRecording {
		m.stopSession()
	}
	m.state = StateEditing
	m.partial = ""
	m.notifyChange()
}

func (m *Manager) endEdit(text string) {
	if m.state != StateEditing {
		return
	}
	m.draft = strings.TrimSpace(text)
	m.state = StateIdle
	m.notifyChange()
}

// applyEvent folds one decoded helper event into the draft. The state is
// re-checked here: events that arrive after leaving Recording (the race
// between an async stop and in-flight output) are discarded.
func (m *Manager) applyEvent(ev recognizer.Event) {
	if m.state != StateRecording {
		return
	}
	switch ev.Kind {
	case recognizer.KindPartial:
		m.partial = ev.Text
	case recognizer.KindFinal:
		m.partial = ""
		m.draft = joinFinal(m.draft, ev.Text)
	case recognizer.KindError:
		// Partials never survive past the next event of any kind.
		m.partial = ""
		m.status = "recognizer: " + ev.Err
	}
	m.notifyChange()
}

// finishExit handles one observed helper exit, at most once per session.
func (m *Manager) finishExit(exit recognizer.Exit) {
	if m.exitHandled {
		return
	}
	m.exitHandled = true
	if expectedExit(m.stopRequested) {
		return
	}
	m.partial = ""
	if m.state == StateRecording {
		m.state = StateIdle
	}
	m.status = diagnostic(exit)
	m.notifyChange()
}

// drain blocks until the current source exits, discarding its events.
// Only called after Stop has been requested on it.
func (m *Manager) drain() {
	events := m.src.Events()
	for {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case exit, ok := <-m.src.Done():
			if ok {
				m.finishExit(exit)
			}
			m.src = nil
			m.eventsDone = false
			return
		}
	}
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		State:   m.state,
		Draft:   m.draft,
		Partial: m.partial,
		Status:  m.status,
	}
}

func (m *Manager) notifyChange() {
	if m.notify != nil {
		m.notify(m.snapshot())
	}
}
