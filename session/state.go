package session

// State is the recording lifecycle state exposed to the display layer.
type State string

const (
	// StateIdle: no live helper session, draft at rest.
	StateIdle State = "idle"
	// StateRecording: helper session active, finals accumulate into the draft.
	StateRecording State = "recording"
	// StateEditing: draft is directly user-editable, helper events are ignored.
	StateEditing State = "editing"
)
