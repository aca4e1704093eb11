package session

import (
	"fmt"

	"murmur/recognizer"
)

// expectedExit reports whether an observed helper exit completes a stop
// sequence already in flight. Expected exits finish silently; anything else
// is a crash and gets the forced-transition-with-diagnostic path.
func expectedExit(stopRequested bool) bool {
	return stopRequested
}

// diagnostic renders one human-readable line for an abnormal helper exit,
// combining the last stderr text with the exit reason.
func diagnostic(exit recognizer.Exit) string {
	reason := exit.Reason
	if reason == "" && exit.Err != nil {
		reason = exit.Err.Error()
	}
	if reason == "" {
		reason = "exited unexpectedly"
	}
	if exit.Stderr != "" {
		return fmt.Sprintf("recognizer stopped: %s (%s)", exit.Stderr, reason)
	}
	return "recognizer stopped: " + reason
}
