//go:build !windows

// Package shutdown funnels OS termination signals into one channel so the
// TUI, the store, and the helper subprocess all wind down through the same
// path.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
