// Package launcher hands a finished prompt off to the coding assistant
// inside a detached tmux session.
package launcher

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Test seams.
var (
	lookPath   = exec.LookPath
	runCommand = func(cmd *exec.Cmd) error { return cmd.Run() }
	now        = time.Now
)

// Launcher starts the assistant command in tmux.
type Launcher struct {
	Assistant string // assistant executable, e.g. "claude"
}

func New(assistant string) *Launcher {
	if assistant == "" {
		assistant = "claude"
	}
	return &Launcher{Assistant: assistant}
}

// Launch starts a detached tmux session running the assistant with the
// prompt as its argument. It returns the session name and the literal
// command string, for logging. The draft is untouched on failure so the
// user can retry.
func (l *Launcher) Launch(prompt, workdir string) (sessionName, command string, err error) {
	tmux, err := lookPath("tmux")
	if err != nil {
		return "", "", fmt.Errorf("tmux not found in PATH: %w", err)
	}

	sessionName = "murmur-" + now().Format("20060102-150405")
	command = l.Assistant + " " + shellQuote(prompt)

	args := []string{"new-session", "-d", "-s", sessionName}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	args = append(args, command)

	if err := runCommand(exec.Command(tmux, args...)); err != nil {
		return "", "", fmt.Errorf("tmux new-session: %w", err)
	}
	return sessionName, command, nil
}

// shellQuote single-quotes s for the shell tmux hands the command to.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
