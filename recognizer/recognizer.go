// Package recognizer owns the external speech-recognition subprocess: it
// launches the helper, decodes its line-oriented stdout into typed events,
// and reports process exit asynchronously.
package recognizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultSampleRate is used when Config.SampleRate is zero.
const DefaultSampleRate = 16000

// ErrSessionActive is returned by Start while a previous session's process
// is still alive. Callers must stop the old session and wait for its exit.
var ErrSessionActive = errors.New("recognizer session already active")

// Config describes how to launch the helper process.
type Config struct {
	Bin        string // helper executable, default "murmur-helper"
	ModelPath  string // model directory, must exist
	SampleRate int    // audio sample rate, default 16000
	Device     string // optional capture-device identifier
}

// Exit describes one observed subprocess termination.
type Exit struct {
	Err    error  // non-nil when the process exited abnormally
	Reason string // human-readable exit reason ("exit status 1", "signal: killed")
	Stderr string // last stderr line seen before exit, for diagnostics
}

// Session is one live helper subprocess. Events are decoded stdout lines;
// Done delivers exactly one Exit when the process terminates, then closes.
type Session struct {
	cmd    *exec.Cmd
	events chan Event
	done   chan Exit

	stopOnce sync.Once

	stderrMu   sync.Mutex
	lastStderr string
}

// Recognizer launches helper sessions, holding at most one alive at a time.
type Recognizer struct {
	cfg Config

	mu     sync.Mutex
	active *Session
}

func New(cfg Config) *Recognizer {
	if cfg.Bin == "" {
		cfg.Bin = "murmur-helper"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	return &Recognizer{cfg: cfg}
}

// Start validates the configuration and spawns the helper. It fails before
// launch when the model directory is missing or a session is still active.
func (r *Recognizer) Start() (*Session, error) {
	if r.cfg.ModelPath == "" {
		return nil, errors.New("no model path configured")
	}
	if _, err := os.Stat(r.cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model directory %s: %w", r.cfg.ModelPath, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrSessionActive
	}

	args := []string{
		"--model", r.cfg.ModelPath,
		"--rate", strconv.Itoa(r.cfg.SampleRate),
	}
	if r.cfg.Device != "" {
		args = append(args, "--device", r.cfg.Device)
	}

	cmd := exec.Command(r.cfg.Bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.cfg.Bin, err)
	}

	s := &Session{
		cmd:    cmd,
		events: make(chan Event, 32),
		done:   make(chan Exit, 1),
	}
	r.active = s

	var readers sync.WaitGroup
	readers.Add(2)

	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if ev, ok := DecodeLine(scanner.Bytes()); ok {
				s.events <- ev
			}
		}
	}()

	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			s.stderrMu.Lock()
			s.lastStderr = line
			s.stderrMu.Unlock()
		}
	}()

	go func() {
		readers.Wait()
		err := cmd.Wait()

		r.mu.Lock()
		if r.active == s {
			r.active = nil
		}
		r.mu.Unlock()

		exit := Exit{Err: err, Stderr: s.LastStderr()}
		if cmd.ProcessState != nil {
			exit.Reason = cmd.ProcessState.String()
		} else if err != nil {
			exit.Reason = err.Error()
		}

		close(s.events)
		s.done <- exit
		close(s.done)
	}()

	return s, nil
}

// Active reports whether a helper process is currently alive.
func (r *Recognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Events delivers decoded transcript events in arrival order. The channel
// is closed after the process exits.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done delivers exactly one Exit when the process terminates, then closes.
func (s *Session) Done() <-chan Exit {
	return s.done
}

// Stop requests graceful termination with an interrupt signal. It does not
// wait for exit and is safe to call more than once; exit is observed
// asynchronously through Done.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Signal(os.Interrupt)
		}
	})
}

// Pid returns the helper's process id, or 0 before launch.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// LastStderr returns the most recent non-empty stderr line.
func (s *Session) LastStderr() string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	return s.lastStderr
}
