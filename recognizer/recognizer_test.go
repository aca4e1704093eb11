package recognizer

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeHelper writes a shell script standing in for the helper binary and
// returns a Recognizer configured to launch it.
func fakeHelper(t *testing.T, script string) *Recognizer {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake helper scripts require a POSIX shell")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "helper.sh")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(dir, "model")
	if err := os.Mkdir(model, 0o755); err != nil {
		t.Fatal(err)
	}
	return New(Config{Bin: bin, ModelPath: model})
}

func collectEvents(t *testing.T, s *Session) []Event {
	t.Helper()
	var events []Event
	for ev := range s.Events() {
		events = append(events, ev)
	}
	return events
}

func waitExit(t *testing.T, s *Session) Exit {
	t.Helper()
	select {
	case exit := <-s.Done():
		return exit
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for helper exit")
		return Exit{}
	}
}

func TestStartMissingModel(t *testing.T) {
	r := New(Config{Bin: "true", ModelPath: filepath.Join(t.TempDir(), "nope")})
	if _, err := r.Start(); err == nil {
		t.Fatal("expected error for missing model directory")
	}
	if r.Active() {
		t.Error("no session should be active after failed start")
	}
}

func TestStartEmptyModel(t *testing.T) {
	r := New(Config{Bin: "true"})
	if _, err := r.Start(); err == nil {
		t.Fatal("expected error for empty model path")
	}
}

func TestSessionEvents(t *testing.T) {
	r := fakeHelper(t, `
echo 'starting up, not an event'
echo '{"type":"partial","text":"hel"}'
echo '{"type":"partial","text":"hello"}'
echo '{"type":"final","text":"hello world"}'
echo '{"type":"bogus","text":"dropped"}'
exit 0
`)
	s, err := r.Start()
	if err != nil {
		t.Fatal(err)
	}

	events := collectEvents(t, s)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(events), events)
	}
	if events[0].Kind != KindPartial || events[0].Text != "hel" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[2].Kind != KindFinal || events[2].Text != "hello world" {
		t.Errorf("events[2] = %+v", events[2])
	}

	exit := waitExit(t, s)
	if exit.Err != nil {
		t.Errorf("clean exit reported error: %v", exit.Err)
	}
	if r.Active() {
		t.Error("session still active after exit")
	}
}

func TestAbnormalExit(t *testing.T) {
	r := fakeHelper(t, `
echo 'cannot open audio device' >&2
exit 3
`)
	s, err := r.Start()
	if err != nil {
		t.Fatal(err)
	}

	collectEvents(t, s)
	exit := waitExit(t, s)
	if exit.Err == nil {
		t.Fatal("expected non-nil exit error")
	}
	if !strings.Contains(exit.Reason, "exit status 3") {
		t.Errorf("Reason = %q, want exit status 3", exit.Reason)
	}
	if exit.Stderr != "cannot open audio device" {
		t.Errorf("Stderr = %q", exit.Stderr)
	}
}

func TestStartWhileActive(t *testing.T) {
	r := fakeHelper(t, `
trap 'exit 0' INT TERM
sleep 5 &
wait $!
`)
	s, err := r.Start()
	if err != nil {
		t.Fatal(err)
	}
	if !r.Active() {
		t.Fatal("session should be active")
	}

	if _, err := r.Start(); err != ErrSessionActive {
		t.Errorf("second Start: got %v, want ErrSessionActive", err)
	}

	s.Stop()
	s.Stop() // idempotent
	collectEvents(t, s)
	waitExit(t, s)

	// After the old session is gone a new one may start.
	s2, err := r.Start()
	if err != nil {
		t.Fatalf("restart after exit: %v", err)
	}
	s2.Stop()
	collectEvents(t, s2)
	waitExit(t, s2)
}

func TestDeviceFlagPassed(t *testing.T) {
	r := fakeHelper(t, `
echo "{\"type\":\"final\",\"text\":\"args $*\"}"
exit 0
`)
	r.cfg.Device = "hw:1"
	s, err := r.Start()
	if err != nil {
		t.Fatal(err)
	}
	events := collectEvents(t, s)
	waitExit(t, s)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	text := events[0].Text
	if !strings.Contains(text, "--device hw:1") {
		t.Errorf("device flag not passed, argv: %q", text)
	}
	if !strings.Contains(text, "--rate 16000") {
		t.Errorf("default rate not passed, argv: %q", text)
	}
}
