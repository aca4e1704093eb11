package launcher

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func stubExec(t *testing.T, lp func(string) (string, error), run func(*exec.Cmd) error) {
	t.Helper()
	origLook, origRun, origNow := lookPath, runCommand, now
	lookPath = lp
	runCommand = run
	now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { lookPath, runCommand, now = origLook, origRun, origNow })
}

func TestLaunchBuildsTmuxCommand(t *testing.T) {
	var gotArgs []string
	stubExec(t,
		func(string) (string, error) { return "/usr/bin/tmux", nil },
		func(cmd *exec.Cmd) error { gotArgs = cmd.Args; return nil },
	)

	l := New("claude")
	session, command, err := l.Launch("fix the build", "/home/me/proj")
	if err != nil {
		t.Fatal(err)
	}
	if session != "murmur-20260830-120000" {
		t.Errorf("session = %q", session)
	}
	if command != `claude 'fix the build'` {
		t.Errorf("command = %q", command)
	}

	want := []string{
		"/usr/bin/tmux", "new-session", "-d", "-s", session,
		"-c", "/home/me/proj", command,
	}
	if strings.Join(gotArgs, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", gotArgs, want)
	}
}

func TestLaunchWithoutWorkdir(t *testing.T) {
	var gotArgs []string
	stubExec(t,
		func(string) (string, error) { return "/usr/bin/tmux", nil },
		func(cmd *exec.Cmd) error { gotArgs = cmd.Args; return nil },
	)

	if _, _, err := New("").Launch("hello", ""); err != nil {
		t.Fatal(err)
	}
	for _, a := range gotArgs {
		if a == "-c" {
			t.Errorf("unexpected -c flag in %v", gotArgs)
		}
	}
	// Empty assistant falls back to the default.
	if !strings.Contains(strings.Join(gotArgs, " "), "claude") {
		t.Errorf("default assistant missing from %v", gotArgs)
	}
}

func TestLaunchTmuxMissing(t *testing.T) {
	stubExec(t,
		func(string) (string, error) { return "", exec.ErrNotFound },
		func(*exec.Cmd) error { t.Fatal("must not run without tmux"); return nil },
	)

	_, _, err := New("claude").Launch("hello", "")
	if err == nil || !strings.Contains(err.Error(), "tmux not found") {
		t.Errorf("err = %v", err)
	}
}

func TestLaunchSpawnFailure(t *testing.T) {
	spawnErr := errors.New("duplicate session")
	stubExec(t,
		func(string) (string, error) { return "/usr/bin/tmux", nil },
		func(*exec.Cmd) error { return spawnErr },
	)

	_, _, err := New("claude").Launch("hello", "")
	if !errors.Is(err, spawnErr) {
		t.Errorf("err = %v, want wrapped spawn error", err)
	}
}

func TestShellQuote(t *testing.T) {
	for _, tt := range []struct{ in, want string }{
		{"plain", "'plain'"},
		{"two words", "'two words'"},
		{"it's quoted", `'it'\''s quoted'`},
		{"", "''"},
	} {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
