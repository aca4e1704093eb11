package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"murmur/clipboard"
	"murmur/config"
	"murmur/doctor"
	"murmur/launcher"
	"murmur/log"
	"murmur/recognizer"
	"murmur/session"
	"murmur/shutdown"
	"murmur/store"
)

var version = "dev"

const recentPromptCount = 9

// App wires the session core to storage, launch, and clipboard side effects.
// Session state lives in the manager; App only tracks which stored prompt
// the current draft corresponds to.
type App struct {
	cfg    *config.Config
	sess   *session.Manager
	st     *store.Store
	launch *launcher.Launcher
	sink   EventSink

	mu         sync.Mutex
	promptID   string // id of the stored record backing the draft, "" if unsaved
	savedText  string // last text written to the store for promptID
	savedCount int
}

func (a *App) StartRecording() {
	if err := a.sess.Start(); err != nil {
		// The manager already surfaced the status; just log it.
		log.Errorf("recording start: %v", err)
		return
	}
	a.mu.Lock()
	a.promptID = ""
	a.savedText = ""
	a.mu.Unlock()
}

func (a *App) StopRecording() {
	a.sess.Stop()
	log.RecordingStop()
}

func (a *App) BeginEdit() {
	a.sess.BeginEdit()
}

func (a *App) EndEdit(text string) {
	a.sess.EndEdit(text)
}

// SavePrompt persists the current draft, updating the backing record when
// one exists.
func (a *App) SavePrompt() {
	text := strings.TrimSpace(a.sess.Snapshot().Draft)
	if text == "" {
		a.sink.Status("nothing to save")
		return
	}

	a.mu.Lock()
	id := a.promptID
	a.mu.Unlock()

	var (
		p   store.Prompt
		err error
	)
	if id == "" {
		p, err = a.st.SavePrompt(text)
	} else {
		p, err = a.st.UpdatePrompt(id, text)
	}
	if err != nil {
		a.sink.Status("save failed: " + err.Error())
		log.Errorf("save prompt: %v", err)
		return
	}

	a.mu.Lock()
	a.promptID = p.ID
	a.savedText = text
	a.savedCount++
	a.mu.Unlock()

	log.PromptSaved(p.ID, len(text))
	log.PromptText(text)
	a.sink.Status("saved prompt " + shortID(p.ID))
	a.refreshPrompts()
}

// LaunchAssistant saves the draft if needed, then hands it to the assistant
// in a detached tmux session. On failure the draft and state are untouched
// so the user can retry.
func (a *App) LaunchAssistant() {
	text := strings.TrimSpace(a.sess.Snapshot().Draft)
	if text == "" {
		a.sink.Status("nothing to launch")
		return
	}

	a.mu.Lock()
	dirty := a.promptID == "" || a.savedText != text
	a.mu.Unlock()
	if dirty {
		a.SavePrompt()
	}
	a.mu.Lock()
	id := a.promptID
	a.mu.Unlock()
	if id == "" {
		return // save failed, status already shown
	}

	sessionName, command, err := a.launch.Launch(text, a.cfg.WorkDir)
	if err != nil {
		a.sink.Status("launch failed: " + err.Error())
		log.Errorf("launch: %v", err)
		return
	}

	if _, err := a.st.RecordLaunch(id, command, sessionName); err != nil {
		log.Errorf("record launch: %v", err)
	}
	log.LaunchEvent(sessionName, command)
	a.sink.Status("launched in tmux session " + sessionName)
}

func (a *App) CopyDraft() {
	text := a.sess.Snapshot().Draft
	if text == "" {
		a.sink.Status("nothing to copy")
		return
	}
	if err := clipboard.Copy(text); err != nil {
		a.sink.Status("copy failed: " + err.Error())
		log.Errorf("clipboard: %v", err)
		return
	}
	a.sink.Status("copied to clipboard")
}

func (a *App) NewDraft() {
	a.sess.SetDraft("")
	a.mu.Lock()
	a.promptID = ""
	a.savedText = ""
	a.mu.Unlock()
	a.sink.Status("new draft")
}

// LoadPrompt replaces the draft with a recent prompt (Idle only; the
// session manager ignores the request in other states).
func (a *App) LoadPrompt(idx int) {
	prompts, err := a.st.RecentPrompts(recentPromptCount)
	if err != nil {
		log.Warnf("list prompts: %v", err)
		return
	}
	if idx < 0 || idx >= len(prompts) {
		return
	}
	p := prompts[idx]

	a.sess.SetDraft(p.Text)
	if a.sess.Snapshot().Draft != p.Text {
		return // not idle, request ignored
	}
	a.mu.Lock()
	a.promptID = p.ID
	a.savedText = p.Text
	a.mu.Unlock()
	a.sink.Status("loaded prompt " + shortID(p.ID))
}

func (a *App) refreshPrompts() {
	prompts, err := a.st.RecentPrompts(recentPromptCount)
	if err != nil {
		log.Errorf("list prompts: %v", err)
		return
	}
	a.sink.Prompts(prompts)
}

// loggedSource forwards a recognizer session's exit through to the
// diagnostics log before the session manager sees it.
type loggedSource struct {
	session.Source
	done chan recognizer.Exit
}

func newLoggedSource(s session.Source) *loggedSource {
	ls := &loggedSource{Source: s, done: make(chan recognizer.Exit, 1)}
	go func() {
		for exit := range s.Done() {
			log.RecognizerExit(exit.Reason, exit.Stderr)
			ls.done <- exit
		}
		close(ls.done)
	}()
	return ls
}

func (s *loggedSource) Done() <-chan recognizer.Exit { return s.done }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var shutdownOnce sync.Once

func gracefulShutdown(app *App) {
	shutdownOnce.Do(func() {
		log.Info("shutting down")
		if app.sess != nil {
			app.sess.Close()
		}
		if app.st != nil {
			app.st.Close()
		}
		app.mu.Lock()
		n := app.savedCount
		app.mu.Unlock()
		if n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
	})
}

func modeLineText(cfg *config.Config) string {
	model := filepath.Base(cfg.ModelPath)
	if cfg.ModelPath == "" {
		model = "no model"
	}
	line := fmt.Sprintf("[%s | %d Hz | %s]", model, cfg.SampleRate, cfg.Assistant)
	if cfg.Device != "" {
		line += " mic: " + cfg.Device
	}
	return line
}

func run() {
	modelFlag := flag.String("model", "", "Speech model directory")
	rateFlag := flag.Int("rate", 0, "Audio sample rate (default 16000)")
	deviceFlag := flag.String("device", "", "Capture device identifier")
	binFlag := flag.String("bin", "", "Recognizer helper executable")
	assistantFlag := flag.String("assistant", "", "Assistant command for launch (default claude)")
	workdirFlag := flag.String("workdir", "", "Working directory for launched assistant")
	datadirFlag := flag.String("datadir", "", "Prompt store directory")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *modelFlag != "" {
		cfg.ModelPath = *modelFlag
	}
	if *rateFlag != 0 {
		cfg.SampleRate = *rateFlag
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if *binFlag != "" {
		cfg.RecognizerBin = *binFlag
	}
	if *assistantFlag != "" {
		cfg.Assistant = *assistantFlag
	}
	if *workdirFlag != "" {
		cfg.WorkDir = *workdirFlag
	}
	if *datadirFlag != "" {
		cfg.DataDir = *datadirFlag
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: murmur needs a terminal (stdout is not a tty)")
		os.Exit(1)
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rec := recognizer.New(recognizer.Config{
		Bin:        cfg.RecognizerBin,
		ModelPath:  cfg.ModelPath,
		SampleRate: cfg.SampleRate,
		Device:     cfg.Device,
	})

	app := &App{
		cfg:    cfg,
		st:     st,
		launch: launcher.New(cfg.Assistant),
		sink:   tuiSink{},
	}

	app.sess = session.New(
		func() (session.Source, error) {
			s, err := rec.Start()
			if err != nil {
				return nil, err
			}
			log.RecordingStart(s.Pid())
			return newLoggedSource(s), nil
		},
		func(s session.Snapshot) { app.sink.SessionChanged(s) },
	)

	log.SessionStart(cfg.ModelPath, cfg.RecognizerBin)

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(app, modeLineText(cfg))
	tuiMu.Unlock()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown(app)
	}()

	go app.refreshPrompts()

	if _, err := tuiProgram.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		gracefulShutdown(app)
		os.Exit(1)
	}
	gracefulShutdown(app)
}

func main() {
	run()
}
