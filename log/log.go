package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog    zerolog.Logger
	diagFile   *os.File
	promptFile *os.File
	logMu      sync.Mutex
	logReady   bool
	pid        int
	dir        string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: MURMUR_LOG_PATH environment variable
	envPath := os.Getenv("MURMUR_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	promptPath := filepath.Join(dir, "prompt_log.txt")
	promptFile, err = os.OpenFile(promptPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if promptFile != nil {
		promptFile.Close()
		promptFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// PromptText appends one committed prompt to the plain-text prompt log.
func PromptText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	promptFile.WriteString(line)
}

func SessionStart(model, helper string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("model", model).
		Str("helper", helper).
		Msg("session_start")
}

func SessionEnd(prompts int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("prompts", prompts).
		Msg("session_end")
}

func RecordingStart(pid int) {
	if logReady {
		diagLog.Info().Int("helper_pid", pid).Msg("recording_start")
	}
}

func RecordingStop() {
	if logReady {
		diagLog.Info().Msg("recording_stop")
	}
}

func RecognizerExit(reason, stderr string) {
	if !logReady {
		return
	}
	ev := diagLog.Warn().Str("reason", reason)
	if stderr != "" {
		ev = ev.Str("stderr", stderr)
	}
	ev.Msg("recognizer_exit")
}

func PromptSaved(id string, chars int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("prompt_id", id).
		Int("chars", chars).
		Msg("prompt_saved")
}

func LaunchEvent(sessionName, command string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("session", sessionName).
		Str("command", command).
		Msg("assistant_launch")
}
