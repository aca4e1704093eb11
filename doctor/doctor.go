// Package doctor runs environment diagnostics: it verifies that the
// recognizer helper, speech model, tmux, and clipboard are all usable
// before a dictation session is attempted.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"murmur/clipboard"
	"murmur/config"
)

// Run executes the diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run(cfg *config.Config) int {
	fmt.Println("murmur doctor - system diagnostics")
	fmt.Println("==================================")

	allPass := true

	if !checkHelper(cfg.RecognizerBin) {
		allPass = false
	}
	if !checkModel(cfg.ModelPath) {
		allPass = false
	}
	if !checkTmux() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}
	if !checkDataDir(cfg) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHelper(bin string) bool {
	fmt.Println()
	fmt.Println("[1/5] Recognizer helper")
	if bin == "" {
		bin = "murmur-helper"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		fmt.Printf("  FAIL: %s not found in PATH: %v\n", bin, err)
		return false
	}
	fmt.Printf("  PASS: %s\n", path)
	return true
}

func checkModel(modelPath string) bool {
	fmt.Println()
	fmt.Println("[2/5] Speech model")
	if modelPath == "" {
		fmt.Println("  FAIL: no model path configured (set model_path or MURMUR_MODEL)")
		return false
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	if !info.IsDir() {
		fmt.Printf("  FAIL: %s is not a directory\n", modelPath)
		return false
	}
	fmt.Printf("  PASS: %s\n", modelPath)
	return true
}

func checkTmux() bool {
	fmt.Println()
	fmt.Println("[3/5] tmux")
	path, err := exec.LookPath("tmux")
	if err != nil {
		fmt.Printf("  FAIL: tmux not found in PATH: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", path)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/5] Clipboard")
	if !clipboard.Available() {
		fmt.Println("  FAIL: no clipboard backend on this system")
		return false
	}
	sentinel := "murmur-doctor-test"
	if err := clipboard.Copy(sentinel); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != sentinel {
		fmt.Printf("  FAIL: clipboard round-trip mismatch (got %q)\n", got)
		return false
	}
	fmt.Println("  PASS: clipboard round-trip verified")
	return true
}

func checkDataDir(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[5/5] Prompt store directory")
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		fmt.Printf("  FAIL: %s not writable: %v\n", dir, err)
		return false
	}
	os.Remove(probe)
	fmt.Printf("  PASS: %s\n", dir)
	return true
}
