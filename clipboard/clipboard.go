// Package clipboard is a thin wrapper over the system clipboard, used to
// hand the current draft to other programs.
package clipboard

import cb "github.com/atotto/clipboard"

func Copy(text string) error {
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Available reports whether a clipboard backend is usable on this system.
func Available() bool {
	return !cb.Unsupported
}
