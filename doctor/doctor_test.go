package doctor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckModel(t *testing.T) {
	dir := t.TempDir()

	if !checkModel(dir) {
		t.Error("existing directory should pass")
	}
	if checkModel("") {
		t.Error("empty path should fail")
	}
	if checkModel(filepath.Join(dir, "missing")) {
		t.Error("missing directory should fail")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if checkModel(file) {
		t.Error("regular file should fail")
	}
}

func TestCheckHelper(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "murmur-helper")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	if !checkHelper("murmur-helper") {
		t.Error("helper on PATH should pass")
	}
	if checkHelper("not-a-helper") {
		t.Error("missing helper should fail")
	}
}
