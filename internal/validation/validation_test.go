package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInputFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InputFile(path); err != nil {
		t.Errorf("InputFile(existing) = %v", err)
	}

	if err := InputFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("InputFile(missing) = nil, want error")
	}

	if err := InputFile(dir); err == nil {
		t.Error("InputFile(directory) = nil, want error")
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "out.txt")
	if err := OutputFile(path); err != nil {
		t.Errorf("OutputFile(new) = %v", err)
	}
	// the probe must not leave an empty file behind
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("probe file left behind")
	}

	if err := os.WriteFile(path, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := OutputFile(path); err != nil {
		t.Errorf("OutputFile(existing) = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "keep" {
		t.Error("existing file content clobbered by probe")
	}

	if err := OutputFile(filepath.Join(dir, "nodir", "out.txt")); err == nil {
		t.Error("OutputFile(bad dir) = nil, want error")
	}
}
