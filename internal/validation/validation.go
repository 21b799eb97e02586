// Package validation checks CLI input and output paths before any
// expensive work starts, so bad flags fail fast with a clear message.
package validation

import (
	"errors"
	"fmt"
	"os"
)

// Common validation errors.
var (
	ErrNotAFile    = errors.New("not a regular file")
	ErrNotReadable = errors.New("not readable")
	ErrNotWritable = errors.New("not writable")
)

// InputFile verifies that path exists and is a readable regular file.
func InputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input file %s: %w", path, ErrNotAFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("input file %s: %w", path, ErrNotReadable)
	}
	return f.Close()
}

// OutputFile verifies that path can be created or appended to. An
// empty probe file is not left behind.
func OutputFile(path string) error {
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("output file %s: %w", path, ErrNotWritable)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output file %s: %w", path, err)
	}
	if os.IsNotExist(statErr) {
		os.Remove(path)
	}
	return nil
}
