// Package errors provides standardized error types and helpers for the
// taxonomy resolver codebase.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrUnknownTaxon indicates a tax ID absent from the index
	ErrUnknownTaxon = errors.New("unknown tax id")
	// ErrMalformedRecord indicates a dump line with too few fields
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateID indicates the same tax ID declared twice with conflicting data
	ErrDuplicateID = errors.New("duplicate tax id")
	// ErrRootNotFound indicates no node satisfies the self-parent root condition
	ErrRootNotFound = errors.New("root not found")
	// ErrOrphanNode indicates a node whose parent is absent from the build input
	ErrOrphanNode = errors.New("orphan node")
	// ErrUnsupportedFormat indicates an unsupported snapshot or dump format
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorruptSnapshot indicates a snapshot that failed integrity verification
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// UnknownTaxonError reports tax IDs that were not found in the index.
// It always names the offending IDs so a failed query is actionable.
type UnknownTaxonError struct {
	Op  string   // Operation that rejected the IDs (e.g., "search", "filter")
	IDs []string // Offending tax IDs
}

func (e *UnknownTaxonError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: unknown tax ids: %s", e.Op, strings.Join(e.IDs, ", "))
	}
	return fmt.Sprintf("unknown tax ids: %s", strings.Join(e.IDs, ", "))
}

func (e *UnknownTaxonError) Unwrap() error {
	return ErrUnknownTaxon
}

// MalformedRecordError reports a dump line that could not be parsed.
type MalformedRecordError struct {
	Line   int    // 1-based line number in the dump
	Fields int    // Number of fields found
	Text   string // Offending line (may be truncated)
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %d field(s)", e.Line, e.Fields)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// DuplicateIDError reports a tax ID declared twice with conflicting
// parent or rank. The first declaration wins; the conflict is surfaced.
type DuplicateIDError struct {
	ID   string // Tax ID declared twice
	Line int    // Line of the conflicting (rejected) declaration
}

func (e *DuplicateIDError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate tax id %s at line %d", e.ID, e.Line)
	}
	return fmt.Sprintf("duplicate tax id %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// RootNotFoundError reports a build whose input contained no node with
// parent_tax_id == tax_id.
type RootNotFoundError struct {
	RootID string // Root ID that was expected (conventionally "1")
}

func (e *RootNotFoundError) Error() string {
	if e.RootID != "" {
		return fmt.Sprintf("root %s not found: no node is its own parent", e.RootID)
	}
	return "root not found: no node is its own parent"
}

func (e *RootNotFoundError) Unwrap() error {
	return ErrRootNotFound
}

// SnapshotError reports a snapshot read/write failure with context.
type SnapshotError struct {
	Op     string // Operation being performed (e.g., "read", "write", "verify")
	Path   string // Snapshot path involved
	Format string // Snapshot format, if known
	Err    error  // Underlying error
}

func (e *SnapshotError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewUnknownTaxon creates an UnknownTaxonError
func NewUnknownTaxon(op string, ids []string) *UnknownTaxonError {
	return &UnknownTaxonError{
		Op:  op,
		IDs: ids,
	}
}

// NewMalformedRecord creates a MalformedRecordError
func NewMalformedRecord(line, fields int, text string) *MalformedRecordError {
	return &MalformedRecordError{
		Line:   line,
		Fields: fields,
		Text:   text,
	}
}

// NewDuplicateID creates a DuplicateIDError
func NewDuplicateID(id string, line int) *DuplicateIDError {
	return &DuplicateIDError{
		ID:   id,
		Line: line,
	}
}

// NewRootNotFound creates a RootNotFoundError
func NewRootNotFound(rootID string) *RootNotFoundError {
	return &RootNotFoundError{RootID: rootID}
}

// NewSnapshot creates a SnapshotError
func NewSnapshot(op, path, format string, err error) *SnapshotError {
	return &SnapshotError{
		Op:     op,
		Path:   path,
		Format: format,
		Err:    err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
