// Package snapshot serializes built taxonomy indexes to disk and back.
// The contract is byte-for-byte round-trip fidelity: loading a written
// snapshot yields an index with identical nodes, parent links, and
// computed intervals.
//
// Formats:
//   - bin    gob-encoded, blake3-verified binary blob (default)
//   - binxz  the same blob, xz-compressed
//   - json   human-readable JSON document
//   - sqlite SQLite database (pure Go driver by default, CGO driver
//     behind the cgo_sqlite build tag)
package snapshot

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/interval"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
	"github.com/taxonresolver/taxonresolver/core/tree"
)

// Version is the current snapshot schema version.
const Version = 1

// Variant identifies which index representation a snapshot holds.
type Variant string

// Supported variants.
const (
	VariantAdjacency Variant = "adjacency"
	VariantInterval  Variant = "interval"
)

// Format identifies a snapshot encoding.
type Format string

// Supported formats.
const (
	FormatBin    Format = "bin"
	FormatBinXZ  Format = "binxz"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatBin:
		return FormatBin, nil
	case FormatBinXZ:
		return FormatBinXZ, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSQLite:
		return FormatSQLite, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedFormat, "snapshot format %q", s)
}

// DetectFormat guesses the format from a file extension, defaulting to
// the binary format.
func DetectFormat(path string) Format {
	switch {
	case strings.HasSuffix(path, ".xz"):
		return FormatBinXZ
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"),
		strings.HasSuffix(path, ".sqlite3"):
		return FormatSQLite
	default:
		return FormatBin
	}
}

// Snapshot is the serialized form of a built index. Nodes are stored in
// the index's deterministic order so child lists relink identically on
// restore; Intervals is populated for the interval variant only.
type Snapshot struct {
	Version   int              `json:"version"`
	ID        string           `json:"id"` // stamped per write
	CreatedAt time.Time        `json:"created_at"`
	Variant   Variant          `json:"variant"`
	Root      taxonomy.TaxonID `json:"root"`
	Nodes     []taxonomy.Node  `json:"nodes"`
	Intervals []interval.Row   `json:"intervals,omitempty"`
}

// Capture turns a built index into its serializable form, stamping a
// fresh snapshot ID and creation time.
func Capture(idx taxonomy.Index) (*Snapshot, error) {
	s := &Snapshot{
		Version:   Version,
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Root:      idx.Root(),
	}
	switch v := idx.(type) {
	case *tree.Tree:
		s.Variant = VariantAdjacency
		s.Nodes = v.Nodes()
	case *interval.Table:
		s.Variant = VariantInterval
		s.Nodes = v.Nodes()
		s.Intervals = v.Rows()
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "index type %T", idx)
	}
	return s, nil
}

// Restore rebuilds the index a snapshot holds.
func (s *Snapshot) Restore() (taxonomy.Index, error) {
	if s.Version != Version {
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "snapshot version %d", s.Version)
	}
	switch s.Variant {
	case VariantAdjacency:
		return tree.New(s.Nodes, s.Root)
	case VariantInterval:
		return interval.FromRows(s.Nodes, s.Intervals, s.Root)
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "snapshot variant %q", s.Variant)
}
