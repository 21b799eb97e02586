// Package taxonomy defines the core data model for the NCBI taxonomy:
// taxon identifiers, ranks, nodes, ID sets, and the Index contract that
// both hierarchy representations implement. It also parses the raw dump
// records and line-oriented tax ID list files.
package taxonomy

// TaxonID is an opaque taxonomy identifier. Values are numeric in
// practice but must be treated as opaque tokens: leading zeros and any
// other lexical quirks round-trip unchanged.
type TaxonID string

// Node is a single taxon: its identity, its parent link, and its rank.
// The root node is the one whose ParentID equals its own ID.
type Node struct {
	ID       TaxonID `json:"tax_id"`
	ParentID TaxonID `json:"parent_tax_id"`
	Rank     Rank    `json:"rank"`
	Label    string  `json:"label,omitempty"` // scientific name, when names.dmp was available
}

// IsRoot reports whether the node is the self-parented root sentinel.
func (n Node) IsRoot() bool {
	return n.ID == n.ParentID
}

// Index is the contract shared by the hierarchy representations.
// The adjacency index (core/tree) is the reference implementation; the
// nested-set index (core/interval) answers the same queries via interval
// containment.
//
// An Index is immutable once built. Filter never mutates the receiver;
// it derives a new Index restricted to the keep set's ancestor paths and
// descendant subtrees, so published indexes are always safe to share
// across concurrent readers.
type Index interface {
	// Root returns the ID of the root node.
	Root() TaxonID
	// Len returns the number of nodes held, orphans included.
	Len() int
	// Get returns the node for id, if present.
	Get(id TaxonID) (Node, bool)
	// Contains reports whether id is present, orphans included.
	Contains(id TaxonID) bool
	// ChildrenOf returns the direct children of id.
	ChildrenOf(id TaxonID) []TaxonID
	// SubtreeOf returns id plus all its transitive descendants.
	// It returns nil when id is not present.
	SubtreeOf(id TaxonID) IDSet
	// Filter derives a new Index containing, for every keep ID, its
	// ancestor path up to the root and its full subtree. Unknown keep
	// IDs fail the call with an UnknownTaxonError unless ignoreInvalid
	// is set, in which case they are skipped.
	Filter(keep []TaxonID, ignoreInvalid bool) (Index, error)
	// IDs returns every known tax ID, orphans included, in no
	// particular order.
	IDs() []TaxonID
}

// BatchResolver is implemented by indexes that can resolve the union of
// several subtrees more cheaply than one SubtreeOf call per ID. The
// query engine uses it when available; the result must be identical to
// unioning the individual SubtreeOf results.
type BatchResolver interface {
	SubtreeOfAll(ids []TaxonID) IDSet
}
