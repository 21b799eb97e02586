// Package resolver is the high-level facade over dump parsing, index
// construction, snapshot IO, and set-algebra queries. The CLI and
// library callers go through it; the core packages underneath stay
// independent of each other's wiring.
package resolver

import (
	stderrors "errors"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/interval"
	"github.com/taxonresolver/taxonresolver/core/query"
	"github.com/taxonresolver/taxonresolver/core/snapshot"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
	"github.com/taxonresolver/taxonresolver/core/tree"
	"github.com/taxonresolver/taxonresolver/internal/archive"
	"github.com/taxonresolver/taxonresolver/internal/logging"
)

// ParseMode converts a user-supplied index mode name.
func ParseMode(s string) (snapshot.Variant, error) {
	switch snapshot.Variant(s) {
	case snapshot.VariantAdjacency:
		return snapshot.VariantAdjacency, nil
	case snapshot.VariantInterval:
		return snapshot.VariantInterval, nil
	}
	return "", errors.Wrapf(errors.ErrUnsupportedFormat, "index mode %q", s)
}

// Resolver wraps a built index with its query engine and, when the
// index came from a dump build, the build report.
type Resolver struct {
	engine *query.Engine
	report *tree.Report
}

// FromIndex wraps an already-built index.
func FromIndex(idx taxonomy.Index) *Resolver {
	return &Resolver{engine: query.New(idx)}
}

// BuildOptions controls BuildFromDump.
type BuildOptions struct {
	// Mode selects the index representation; empty means interval.
	Mode snapshot.Variant
	// RootID overrides the expected root tax ID.
	RootID taxonomy.TaxonID
}

// BuildFromDump parses a taxonomy dump (zip, tar.gz, tar.xz, or a bare
// nodes.dmp), builds the requested index variant, and logs every build
// anomaly. names.dmp is optional: when the dump carries one, scientific
// names become node labels.
func BuildFromDump(path string, opts BuildOptions) (*Resolver, error) {
	dump, err := archive.Open(path)
	if err != nil {
		return nil, err
	}

	nodes, err := dump.Nodes()
	if err != nil {
		return nil, err
	}
	scan, err := taxonomy.ScanNodes(nodes)
	nodes.Close()
	if err != nil {
		return nil, err
	}

	labels, err := readLabels(dump)
	if err != nil {
		return nil, err
	}

	t, report, err := tree.Build(scan, labels, tree.Options{RootID: opts.RootID})
	if err != nil {
		return nil, err
	}
	logReport(report)

	var idx taxonomy.Index = t
	if opts.Mode != snapshot.VariantAdjacency {
		idx = interval.FromTree(t)
	}
	return &Resolver{engine: query.New(idx), report: report}, nil
}

func readLabels(dump *archive.Dump) (map[taxonomy.TaxonID]string, error) {
	names, err := dump.Names()
	if stderrors.Is(err, archive.ErrMemberNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer names.Close()
	return taxonomy.ScanNames(names)
}

func logReport(r *tree.Report) {
	logging.Info("taxonomy index built", "root", r.Root, "nodes", r.Nodes)
	for _, m := range r.Malformed {
		logging.Warn("skipped malformed record", "line", m.Line, "fields", m.Fields)
	}
	for _, d := range r.Duplicates {
		logging.Warn("ignored conflicting re-declaration", "tax_id", d.ID, "line", d.Line)
	}
	if len(r.Orphans) > 0 {
		logging.Warn("orphan nodes excluded from root subtree", "count", len(r.Orphans))
	}
	if len(r.UnknownRanks) > 0 {
		logging.Warn("unrecognized ranks", "ranks", r.UnknownRanks)
	}
}

// LoadSnapshot restores a previously written snapshot.
func LoadSnapshot(path string, format snapshot.Format) (*Resolver, error) {
	idx, err := snapshot.Load(path, format)
	if err != nil {
		return nil, err
	}
	return FromIndex(idx), nil
}

// Index exposes the underlying index.
func (r *Resolver) Index() taxonomy.Index {
	return r.engine.Index()
}

// Report returns the build report, or nil when the index was restored
// from a snapshot or wrapped directly.
func (r *Resolver) Report() *tree.Report {
	return r.report
}

// Write persists the index in the given snapshot format.
func (r *Resolver) Write(path string, format snapshot.Format) error {
	return snapshot.Write(r.Index(), path, format)
}

// Search runs the include/exclude/filter set algebra and returns the
// matching tax IDs in sorted order.
func (r *Resolver) Search(req query.Request) ([]taxonomy.TaxonID, error) {
	set, err := r.engine.Search(req)
	if err != nil {
		return nil, err
	}
	return set.Slice(), nil
}

// Validate reports whether every given tax ID exists in the index.
func (r *Resolver) Validate(ids []taxonomy.TaxonID) bool {
	return r.engine.Validate(ids)
}

// Invalid returns the unknown tax IDs among ids, in input order.
func (r *Resolver) Invalid(ids []taxonomy.TaxonID) []taxonomy.TaxonID {
	return r.engine.Invalid(ids)
}

// Filter returns a new Resolver over the pruned index: the kept IDs,
// their subtrees, and the ancestor spine up to the root.
func (r *Resolver) Filter(keep []taxonomy.TaxonID, ignoreInvalid bool) (*Resolver, error) {
	idx, err := r.Index().Filter(keep, ignoreInvalid)
	if err != nil {
		return nil, err
	}
	return FromIndex(idx), nil
}
