package tree

import (
	"sort"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// DefaultRootID is the conventional NCBI root tax ID.
const DefaultRootID taxonomy.TaxonID = "1"

// Options controls a build.
type Options struct {
	// RootID is the expected root; when empty the first self-parented
	// node wins and DefaultRootID breaks ties.
	RootID taxonomy.TaxonID
}

// Report collects the anomalies of one build so they can be surfaced
// once, instead of one failure per bad line.
type Report struct {
	Root         taxonomy.TaxonID
	Nodes        int
	Malformed    []*errors.MalformedRecordError
	Duplicates   []*errors.DuplicateIDError
	Orphans      []taxonomy.TaxonID
	UnknownRanks []taxonomy.Rank
}

// HasAnomalies reports whether the build saw malformed lines,
// duplicates, orphans, or unrecognized ranks.
func (r *Report) HasAnomalies() bool {
	return len(r.Malformed) > 0 || len(r.Duplicates) > 0 ||
		len(r.Orphans) > 0 || len(r.UnknownRanks) > 0
}

// Build links scanned dump records into an adjacency Tree.
//
// Two passes: pass 1 materializes the id→node map, pass 2 appends every
// node to its parent's child list in record order. The root sentinel
// (parent == id) is recorded but never self-appended. A node whose
// parent is absent is an orphan: retained in the map, excluded from any
// root-reachable subtree, and reported.
//
// Duplicate policy (deterministic): the first declaration of an ID
// wins. A re-declaration with identical parent and rank is ignored
// silently; a conflicting one is recorded in the report and ignored.
//
// Build fails only when no self-parented root exists.
func Build(scan *taxonomy.ScanResult, labels map[taxonomy.TaxonID]string, opts Options) (*Tree, *Report, error) {
	report := &Report{Malformed: scan.Malformed}

	t := &Tree{
		nodes:    make(map[taxonomy.TaxonID]taxonomy.Node, len(scan.Records)),
		children: make(map[taxonomy.TaxonID][]taxonomy.TaxonID),
	}

	unknownRanks := make(map[taxonomy.Rank]struct{})

	// pass 1: materialize nodes, first declaration wins
	for _, rec := range scan.Records {
		node := taxonomy.Node{
			ID:       rec.ID,
			ParentID: rec.ParentID,
			Rank:     rec.Rank,
			Label:    labels[rec.ID],
		}
		if prev, ok := t.nodes[rec.ID]; ok {
			if prev.ParentID != node.ParentID || prev.Rank != node.Rank {
				report.Duplicates = append(report.Duplicates,
					errors.NewDuplicateID(string(rec.ID), rec.Line))
			}
			continue
		}
		t.nodes[rec.ID] = node
		if !taxonomy.KnownRank(rec.Rank) {
			unknownRanks[rec.Rank] = struct{}{}
		}
	}

	// pass 2: link children in record order
	var roots []taxonomy.TaxonID
	linked := taxonomy.NewIDSet()
	for _, rec := range scan.Records {
		if linked.Has(rec.ID) {
			continue
		}
		linked.Add(rec.ID)
		node := t.nodes[rec.ID]
		if node.IsRoot() {
			roots = append(roots, node.ID)
			continue
		}
		if _, ok := t.nodes[node.ParentID]; !ok {
			t.orphans = append(t.orphans, node.ID)
			continue
		}
		t.children[node.ParentID] = append(t.children[node.ParentID], node.ID)
	}

	root, err := pickRoot(roots, opts.RootID)
	if err != nil {
		return nil, report, err
	}
	t.root = root

	report.Root = root
	report.Nodes = len(t.nodes)
	report.Orphans = append(report.Orphans, t.orphans...)
	for r := range unknownRanks {
		report.UnknownRanks = append(report.UnknownRanks, r)
	}
	sort.Slice(report.UnknownRanks, func(i, j int) bool {
		return report.UnknownRanks[i] < report.UnknownRanks[j]
	})
	return t, report, nil
}

// pickRoot selects the root among the self-parented candidates. The
// requested ID wins when present; otherwise the first candidate in
// record order.
func pickRoot(roots []taxonomy.TaxonID, want taxonomy.TaxonID) (taxonomy.TaxonID, error) {
	if len(roots) == 0 {
		id := want
		if id == "" {
			id = DefaultRootID
		}
		return "", errors.NewRootNotFound(string(id))
	}
	if want == "" {
		want = DefaultRootID
	}
	for _, r := range roots {
		if r == want {
			return r, nil
		}
	}
	return roots[0], nil
}
