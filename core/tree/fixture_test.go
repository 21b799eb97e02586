package tree

import (
	"testing"

	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// fixtureTriples mirrors the synthetic mock hierarchy used throughout
// the test suite: node 4 owns a multi-level subtree of 14 nodes
// (including itself), node 24 a subtree of 4, and node 29 is a leaf.
//
//	1
//	├── 2
//	│   └── 4
//	│       ├── 5 ── 7 ── 12
//	│       │    └── 8 ── 13
//	│       ├── 6 ── 9, 10, 11
//	│       └── 24 ── 25, 26, 27
//	└── 3
//	    ├── 28
//	    └── 29
var fixtureTriples = [][3]string{
	{"1", "1", "no rank"},
	{"2", "1", "superkingdom"},
	{"3", "1", "superkingdom"},
	{"4", "2", "phylum"},
	{"5", "4", "class"},
	{"6", "4", "class"},
	{"24", "4", "class"},
	{"7", "5", "order"},
	{"8", "5", "order"},
	{"12", "7", "species"},
	{"13", "8", "species"},
	{"9", "6", "species"},
	{"10", "6", "species"},
	{"11", "6", "species"},
	{"25", "24", "species"},
	{"26", "24", "species"},
	{"27", "24", "species"},
	{"28", "3", "species"},
	{"29", "3", "species"},
}

func fixtureScan() *taxonomy.ScanResult {
	res := &taxonomy.ScanResult{}
	for i, tr := range fixtureTriples {
		res.Records = append(res.Records, taxonomy.Record{
			ID:       taxonomy.TaxonID(tr[0]),
			ParentID: taxonomy.TaxonID(tr[1]),
			Rank:     taxonomy.NormalizeRank(tr[2]),
			Line:     i + 1,
		})
	}
	return res
}

func buildFixture(t *testing.T) *Tree {
	t.Helper()
	tr, report, err := Build(fixtureScan(), nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.HasAnomalies() {
		t.Fatalf("unexpected anomalies: %+v", report)
	}
	return tr
}
