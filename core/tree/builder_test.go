package tree

import (
	"reflect"
	"testing"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

func scanOf(triples [][3]string) *taxonomy.ScanResult {
	res := &taxonomy.ScanResult{}
	for i, tr := range triples {
		res.Records = append(res.Records, taxonomy.Record{
			ID:       taxonomy.TaxonID(tr[0]),
			ParentID: taxonomy.TaxonID(tr[1]),
			Rank:     taxonomy.NormalizeRank(tr[2]),
			Line:     i + 1,
		})
	}
	return res
}

func TestBuildLabels(t *testing.T) {
	labels := map[taxonomy.TaxonID]string{
		"1": "root",
		"2": "Bacteria",
	}
	tr, _, err := Build(scanOf([][3]string{
		{"1", "1", "no rank"},
		{"2", "1", "superkingdom"},
	}), labels, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n, _ := tr.Get("2")
	if n.Label != "Bacteria" {
		t.Errorf("label = %q, want Bacteria", n.Label)
	}
}

func TestBuildOrphan(t *testing.T) {
	// 50's parent 99 is absent; 51 hangs off the orphan
	tr, report, err := Build(scanOf([][3]string{
		{"1", "1", "no rank"},
		{"2", "1", "superkingdom"},
		{"50", "99", "genus"},
		{"51", "50", "species"},
	}), nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !reflect.DeepEqual(report.Orphans, []taxonomy.TaxonID{"50"}) {
		t.Errorf("Orphans = %v, want [50]", report.Orphans)
	}

	// orphan retained in the map but outside the root subtree
	if !tr.Contains("50") || !tr.Contains("51") {
		t.Error("orphan branch missing from node map")
	}
	rootSub := tr.SubtreeOf(tr.Root())
	if rootSub.Has("50") || rootSub.Has("51") {
		t.Error("orphan branch reachable from root")
	}
	if rootSub.Len() != 2 {
		t.Errorf("root subtree size = %d, want 2", rootSub.Len())
	}

	// the orphan's own subtree still works
	if got := tr.SubtreeOf("50"); got.Len() != 2 || !got.Has("51") {
		t.Errorf("SubtreeOf(50) = %v", got.Slice())
	}
}

func TestBuildDuplicatePolicy(t *testing.T) {
	tests := []struct {
		name       string
		triples    [][3]string
		duplicates int
		wantParent taxonomy.TaxonID
	}{
		{
			"conflicting duplicate rejected, first wins",
			[][3]string{
				{"1", "1", "no rank"},
				{"2", "1", "superkingdom"},
				{"3", "1", "superkingdom"},
				{"2", "3", "genus"},
			},
			1,
			"1",
		},
		{
			"identical re-declaration ignored silently",
			[][3]string{
				{"1", "1", "no rank"},
				{"2", "1", "superkingdom"},
				{"2", "1", "superkingdom"},
			},
			0,
			"1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, report, err := Build(scanOf(tt.triples), nil, Options{})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(report.Duplicates) != tt.duplicates {
				t.Errorf("Duplicates = %v, want %d entries", report.Duplicates, tt.duplicates)
			}
			n, _ := tr.Get("2")
			if n.ParentID != tt.wantParent {
				t.Errorf("node 2 parent = %s, want %s", n.ParentID, tt.wantParent)
			}
			// node appended to its parent's child list exactly once
			count := 0
			for _, kid := range tr.ChildrenOf(n.ParentID) {
				if kid == "2" {
					count++
				}
			}
			if count != 1 {
				t.Errorf("node 2 linked %d times, want 1", count)
			}
		})
	}
}

func TestBuildRootNotFound(t *testing.T) {
	_, _, err := Build(scanOf([][3]string{
		{"2", "1", "superkingdom"},
		{"3", "2", "genus"},
	}), nil, Options{})
	if !errors.Is(err, errors.ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
}

func TestBuildUnknownRanks(t *testing.T) {
	_, report, err := Build(scanOf([][3]string{
		{"1", "1", "no rank"},
		{"2", "1", "holobiont stage"},
		{"3", "1", "holobiont stage"},
		{"4", "1", "weird tier"},
	}), nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []taxonomy.Rank{"holobiont_stage", "weird_tier"}
	if !reflect.DeepEqual(report.UnknownRanks, want) {
		t.Errorf("UnknownRanks = %v, want %v", report.UnknownRanks, want)
	}
}

func TestBuildMalformedCarriedIntoReport(t *testing.T) {
	scan := scanOf([][3]string{{"1", "1", "no rank"}})
	scan.Malformed = append(scan.Malformed, errors.NewMalformedRecord(7, 1, "bad"))

	_, report, err := Build(scan, nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(report.Malformed) != 1 || report.Malformed[0].Line != 7 {
		t.Errorf("Malformed = %+v, want line 7 entry", report.Malformed)
	}
	if !report.HasAnomalies() {
		t.Error("HasAnomalies() = false, want true")
	}
}
