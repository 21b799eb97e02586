package query

import (
	"reflect"
	"testing"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/interval"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
	"github.com/taxonresolver/taxonresolver/core/tree"
)

// Same synthetic hierarchy as the index tests: node 4 owns a 14-node
// subtree, node 24 a 4-node subtree, node 29 is a leaf.
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

func buildIndexes(t *testing.T) map[string]taxonomy.Index {
	t.Helper()
	scan := &taxonomy.ScanResult{}
	for i, tr := range fixtureTriples {
		scan.Records = append(scan.Records, taxonomy.Record{
			ID:       taxonomy.TaxonID(tr[0]),
			ParentID: taxonomy.TaxonID(tr[1]),
			Rank:     taxonomy.NormalizeRank(tr[2]),
			Line:     i + 1,
		})
	}
	adj, _, err := tree.Build(scan, nil, tree.Options{})
	if err != nil {
		t.Fatalf("tree.Build: %v", err)
	}
	return map[string]taxonomy.Index{
		"adjacency": adj,
		"interval":  interval.FromTree(adj),
	}
}

func TestSearchConcreteScenario(t *testing.T) {
	for variant, idx := range buildIndexes(t) {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)

			// include a mid-tree node: its whole 14-node subtree
			got, err := e.Search(Request{Include: []taxonomy.TaxonID{"4"}})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got.Len() != 14 {
				t.Errorf("include 4: %d ids, want 14: %v", got.Len(), got.Slice())
			}

			// exclude 24's 4-node subtree
			got, err = e.Search(Request{
				Include: []taxonomy.TaxonID{"4"},
				Exclude: []taxonomy.TaxonID{"24"},
			})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got.Len() != 10 {
				t.Errorf("include 4 exclude 24: %d ids, want 10: %v", got.Len(), got.Slice())
			}
			for _, id := range []taxonomy.TaxonID{"24", "25", "26", "27"} {
				if got.Has(id) {
					t.Errorf("excluded id %s present in result", id)
				}
			}

			// a leaf resolves to itself
			got, err = e.Search(Request{Include: []taxonomy.TaxonID{"29"}})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !reflect.DeepEqual(got.Slice(), []taxonomy.TaxonID{"29"}) {
				t.Errorf("include 29 = %v, want [29]", got.Slice())
			}
		})
	}
}

func TestSearchAlgebra(t *testing.T) {
	for variant, idx := range buildIndexes(t) {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)
			include := []taxonomy.TaxonID{"5", "24", "29"}
			exclude := []taxonomy.TaxonID{"8"}

			// include-only equals the union of the subtrees
			want := taxonomy.NewIDSet()
			for _, id := range include {
				want.Union(idx.SubtreeOf(id))
			}
			got, err := e.Search(Request{Include: include})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !reflect.DeepEqual(got.Slice(), want.Slice()) {
				t.Errorf("include union mismatch: %v vs %v", got.Slice(), want.Slice())
			}

			// exclude subtracts the union of excluded subtrees
			want = want.Clone().Subtract(idx.SubtreeOf("8"))
			got, err = e.Search(Request{Include: include, Exclude: exclude})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !reflect.DeepEqual(got.Slice(), want.Slice()) {
				t.Errorf("exclude mismatch: %v vs %v", got.Slice(), want.Slice())
			}

			// filter always yields a subset of the filter set
			filter := []taxonomy.TaxonID{"5", "7", "29", "2"}
			got, err = e.Search(Request{Include: include, Exclude: exclude, Filter: filter})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			filterSet := taxonomy.NewIDSet(filter...)
			for id := range got {
				if !filterSet.Has(id) {
					t.Errorf("result id %s outside filter set", id)
				}
			}
			// filter is literal: 2 is an ancestor, not in the expanded
			// include set, so it must not appear
			if got.Has("2") {
				t.Error("filter id 2 leaked into result without expansion")
			}
			if !got.Has("5") || !got.Has("7") || !got.Has("29") {
				t.Errorf("expected 5, 7, 29 in result, got %v", got.Slice())
			}
		})
	}
}

// Searching for an orphan branch must return the branch's full
// subtree, identically on both index variants.
func TestSearchOrphanBranch(t *testing.T) {
	scan := &taxonomy.ScanResult{}
	triples := append([][3]string{}, fixtureTriples...)
	triples = append(triples, [3]string{"50", "99", "genus"}, [3]string{"51", "50", "species"})
	for i, tr := range triples {
		scan.Records = append(scan.Records, taxonomy.Record{
			ID:       taxonomy.TaxonID(tr[0]),
			ParentID: taxonomy.TaxonID(tr[1]),
			Rank:     taxonomy.NormalizeRank(tr[2]),
			Line:     i + 1,
		})
	}
	adj, _, err := tree.Build(scan, nil, tree.Options{})
	if err != nil {
		t.Fatalf("tree.Build: %v", err)
	}
	indexes := map[string]taxonomy.Index{
		"adjacency": adj,
		"interval":  interval.FromTree(adj),
	}

	want := []taxonomy.TaxonID{"50", "51"}
	for variant, idx := range indexes {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)
			got, err := e.Search(Request{Include: []taxonomy.TaxonID{"50"}})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !reflect.DeepEqual(got.Slice(), want) {
				t.Errorf("include orphan 50 = %v, want %v", got.Slice(), want)
			}

			// the orphan branch stays excludable like any other subtree
			got, err = e.Search(Request{
				Include: []taxonomy.TaxonID{"50", "29"},
				Exclude: []taxonomy.TaxonID{"51"},
			})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !reflect.DeepEqual(got.Slice(), []taxonomy.TaxonID{"29", "50"}) {
				t.Errorf("orphan algebra = %v, want [29 50]", got.Slice())
			}
		})
	}
}

func TestSearchUnknownIDs(t *testing.T) {
	for variant, idx := range buildIndexes(t) {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)

			_, err := e.Search(Request{Include: []taxonomy.TaxonID{"4", "404"}})
			var unknown *errors.UnknownTaxonError
			if !errors.As(err, &unknown) {
				t.Fatalf("err = %v, want UnknownTaxonError", err)
			}
			if !reflect.DeepEqual(unknown.IDs, []string{"404"}) {
				t.Errorf("offenders = %v, want [404]", unknown.IDs)
			}

			// unknown exclude fails too
			if _, err := e.Search(Request{
				Include: []taxonomy.TaxonID{"4"},
				Exclude: []taxonomy.TaxonID{"404"},
			}); !errors.Is(err, errors.ErrUnknownTaxon) {
				t.Errorf("unknown exclude: err = %v, want ErrUnknownTaxon", err)
			}

			// unknown filter fails too
			if _, err := e.Search(Request{
				Include: []taxonomy.TaxonID{"4"},
				Filter:  []taxonomy.TaxonID{"404"},
			}); !errors.Is(err, errors.ErrUnknownTaxon) {
				t.Errorf("unknown filter: err = %v, want ErrUnknownTaxon", err)
			}

			// with IgnoreInvalid the unknown ids are dropped, never added
			got, err := e.Search(Request{
				Include:       []taxonomy.TaxonID{"24", "404"},
				IgnoreInvalid: true,
			})
			if err != nil {
				t.Fatalf("Search with IgnoreInvalid: %v", err)
			}
			if got.Len() != 4 || got.Has("404") {
				t.Errorf("result = %v, want 24's subtree only", got.Slice())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	for variant, idx := range buildIndexes(t) {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)

			tests := []struct {
				name string
				ids  []taxonomy.TaxonID
				want bool
			}{
				{"all known", []taxonomy.TaxonID{"1", "4", "29"}, true},
				{"empty", nil, true},
				{"one unknown", []taxonomy.TaxonID{"4", "404"}, false},
				{"all unknown", []taxonomy.TaxonID{"404"}, false},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					if got := e.Validate(tt.ids); got != tt.want {
						t.Errorf("Validate(%v) = %v, want %v", tt.ids, got, tt.want)
					}
				})
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	for variant, idx := range buildIndexes(t) {
		t.Run(variant, func(t *testing.T) {
			e := New(idx)
			got := e.Invalid([]taxonomy.TaxonID{"4", "404", "808", "404"})
			want := []taxonomy.TaxonID{"404", "808"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Invalid() = %v, want %v", got, want)
			}
			if e.Invalid([]taxonomy.TaxonID{"1", "29"}) != nil {
				t.Error("Invalid() on known ids should be nil")
			}
		})
	}
}
