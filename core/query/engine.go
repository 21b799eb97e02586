// Package query implements the include/exclude/filter/validate set
// algebra on top of the taxonomy.Index contract. It is representation
// agnostic: any Index works, and indexes implementing
// taxonomy.BatchResolver get their multi-subtree fast path used
// automatically.
package query

import (
	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// Request describes one search call.
//
// Semantics, applied strictly in order:
//  1. Include resolves to the union of each ID plus its full subtree.
//  2. Exclude, if any, resolves the same way and is subtracted.
//  3. Filter, if any, is a literal ID set (no subtree expansion) that
//     the result is intersected with.
//
// Any step whose input contains an ID absent from the index fails the
// whole call with an UnknownTaxonError naming the offenders, unless
// IgnoreInvalid is set, in which case unknown IDs are dropped from that
// step's input and never reach the result.
type Request struct {
	Include       []taxonomy.TaxonID
	Exclude       []taxonomy.TaxonID
	Filter        []taxonomy.TaxonID
	IgnoreInvalid bool
}

// Engine answers set-membership queries against a built index. It only
// reads the index, so one Engine (or many) may share an index across
// goroutines.
type Engine struct {
	idx taxonomy.Index
}

// New creates an Engine over idx.
func New(idx taxonomy.Index) *Engine {
	return &Engine{idx: idx}
}

// Index returns the underlying index.
func (e *Engine) Index() taxonomy.Index {
	return e.idx
}

// Search runs the include/exclude/filter pipeline and returns the
// matching tax IDs. The result is unordered and duplicate free.
func (e *Engine) Search(req Request) (taxonomy.IDSet, error) {
	include, err := e.vet("search include", req.Include, req.IgnoreInvalid)
	if err != nil {
		return nil, err
	}
	result := e.expand(include)

	if len(req.Exclude) > 0 {
		exclude, err := e.vet("search exclude", req.Exclude, req.IgnoreInvalid)
		if err != nil {
			return nil, err
		}
		result.Subtract(e.expand(exclude))
	}

	if len(req.Filter) > 0 {
		filter, err := e.vet("search filter", req.Filter, req.IgnoreInvalid)
		if err != nil {
			return nil, err
		}
		result.Intersect(taxonomy.NewIDSet(filter...))
	}
	return result, nil
}

// Validate reports whether every supplied ID is present in the index.
// All or nothing: one unknown ID makes the whole set invalid.
func (e *Engine) Validate(ids []taxonomy.TaxonID) bool {
	for _, id := range ids {
		if !e.idx.Contains(id) {
			return false
		}
	}
	return true
}

// Invalid returns the subset of ids absent from the index, in input
// order without duplicates. It backs the user-facing diagnostics that
// must name offending IDs rather than just fail.
func (e *Engine) Invalid(ids []taxonomy.TaxonID) []taxonomy.TaxonID {
	var out []taxonomy.TaxonID
	seen := taxonomy.NewIDSet()
	for _, id := range ids {
		if e.idx.Contains(id) || seen.Has(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}

// vet validates one resolution step's input set. Unknown IDs either
// fail the call or, with ignoreInvalid, are dropped.
func (e *Engine) vet(op string, ids []taxonomy.TaxonID, ignoreInvalid bool) ([]taxonomy.TaxonID, error) {
	valid := make([]taxonomy.TaxonID, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		if e.idx.Contains(id) {
			valid = append(valid, id)
		} else {
			unknown = append(unknown, string(id))
		}
	}
	if len(unknown) > 0 && !ignoreInvalid {
		return nil, errors.NewUnknownTaxon(op, unknown)
	}
	return valid, nil
}

// expand resolves ids to the union of each ID plus its subtree, taking
// the batch fast path when the index offers one.
func (e *Engine) expand(ids []taxonomy.TaxonID) taxonomy.IDSet {
	if br, ok := e.idx.(taxonomy.BatchResolver); ok {
		return br.SubtreeOfAll(ids)
	}
	out := taxonomy.NewIDSet()
	for _, id := range ids {
		out.Union(e.idx.SubtreeOf(id))
	}
	return out
}
