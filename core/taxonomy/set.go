package taxonomy

import "sort"

// IDSet is an unordered set of tax IDs.
type IDSet map[TaxonID]struct{}

// NewIDSet creates a set from the given IDs.
func NewIDSet(ids ...TaxonID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id TaxonID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id TaxonID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Union adds every ID from other to s and returns s.
func (s IDSet) Union(other IDSet) IDSet {
	for id := range other {
		s[id] = struct{}{}
	}
	return s
}

// Subtract removes every ID in other from s and returns s.
func (s IDSet) Subtract(other IDSet) IDSet {
	for id := range other {
		delete(s, id)
	}
	return s
}

// Intersect removes every ID not in other from s and returns s.
func (s IDSet) Intersect(other IDSet) IDSet {
	for id := range s {
		if !other.Has(id) {
			delete(s, id)
		}
	}
	return s
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the IDs in lexicographic order. Sorting keeps output
// and error messages deterministic across runs.
func (s IDSet) Slice() []TaxonID {
	out := make([]TaxonID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted IDs as plain strings.
func (s IDSet) Strings() []string {
	ids := s.Slice()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
