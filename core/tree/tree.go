// Package tree implements the adjacency-list taxonomy index: an
// id→node map plus an id→children map, built once from dump records.
// It is the reference implementation of the taxonomy.Index contract;
// core/interval provides the nested-set variant behind the same
// interface.
package tree

import (
	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
)

// Tree is the adjacency-list index. It is immutable after construction:
// Filter derives a new Tree, it never mutates the receiver.
type Tree struct {
	root     taxonomy.TaxonID
	nodes    map[taxonomy.TaxonID]taxonomy.Node
	children map[taxonomy.TaxonID][]taxonomy.TaxonID
	orphans  []taxonomy.TaxonID
}

var _ taxonomy.Index = (*Tree)(nil)

// New reconstructs a Tree from a flat node list, linking children in
// slice order. It is used when restoring snapshots. The root must be
// present and self-parented; nodes with missing parents are kept as
// orphans, as in a fresh build.
func New(nodes []taxonomy.Node, root taxonomy.TaxonID) (*Tree, error) {
	t := &Tree{
		root:     root,
		nodes:    make(map[taxonomy.TaxonID]taxonomy.Node, len(nodes)),
		children: make(map[taxonomy.TaxonID][]taxonomy.TaxonID),
	}
	for _, n := range nodes {
		t.nodes[n.ID] = n
	}

	rootNode, ok := t.nodes[root]
	if !ok || !rootNode.IsRoot() {
		return nil, errors.NewRootNotFound(string(root))
	}

	for _, n := range nodes {
		if n.IsRoot() {
			continue
		}
		if _, ok := t.nodes[n.ParentID]; !ok {
			t.orphans = append(t.orphans, n.ID)
			continue
		}
		t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
	}
	return t, nil
}

// Root returns the root tax ID.
func (t *Tree) Root() taxonomy.TaxonID {
	return t.root
}

// Len returns the number of nodes, orphans included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the node for id, if present.
func (t *Tree) Get(id taxonomy.TaxonID) (taxonomy.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Contains reports whether id is present, orphans included.
func (t *Tree) Contains(id taxonomy.TaxonID) bool {
	_, ok := t.nodes[id]
	return ok
}

// ChildrenOf returns the direct children of id in insertion order.
func (t *Tree) ChildrenOf(id taxonomy.TaxonID) []taxonomy.TaxonID {
	return t.children[id]
}

// SubtreeOf returns id plus all transitive descendants, or nil when id
// is unknown. The walk is an explicit stack traversal, so pathological
// dump depths cannot exhaust the call stack.
func (t *Tree) SubtreeOf(id taxonomy.TaxonID) taxonomy.IDSet {
	if !t.Contains(id) {
		return nil
	}
	out := taxonomy.NewIDSet()
	stack := []taxonomy.TaxonID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out.Has(cur) {
			continue
		}
		out.Add(cur)
		stack = append(stack, t.children[cur]...)
	}
	return out
}

// Orphans returns the IDs whose declared parent was absent from the
// build input, in build order.
func (t *Tree) Orphans() []taxonomy.TaxonID {
	return t.orphans
}

// IDs returns every known tax ID in no particular order.
func (t *Tree) IDs() []taxonomy.TaxonID {
	out := make([]taxonomy.TaxonID, 0, len(t.nodes))
	for id := range t.nodes {
		out = append(out, id)
	}
	return out
}

// Nodes returns every node ordered root-first by pre-order traversal,
// with orphan branches appended afterwards. The order is deterministic
// for a given tree, which keeps snapshots stable.
func (t *Tree) Nodes() []taxonomy.Node {
	out := make([]taxonomy.Node, 0, len(t.nodes))
	seen := taxonomy.NewIDSet()

	emit := func(start taxonomy.TaxonID) {
		stack := []taxonomy.TaxonID{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen.Has(cur) {
				continue
			}
			seen.Add(cur)
			out = append(out, t.nodes[cur])
			kids := t.children[cur]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}

	emit(t.root)
	for _, id := range t.orphans {
		emit(id)
	}
	// Unreachable leftovers (extra self-parented nodes) go last, in
	// sorted order.
	if len(out) < len(t.nodes) {
		rest := taxonomy.NewIDSet()
		for id := range t.nodes {
			if !seen.Has(id) {
				rest.Add(id)
			}
		}
		for _, id := range rest.Slice() {
			emit(id)
		}
	}
	return out
}

// Filter derives a new Tree containing, for every keep ID, its ancestor
// path up to the root plus its full subtree. The root is always
// retained, so the result is a valid rooted tree. Unknown keep IDs fail
// the call with an UnknownTaxonError unless ignoreInvalid is set.
func (t *Tree) Filter(keep []taxonomy.TaxonID, ignoreInvalid bool) (taxonomy.Index, error) {
	closure, err := t.filterClosure(keep, ignoreInvalid)
	if err != nil {
		return nil, err
	}
	return t.subset(closure), nil
}

// filterClosure computes the keep set's ancestor-plus-descendant
// closure. The root is always part of the closure.
func (t *Tree) filterClosure(keep []taxonomy.TaxonID, ignoreInvalid bool) (taxonomy.IDSet, error) {
	var unknown []string
	valid := make([]taxonomy.TaxonID, 0, len(keep))
	for _, id := range keep {
		if !t.Contains(id) {
			unknown = append(unknown, string(id))
			continue
		}
		valid = append(valid, id)
	}
	if len(unknown) > 0 && !ignoreInvalid {
		return nil, errors.NewUnknownTaxon("filter", unknown)
	}

	closure := taxonomy.NewIDSet(t.root)
	for _, id := range valid {
		// ancestors up to the root; an orphan chain just stops where
		// the parent link breaks
		cur := id
		for {
			if closure.Has(cur) {
				break
			}
			closure.Add(cur)
			node := t.nodes[cur]
			if node.IsRoot() {
				break
			}
			parent, ok := t.nodes[node.ParentID]
			if !ok {
				break
			}
			cur = parent.ID
		}
		closure.Union(t.SubtreeOf(id))
	}
	return closure, nil
}

// subset builds a new Tree restricted to the given IDs, preserving
// child order.
func (t *Tree) subset(ids taxonomy.IDSet) *Tree {
	out := &Tree{
		root:     t.root,
		nodes:    make(map[taxonomy.TaxonID]taxonomy.Node, ids.Len()),
		children: make(map[taxonomy.TaxonID][]taxonomy.TaxonID),
	}
	for id := range ids {
		if n, ok := t.nodes[id]; ok {
			out.nodes[id] = n
		}
	}
	for _, id := range ids.Slice() {
		n, ok := out.nodes[id]
		if !ok || n.IsRoot() {
			continue
		}
		if _, ok := out.nodes[n.ParentID]; !ok {
			out.orphans = append(out.orphans, id)
		}
	}
	for parent, kids := range t.children {
		if _, ok := out.nodes[parent]; !ok {
			continue
		}
		for _, kid := range kids {
			if _, ok := out.nodes[kid]; ok {
				out.children[parent] = append(out.children[parent], kid)
			}
		}
	}
	return out
}
