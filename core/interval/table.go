// Package interval implements the nested-set taxonomy index. Every
// node carries a pre-order (depth, lft, rgt) numbering such that for an
// ancestor A of B, A.lft < B.lft < B.rgt < A.rgt strictly. Subtree
// membership then reduces to interval containment: a single range scan
// over rows sorted by lft, instead of a graph walk per query. Orphan
// branches get their own detached intervals after the root's closes.
//
// It implements the same taxonomy.Index contract as core/tree and is a
// drop-in performance variant.
package interval

import (
	"sort"

	"github.com/taxonresolver/taxonresolver/core/errors"
	"github.com/taxonresolver/taxonresolver/core/taxonomy"
	"github.com/taxonresolver/taxonresolver/core/tree"
)

// Row is one node's nested-set numbering.
type Row struct {
	ID    taxonomy.TaxonID `json:"tax_id"`
	Depth int              `json:"depth"`
	Lft   int              `json:"lft"`
	Rgt   int              `json:"rgt"`
}

// Table is the nested-set index. Rows are sorted by Lft, so the subtree
// of rows[i] is the contiguous run of rows whose Lft is below
// rows[i].Rgt. Orphan branches (nodes whose parent is absent) are
// numbered as detached subtrees after the root interval closes, so
// they never overlap the root's interval and subtree queries behave
// the same as on the adjacency index.
type Table struct {
	root    taxonomy.TaxonID
	nodes   map[taxonomy.TaxonID]taxonomy.Node
	rows    []Row
	byID    map[taxonomy.TaxonID]int
	orphans []taxonomy.TaxonID
}

var (
	_ taxonomy.Index         = (*Table)(nil)
	_ taxonomy.BatchResolver = (*Table)(nil)
)

// FromTree numbers an adjacency tree into a Table. The traversal is
// pre-order, depth-first, children in parser order, using an explicit
// stack: a monotonically increasing counter is assigned as lft on first
// visit and as rgt after all children close. The root tree is numbered
// first, then each orphan branch root in sorted order, so detached
// intervals follow the root's.
func FromTree(t *tree.Tree) *Table {
	tab := &Table{
		root:  t.Root(),
		nodes: make(map[taxonomy.TaxonID]taxonomy.Node, t.Len()),
		rows:  make([]Row, 0, t.Len()),
		byID:  make(map[taxonomy.TaxonID]int, t.Len()),
	}
	for _, id := range t.IDs() {
		n, _ := t.Get(id)
		tab.nodes[id] = n
	}

	tab.number(t.ChildrenOf, t.Root())
	tab.orphans = detachedRoots(tab.nodes, tab.root)
	for _, id := range tab.orphans {
		tab.number(t.ChildrenOf, id)
	}
	// anything still unnumbered is unreachable through parent links
	// (e.g. a detached cycle); number each start in sorted order
	if len(tab.rows) < len(tab.nodes) {
		for _, id := range tab.unnumbered() {
			if _, ok := tab.byID[id]; !ok {
				tab.number(t.ChildrenOf, id)
			}
		}
	}
	return tab
}

// number runs one pre-order numbering pass from start. The counter
// resumes where the previous pass stopped; already-numbered nodes are
// skipped, which also guards against child-link cycles.
func (t *Table) number(childrenOf func(taxonomy.TaxonID) []taxonomy.TaxonID, start taxonomy.TaxonID) {
	if _, ok := t.byID[start]; ok {
		return
	}

	type frame struct {
		id   taxonomy.TaxonID
		row  int // index into t.rows
		next int // next child to visit
	}

	// every closed row consumed two counter values
	counter := 2 * len(t.rows)
	var stack []frame
	push := func(id taxonomy.TaxonID, depth int) {
		counter++
		t.byID[id] = len(t.rows)
		t.rows = append(t.rows, Row{ID: id, Depth: depth, Lft: counter})
		stack = append(stack, frame{id: id, row: len(t.rows) - 1})
	}

	push(start, 0)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := childrenOf(top.id)
		if top.next < len(kids) {
			child := kids[top.next]
			top.next++
			if _, ok := t.byID[child]; !ok {
				push(child, len(stack))
			}
			continue
		}
		counter++
		t.rows[top.row].Rgt = counter
		stack = stack[:len(stack)-1]
	}
}

// detachedRoots returns the IDs whose declared parent is absent from
// the node map, in sorted order. These are the orphan branch roots.
func detachedRoots(nodes map[taxonomy.TaxonID]taxonomy.Node, root taxonomy.TaxonID) []taxonomy.TaxonID {
	var out []taxonomy.TaxonID
	for id, n := range nodes {
		if id == root {
			continue
		}
		if _, ok := nodes[n.ParentID]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// unnumbered returns the IDs without an interval row, in sorted order.
func (t *Table) unnumbered() []taxonomy.TaxonID {
	var out []taxonomy.TaxonID
	for id := range t.nodes {
		if _, ok := t.byID[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FromRows reconstructs a Table from a flat node list plus its interval
// rows, as stored in snapshots. The root must be present, self-parented
// and numbered.
func FromRows(nodes []taxonomy.Node, rows []Row, root taxonomy.TaxonID) (*Table, error) {
	tab := &Table{
		root:  root,
		nodes: make(map[taxonomy.TaxonID]taxonomy.Node, len(nodes)),
		rows:  append([]Row(nil), rows...),
		byID:  make(map[taxonomy.TaxonID]int, len(rows)),
	}
	for _, n := range nodes {
		tab.nodes[n.ID] = n
	}

	sort.Slice(tab.rows, func(i, j int) bool { return tab.rows[i].Lft < tab.rows[j].Lft })
	for i, r := range tab.rows {
		if _, ok := tab.nodes[r.ID]; !ok {
			return nil, errors.Wrapf(errors.ErrCorruptSnapshot, "interval row %s has no node", r.ID)
		}
		tab.byID[r.ID] = i
	}

	rootNode, ok := tab.nodes[root]
	if !ok || !rootNode.IsRoot() {
		return nil, errors.NewRootNotFound(string(root))
	}
	if _, ok := tab.byID[root]; !ok {
		return nil, errors.NewRootNotFound(string(root))
	}

	tab.orphans = detachedRoots(tab.nodes, root)
	return tab, nil
}

// Root returns the root tax ID.
func (t *Table) Root() taxonomy.TaxonID {
	return t.root
}

// Len returns the number of nodes, orphans included.
func (t *Table) Len() int {
	return len(t.nodes)
}

// Get returns the node for id, if present.
func (t *Table) Get(id taxonomy.TaxonID) (taxonomy.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Contains reports whether id is present, orphans included.
func (t *Table) Contains(id taxonomy.TaxonID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Interval returns the nested-set row for id. ok is false for unknown
// IDs.
func (t *Table) Interval(id taxonomy.TaxonID) (Row, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// ChildrenOf returns the direct children of id via an interval scan:
// the rows inside id's interval whose depth is exactly one deeper.
func (t *Table) ChildrenOf(id taxonomy.TaxonID) []taxonomy.TaxonID {
	i, ok := t.byID[id]
	if !ok {
		return nil
	}
	parent := t.rows[i]
	var out []taxonomy.TaxonID
	for j := i + 1; j < len(t.rows) && t.rows[j].Lft < parent.Rgt; j++ {
		if t.rows[j].Depth == parent.Depth+1 {
			out = append(out, t.rows[j].ID)
		}
	}
	return out
}

// SubtreeOf returns id plus all transitive descendants as a range scan
// over the lft-sorted rows. Unknown IDs return nil. Orphan branches are
// detached intervals, so an orphan's subtree resolves exactly as on the
// adjacency index.
func (t *Table) SubtreeOf(id taxonomy.TaxonID) taxonomy.IDSet {
	if !t.Contains(id) {
		return nil
	}
	i, ok := t.byID[id]
	if !ok {
		return taxonomy.NewIDSet(id)
	}
	row := t.rows[i]
	out := taxonomy.NewIDSet(id)
	for j := i + 1; j < len(t.rows) && t.rows[j].Lft < row.Rgt; j++ {
		out.Add(t.rows[j].ID)
	}
	return out
}

// SubtreeOfAll resolves the union of several subtrees with the boundary
// optimization: the lft-sorted intervals are collapsed by dropping any
// interval fully contained in an already-selected one, since the outer
// scan returns every inner row anyway. The result is identical to
// unioning the per-ID scans. Unknown IDs are ignored; callers validate
// beforehand.
func (t *Table) SubtreeOfAll(ids []taxonomy.TaxonID) taxonomy.IDSet {
	out := taxonomy.NewIDSet()
	var selected []Row
	for _, id := range ids {
		if !t.Contains(id) {
			continue
		}
		if i, ok := t.byID[id]; ok {
			selected = append(selected, t.rows[i])
		} else {
			out.Add(id) // no row (foreign snapshot): just itself
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Lft < selected[j].Lft })

	maxRgt := 0
	for _, row := range selected {
		if row.Lft < maxRgt {
			continue // contained in a previously selected interval
		}
		maxRgt = row.Rgt
		i := t.byID[row.ID]
		out.Add(row.ID)
		for j := i + 1; j < len(t.rows) && t.rows[j].Lft < row.Rgt; j++ {
			out.Add(t.rows[j].ID)
		}
	}
	return out
}

// Orphans returns the orphan branch roots, in sorted order.
func (t *Table) Orphans() []taxonomy.TaxonID {
	return t.orphans
}

// IDs returns every known tax ID in no particular order.
func (t *Table) IDs() []taxonomy.TaxonID {
	out := make([]taxonomy.TaxonID, 0, len(t.nodes))
	for id := range t.nodes {
		out = append(out, id)
	}
	return out
}

// Nodes returns every node in lft order. Deterministic for a given
// table, which keeps snapshots stable.
func (t *Table) Nodes() []taxonomy.Node {
	out := make([]taxonomy.Node, 0, len(t.nodes))
	for _, r := range t.rows {
		out = append(out, t.nodes[r.ID])
	}
	// nodes without a row only occur in foreign snapshots
	if len(out) < len(t.nodes) {
		for _, id := range t.unnumbered() {
			out = append(out, t.nodes[id])
		}
	}
	return out
}

// Rows returns a copy of the interval rows in lft order.
func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Filter derives a new Table restricted to the keep IDs' ancestor paths
// and subtrees, renumbered from scratch so the nested-set invariant
// holds in the result. Unknown keep IDs fail with an UnknownTaxonError
// unless ignoreInvalid is set.
func (t *Table) Filter(keep []taxonomy.TaxonID, ignoreInvalid bool) (taxonomy.Index, error) {
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

	out := &Table{
		root:  t.root,
		nodes: make(map[taxonomy.TaxonID]taxonomy.Node, closure.Len()),
		byID:  make(map[taxonomy.TaxonID]int),
	}
	for id := range closure {
		if n, ok := t.nodes[id]; ok {
			out.nodes[id] = n
		}
	}

	// Renumber by replaying the kept rows in lft order: that order is
	// exactly a pre-order traversal of the reduced tree, so one pass
	// with a close-stack reproduces the nested-set counters.
	type open struct {
		row    int // index into out.rows
		oldRgt int
	}
	counter := 0
	var stack []open
	closeTop := func() {
		counter++
		out.rows[stack[len(stack)-1].row].Rgt = counter
		stack = stack[:len(stack)-1]
	}
	for _, row := range t.rows {
		if !closure.Has(row.ID) {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].oldRgt < row.Lft {
			closeTop()
		}
		counter++
		out.byID[row.ID] = len(out.rows)
		out.rows = append(out.rows, Row{ID: row.ID, Depth: len(stack), Lft: counter})
		stack = append(stack, open{row: len(out.rows) - 1, oldRgt: row.Rgt})
	}
	for len(stack) > 0 {
		closeTop()
	}

	out.orphans = detachedRoots(out.nodes, out.root)
	return out, nil
}
