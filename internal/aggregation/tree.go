// Package aggregation computes de-duplicated roll-up sums over the cost
// item hierarchy.
//
// The hierarchy is reconstructed from code prefixes alone: row B descends
// from row A iff B's code starts with A's code plus a dot. Instead of
// rescanning every code per query, a Tree resolves parent/child links once
// per item pool and answers prefix sums as tree traversals. Because the
// deepest-populated-value rule is pool-relative, callers filter the pool
// first (for example to a selected month) and build a Tree from the result.
package aggregation

import (
	"sort"
	"strings"

	"costlens/pkg/contracts/domain"
)

// Tree is an arena of hierarchy nodes indexed by code, built from one
// immutable item pool. Cost-summary rows are excluded at construction;
// they are display-only lines and never contribute to roll-ups. Duplicate
// codes share a node and are simply summed together.
type Tree struct {
	items []domain.Item
	nodes map[string]*node
	codes []string // sorted node codes, for deterministic traversal
}

type node struct {
	code     string
	parent   *node
	children []*node
	rows     []int // indices into items; duplicates share the node
	// aggregate marks a node that owns at least one non-synthesized
	// child, i.e. the source sheet treats it as a grouping row.
	aggregate bool
	// subtreeHas[f] is true when any row at or below this node carries a
	// non-nil value for field f.
	subtreeHas map[domain.Field]bool
}

// NewTree builds the node arena for the given pool. The input slice is not
// modified and row order does not affect any query result.
func NewTree(items []domain.Item) *Tree {
	t := &Tree{nodes: make(map[string]*node)}

	for _, it := range items {
		if it.IsCostSummary() {
			continue
		}
		t.items = append(t.items, it)
	}

	for i, it := range t.items {
		n, ok := t.nodes[it.Code]
		if !ok {
			n = &node{code: it.Code, subtreeHas: make(map[domain.Field]bool)}
			t.nodes[it.Code] = n
		}
		n.rows = append(n.rows, i)
	}

	t.codes = make([]string, 0, len(t.nodes))
	for code := range t.nodes {
		t.codes = append(t.codes, code)
	}
	sort.Strings(t.codes)

	// Link each node to the nearest existing ancestor by trimming code
	// segments. Nodes without any present ancestor are roots.
	for _, code := range t.codes {
		n := t.nodes[code]
		for anc := parentCode(code); anc != ""; anc = parentCode(anc) {
			if p, ok := t.nodes[anc]; ok {
				n.parent = p
				p.children = append(p.children, n)
				break
			}
		}
	}

	for _, code := range t.codes {
		n := t.nodes[code]
		for _, c := range n.children {
			if !isSyntheticSuffix(c.code, n.code) {
				n.aggregate = true
				break
			}
		}
	}

	for _, code := range t.codes {
		n := t.nodes[code]
		if n.parent == nil {
			t.fillSubtreeHas(n)
		}
	}

	return t
}

// fillSubtreeHas computes subtree value presence bottom-up.
func (t *Tree) fillSubtreeHas(n *node) {
	for _, c := range n.children {
		t.fillSubtreeHas(c)
	}
	for _, f := range domain.Fields {
		has := false
		for _, idx := range n.rows {
			if t.items[idx].Amount(f) != nil {
				has = true
				break
			}
		}
		if !has {
			for _, c := range n.children {
				if c.subtreeHas[f] {
					has = true
					break
				}
			}
		}
		n.subtreeHas[f] = has
	}
}

// deepest reports whether rows at this node are the deepest populated
// contributors for the field: no descendant in the pool carries a non-nil
// value for it.
func (n *node) deepest(f domain.Field) bool {
	for _, c := range n.children {
		if c.subtreeHas[f] {
			return false
		}
	}
	return true
}

// SumForPrefix computes the deepest-populated-value sum over all rows whose
// code equals prefix or starts with prefix plus a dot. A parent row's own
// value is ignored whenever any descendant carries a value for the same
// field, which keeps redundant spreadsheet subtotals from double counting.
// Repeated calls on the same tree always return the same value.
func (t *Tree) SumForPrefix(prefix string, f domain.Field) int64 {
	return t.sum(prefix, f, true)
}

// SumDescendants is SumForPrefix restricted to strict descendants of code:
// the row(s) at code itself are excluded. Used when rendering a roll-up
// onto an aggregate row without counting that row's own field.
func (t *Tree) SumDescendants(code string, f domain.Field) int64 {
	return t.sum(code, f, false)
}

func (t *Tree) sum(prefix string, f domain.Field, includeSelf bool) int64 {
	var total int64
	for _, code := range t.codes {
		if code == prefix && !includeSelf {
			continue
		}
		n := t.nodes[code]
		if !inSubtree(code, prefix) || !n.deepest(f) {
			continue
		}
		for _, idx := range n.rows {
			if v := t.items[idx].Amount(f); v != nil {
				total += *v
			}
		}
	}
	return total
}

// DeepestRows returns the rows that actually contribute for the field
// under the deepest-populated-value rule, in code order. Analytics group
// these by vendor or month so the de-duplication logic lives in one place.
func (t *Tree) DeepestRows(f domain.Field) []domain.Item {
	var out []domain.Item
	for _, code := range t.codes {
		n := t.nodes[code]
		if !n.deepest(f) {
			continue
		}
		for _, idx := range n.rows {
			if t.items[idx].Amount(f) != nil {
				out = append(out, t.items[idx])
			}
		}
	}
	return out
}

// IsAggregate reports whether the code's node groups at least one
// non-synthesized child row.
func (t *Tree) IsAggregate(code string) bool {
	n, ok := t.nodes[code]
	return ok && n.aggregate
}

// Annotate returns a copy of items with IsAggregateRow set from the tree's
// inferred aggregate tags. Explicitly flagged rows stay flagged.
func (t *Tree) Annotate(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	for i := range out {
		if t.IsAggregate(out[i].Code) {
			out[i].IsAggregateRow = true
		}
	}
	return out
}

// Prefixes returns every distinct code prefix of the given segment count
// present in the pool, sorted. Two segments yields the variance grouping
// level (A.1, B.2, ...).
func (t *Tree) Prefixes(segments int) []string {
	seen := make(map[string]bool)
	for _, code := range t.codes {
		parts := strings.Split(code, ".")
		if len(parts) < segments {
			continue
		}
		seen[strings.Join(parts[:segments], ".")] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Items returns the pool the tree was built from, cost-summary rows
// excluded.
func (t *Tree) Items() []domain.Item {
	return t.items
}

func parentCode(code string) string {
	if i := strings.LastIndexByte(code, '.'); i > 0 {
		return code[:i]
	}
	return ""
}

func inSubtree(code, prefix string) bool {
	return code == prefix || strings.HasPrefix(code, prefix+".")
}

// isSyntheticSuffix reports whether child's extra segments relative to
// parent were invented by the code resolver (u1, u2, ...).
func isSyntheticSuffix(child, parent string) bool {
	rest := strings.TrimPrefix(child, parent+".")
	seg := rest
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		seg = rest[:i]
	}
	if len(seg) < 2 || seg[0] != 'u' {
		return false
	}
	for _, c := range seg[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
