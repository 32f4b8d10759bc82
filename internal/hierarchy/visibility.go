package hierarchy

import "strings"

// Row is one rendered line of the tree.
type Row[T any] struct {
	Node  *Node[T]
	Depth int
}

// Match reports whether query is a case-insensitive substring of label or
// description. An empty query matches everything.
func Match(query, label, description string) bool {
	q := normalizeQuery(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(label), q) ||
		strings.Contains(strings.ToLower(description), q)
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Expansion is the set of nodes whose children the user wants to see. It is
// keyed by id so it survives forest rebuilds.
type Expansion struct {
	ids IDSet
}

func NewExpansion(ids ...int64) *Expansion {
	return &Expansion{ids: NewIDSet(ids...)}
}

func (e *Expansion) Has(id int64) bool {
	if e == nil {
		return false
	}
	return e.ids.Has(id)
}

func (e *Expansion) Expand(id int64) {
	if e.ids == nil {
		e.ids = make(IDSet)
	}
	e.ids.Add(id)
}

func (e *Expansion) Collapse(id int64) {
	delete(e.ids, id)
}

// Toggle flips id and reports whether it is now expanded.
func (e *Expansion) Toggle(id int64) bool {
	if e.Has(id) {
		e.Collapse(id)
		return false
	}
	e.Expand(id)
	return true
}

// Merge adds every id of s; nothing is ever removed.
func (e *Expansion) Merge(s IDSet) {
	for id := range s {
		e.Expand(id)
	}
}

func (e *Expansion) IDs() []int64 {
	if e == nil {
		return nil
	}
	return e.ids.Slice()
}

func (e *Expansion) Set() IDSet {
	if e == nil {
		return nil
	}
	return e.ids
}

// matches returns, for a non-empty query, the ids of nodes that match
// themselves and the ids of nodes that match or have a matching descendant.
func (f *Forest[T]) matches(query string) (self, hit IDSet) {
	self, hit = make(IDSet), make(IDSet)
	q := normalizeQuery(query)
	if q == "" || f == nil {
		return self, hit
	}
	type frame struct {
		n    *Node[T]
		done bool
	}
	stack := make([]frame, 0, len(f.roots))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{n: f.roots[i]})
	}
	visited := make(map[int64]bool, len(f.nodes))
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.done {
			n := top.n
			if Match(q, f.acc.Label(n.Item), f.acc.description(n.Item)) {
				self.Add(n.ID)
				hit.Add(n.ID)
			}
			for _, c := range n.Children {
				if hit.Has(c.ID) {
					hit.Add(n.ID)
					break
				}
			}
			continue
		}
		if visited[top.n.ID] {
			continue
		}
		visited[top.n.ID] = true
		stack = append(stack, frame{n: top.n, done: true})
		for _, c := range top.n.Children {
			stack = append(stack, frame{n: c})
		}
	}
	return self, hit
}

// SearchExpansion returns the ancestors of every node matching query.
func SearchExpansion[T any](f *Forest[T], query string) IDSet {
	self, _ := f.matches(query)
	out := make(IDSet)
	for id := range self {
		for _, a := range f.Ancestors(id) {
			out.Add(a)
		}
	}
	return out
}

// VisibleRows flattens the forest into the rows currently on screen, in
// pre-order and source order.
func VisibleRows[T any](f *Forest[T], expanded IDSet, query string) []Row[T] {
	if f == nil || len(f.roots) == 0 {
		return nil
	}
	searching := normalizeQuery(query) != ""
	var hit IDSet
	if searching {
		_, hit = f.matches(query)
		if len(hit) == 0 {
			return nil
		}
	}

	out := make([]Row[T], 0, len(f.nodes))
	stack := make([]Row[T], 0, len(f.roots))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, Row[T]{Node: f.roots[i]})
	}
	emitted := make(map[int64]bool, len(f.nodes))
	for len(stack) > 0 {
		row := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := row.Node
		if emitted[n.ID] {
			continue
		}
		if searching && !hit.Has(n.ID) {
			continue
		}
		emitted[n.ID] = true
		out = append(out, row)

		if !searching && !expanded.Has(n.ID) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, Row[T]{Node: n.Children[i], Depth: row.Depth + 1})
		}
	}
	return out
}
