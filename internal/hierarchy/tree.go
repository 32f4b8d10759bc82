package hierarchy

import "sort"

// Node is one record placed in the forest.
type Node[T any] struct {
	Item     T
	ID       int64
	Children []*Node[T]

	order int
}

// Forest is the tree view of one snapshot of records. It is rebuilt, never
// patched, whenever the snapshot changes.
type Forest[T any] struct {
	acc        Accessors[T]
	roots      []*Node[T]
	byID       map[int64]*Node[T]
	parent     map[int64]int64
	nodes      []*Node[T]
	duplicates []int64
}

// Build turns a flat list into a forest. Orphans and self-parented records
// end up as roots, as does the first record of each parent cycle; duplicate
// ids keep the first occurrence.
func Build[T any](items []T, acc Accessors[T]) *Forest[T] {
	f := &Forest[T]{
		acc:    acc,
		byID:   make(map[int64]*Node[T], len(items)),
		parent: make(map[int64]int64, len(items)),
		nodes:  make([]*Node[T], 0, len(items)),
	}
	for _, item := range items {
		id := acc.ID(item)
		if _, dup := f.byID[id]; dup {
			f.duplicates = append(f.duplicates, id)
			continue
		}
		n := &Node[T]{Item: item, ID: id, order: len(f.nodes)}
		f.byID[id] = n
		f.nodes = append(f.nodes, n)
	}

	for _, n := range f.nodes {
		pid, ok := acc.parent(n.Item)
		if !ok || pid == n.ID {
			f.roots = append(f.roots, n)
			continue
		}
		p, found := f.byID[pid]
		if !found {
			f.roots = append(f.roots, n)
			continue
		}
		p.Children = append(p.Children, n)
		f.parent[n.ID] = pid
	}

	f.detachCycles()
	return f
}

// detachCycles promotes nodes that no root can reach. Such nodes only exist
// when the parent chain loops; the first one in source order of each loop
// becomes a root.
func (f *Forest[T]) detachCycles() {
	reached := make(map[int64]bool, len(f.nodes))
	mark := func(start *Node[T]) {
		stack := []*Node[T]{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reached[n.ID] {
				continue
			}
			reached[n.ID] = true
			stack = append(stack, n.Children...)
		}
	}
	for _, r := range f.roots {
		mark(r)
	}
	if len(reached) == len(f.nodes) {
		return
	}

	promoted := false
	for _, n := range f.nodes {
		if reached[n.ID] {
			continue
		}
		if pid, ok := f.parent[n.ID]; ok {
			p := f.byID[pid]
			p.Children = removeChild(p.Children, n.ID)
			delete(f.parent, n.ID)
		}
		f.roots = append(f.roots, n)
		promoted = true
		mark(n)
	}
	if promoted {
		sort.SliceStable(f.roots, func(i, j int) bool { return f.roots[i].order < f.roots[j].order })
	}
}

func removeChild[T any](children []*Node[T], id int64) []*Node[T] {
	out := children[:0]
	for _, c := range children {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// Roots returns the top-level nodes in source order.
func (f *Forest[T]) Roots() []*Node[T] {
	if f == nil {
		return nil
	}
	return f.roots
}

// Node looks a node up by id.
func (f *Forest[T]) Node(id int64) (*Node[T], bool) {
	if f == nil {
		return nil, false
	}
	n, ok := f.byID[id]
	return n, ok
}

// Len is the number of distinct ids in the forest.
func (f *Forest[T]) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}

// Duplicates lists ids that appeared more than once in the input, in the
// order the repeats were seen.
func (f *Forest[T]) Duplicates() []int64 {
	if f == nil {
		return nil
	}
	return append([]int64(nil), f.duplicates...)
}

// Items returns every distinct record in source order.
func (f *Forest[T]) Items() []T {
	if f == nil {
		return nil
	}
	out := make([]T, 0, len(f.nodes))
	for _, n := range f.nodes {
		out = append(out, n.Item)
	}
	return out
}

// Parent returns the effective parent id of a node.
func (f *Forest[T]) Parent(id int64) (int64, bool) {
	if f == nil {
		return 0, false
	}
	pid, ok := f.parent[id]
	return pid, ok
}

// Label returns the display label of the record behind id.
func (f *Forest[T]) Label(id int64) string {
	n, ok := f.Node(id)
	if !ok {
		return ""
	}
	return f.acc.Label(n.Item)
}
