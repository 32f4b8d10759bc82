package hierarchy

// Ancestors walks from id to its root, nearest first. The walk stops early if
// it ever revisits a node.
func (f *Forest[T]) Ancestors(id int64) []int64 {
	if f == nil {
		return nil
	}
	if _, ok := f.byID[id]; !ok {
		return nil
	}
	var out []int64
	seen := map[int64]bool{id: true}
	cur := id
	for steps := 0; steps < len(f.nodes); steps++ {
		pid, ok := f.parent[cur]
		if !ok || seen[pid] {
			break
		}
		seen[pid] = true
		out = append(out, pid)
		cur = pid
	}
	return out
}

// Descendants collects every transitive child of id.
func (f *Forest[T]) Descendants(id int64) IDSet {
	out := make(IDSet)
	start, ok := f.Node(id)
	if !ok {
		return out
	}
	stack := append([]*Node[T](nil), start.Children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id || out.Has(n.ID) {
			continue
		}
		out.Add(n.ID)
		stack = append(stack, n.Children...)
	}
	return out
}

// Prohibited is the set of ids that cannot become the new parent of id:
// the node itself and everything below it.
func (f *Forest[T]) Prohibited(id int64) IDSet {
	out := f.Descendants(id)
	out.Add(id)
	return out
}

// Depth is the number of ancestors of id.
func (f *Forest[T]) Depth(id int64) int {
	return len(f.Ancestors(id))
}

// Path returns the labels from the root down to id, inclusive.
func (f *Forest[T]) Path(id int64) []string {
	n, ok := f.Node(id)
	if !ok {
		return nil
	}
	anc := f.Ancestors(id)
	out := make([]string, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, f.Label(anc[i]))
	}
	return append(out, f.acc.Label(n.Item))
}
