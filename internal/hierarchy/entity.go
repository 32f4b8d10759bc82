// Package hierarchy builds parent/child forests out of flat records and drives
// the searchable tree picker shared by accounts and both category kinds.
package hierarchy

import (
	"sort"
)

// Accessors tells the package how to read a concrete record type.
type Accessors[T any] struct {
	ID          func(T) int64
	ParentID    func(T) (int64, bool)
	Label       func(T) string
	Description func(T) string
}

func (a Accessors[T]) description(item T) string {
	if a.Description == nil {
		return ""
	}
	return a.Description(item)
}

func (a Accessors[T]) parent(item T) (int64, bool) {
	if a.ParentID == nil {
		return 0, false
	}
	return a.ParentID(item)
}

// Entity is the minimal categorizable record.
type Entity struct {
	ID          int64  `json:"id" yaml:"id"`
	ParentID    *int64 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// EntityAccessors reads Entity values.
func EntityAccessors() Accessors[Entity] {
	return Accessors[Entity]{
		ID: func(e Entity) int64 { return e.ID },
		ParentID: func(e Entity) (int64, bool) {
			if e.ParentID == nil {
				return 0, false
			}
			return *e.ParentID, true
		},
		Label:       func(e Entity) string { return e.Name },
		Description: func(e Entity) string { return e.Description },
	}
}

// IDSet is a set of entity ids.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int64) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id int64) {
	s[id] = struct{}{}
}

// Slice returns the ids in ascending order.
func (s IDSet) Slice() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ptr returns a pointer to id, handy for optional parent ids.
func Ptr(id int64) *int64 {
	return &id
}
