package hierarchy

import "errors"

var (
	// ErrProhibited rejects a choice that would create a parent cycle.
	ErrProhibited = errors.New("selection would create a cycle")
	// ErrRootNotAllowed rejects the "no parent" choice when it is not offered.
	ErrRootNotAllowed = errors.New("root choice not allowed")
)

// Selection tracks the highlighted id and validates commits against the
// prohibited set.
type Selection struct {
	highlighted *int64
	committed   *int64
	prohibited  IDSet
	picking     bool

	onChange func(*int64)
}

func NewSelection(selected *int64, prohibited IDSet, onChange func(*int64)) *Selection {
	s := &Selection{prohibited: prohibited, onChange: onChange}
	if selected != nil {
		s.highlighted = Ptr(*selected)
		s.committed = Ptr(*selected)
	}
	if s.prohibited == nil {
		s.prohibited = make(IDSet)
	}
	return s
}

// Highlighted is the focused, not yet committed id.
func (s *Selection) Highlighted() (int64, bool) {
	if s == nil || s.highlighted == nil {
		return 0, false
	}
	return *s.highlighted, true
}

// Committed is the last confirmed value; nil means root / none.
func (s *Selection) Committed() *int64 {
	if s == nil || s.committed == nil {
		return nil
	}
	return Ptr(*s.committed)
}

func (s *Selection) Select(id int64) {
	s.highlighted = Ptr(id)
}

func (s *Selection) IsProhibited(id int64) bool {
	return s.prohibited.Has(id)
}

func (s *Selection) SetProhibited(p IDSet) {
	if p == nil {
		p = make(IDSet)
	}
	s.prohibited = p
}

func (s *Selection) Prohibited() IDSet {
	return s.prohibited
}

// CanConfirm mirrors the enabled state of the confirm action for the current
// highlight.
func (s *Selection) CanConfirm() bool {
	if s == nil || s.highlighted == nil {
		return false
	}
	return !s.prohibited.Has(*s.highlighted)
}

// Confirm commits id. A nil id commits "no parent" and is always valid here.
func (s *Selection) Confirm(id *int64) error {
	if id != nil && s.prohibited.Has(*id) {
		return ErrProhibited
	}
	if id == nil {
		s.committed = nil
	} else {
		s.committed = Ptr(*id)
		s.highlighted = Ptr(*id)
	}
	if s.onChange != nil {
		s.onChange(s.Committed())
	}
	return nil
}

// Clear drops the highlight. Outside a picking session it also clears the
// committed value and tells the owner.
func (s *Selection) Clear() {
	s.highlighted = nil
	if s.picking {
		return
	}
	s.committed = nil
	if s.onChange != nil {
		s.onChange(nil)
	}
}

func (s *Selection) setPicking(v bool) {
	s.picking = v
}
