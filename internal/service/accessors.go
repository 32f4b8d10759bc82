package service

import (
	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/hierarchy"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parentOf(p *int64) (int64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// CategoryAccessors serves both category tables.
func CategoryAccessors() hierarchy.Accessors[repository.Category] {
	return hierarchy.Accessors[repository.Category]{
		ID:          func(c repository.Category) int64 { return c.ID },
		ParentID:    func(c repository.Category) (int64, bool) { return parentOf(c.ParentID) },
		Label:       func(c repository.Category) string { return c.Name },
		Description: func(c repository.Category) string { return deref(c.Description) },
	}
}

func AccountEntity(a repository.Account) hierarchy.Entity {
	return hierarchy.Entity{ID: a.ID, ParentID: a.ParentID, Name: a.Name, Description: deref(a.Description), Color: a.Color, Icon: a.Icon}
}

func CategoryEntity(c repository.Category) hierarchy.Entity {
	return hierarchy.Entity{ID: c.ID, ParentID: c.ParentID, Name: c.Name, Description: deref(c.Description), Color: c.Color, Icon: c.Icon}
}
