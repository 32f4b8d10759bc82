package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/hierarchy"
)

// Hierarchies reads the three hierarchical collections as plain entities and
// validates parent changes against the built forest.
type Hierarchies struct {
	Accounts              *repository.AccountRepo
	AccountCategories     *repository.CategoryRepo
	TransactionCategories *repository.CategoryRepo
	Logger                *slog.Logger
}

func NewHierarchies(db repository.DBTX, logger *slog.Logger) *Hierarchies {
	return &Hierarchies{
		Accounts:              repository.NewAccountRepo(db),
		AccountCategories:     repository.NewAccountCategoryRepo(db),
		TransactionCategories: repository.NewTransactionCategoryRepo(db),
		Logger:                logger,
	}
}

func (h *Hierarchies) categoryRepo(kind Kind) (*repository.CategoryRepo, error) {
	switch kind {
	case KindAccountCategories:
		return h.AccountCategories, nil
	case KindTransactionCategories:
		return h.TransactionCategories, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Entities lists a kind's rows as hierarchy entities in id order.
func (h *Hierarchies) Entities(ctx context.Context, userID string, kind Kind) ([]hierarchy.Entity, error) {
	if kind == KindAccounts {
		accts, err := h.Accounts.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out := make([]hierarchy.Entity, 0, len(accts))
		for _, a := range accts {
			out = append(out, AccountEntity(a))
		}
		return out, nil
	}
	repo, err := h.categoryRepo(kind)
	if err != nil {
		return nil, err
	}
	cats, err := repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([]hierarchy.Entity, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryEntity(c))
	}
	return out, nil
}

// Forest builds the current forest of a kind.
func (h *Hierarchies) Forest(ctx context.Context, userID string, kind Kind) (*hierarchy.Forest[hierarchy.Entity], error) {
	items, err := h.Entities(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	f := hierarchy.Build(items, hierarchy.EntityAccessors())
	if dups := f.Duplicates(); len(dups) > 0 && h.Logger != nil {
		h.Logger.Warn("duplicate ids in hierarchy", "kind", kind, "ids", dups)
	}
	return f, nil
}

// CheckParent reports whether parent is an acceptable parent for id. A nil id
// stands for a row that does not exist yet; a nil parent is always fine.
func (h *Hierarchies) CheckParent(ctx context.Context, userID string, kind Kind, id, parent *int64) error {
	if parent == nil {
		return nil
	}
	f, err := h.Forest(ctx, userID, kind)
	if err != nil {
		return err
	}
	return checkParent(f, id, *parent)
}

func checkParent[T any](f *hierarchy.Forest[T], id *int64, parent int64) error {
	if _, ok := f.Node(parent); !ok {
		return fmt.Errorf("parent %d: %w", parent, ErrNotFound)
	}
	if id == nil {
		return nil
	}
	if _, ok := f.Node(*id); !ok {
		return fmt.Errorf("id %d: %w", *id, ErrNotFound)
	}
	if f.Prohibited(*id).Has(parent) {
		return ErrCycle
	}
	return nil
}

// Reparent moves id under parent (nil for root) after the cycle check.
func (h *Hierarchies) Reparent(ctx context.Context, userID string, kind Kind, id int64, parent *int64) error {
	f, err := h.Forest(ctx, userID, kind)
	if err != nil {
		return err
	}
	if _, ok := f.Node(id); !ok {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if parent != nil {
		if err := checkParent(f, &id, *parent); err != nil {
			return err
		}
	}
	if kind == KindAccounts {
		err = h.Accounts.SetParent(ctx, userID, id, parent)
	} else {
		var repo *repository.CategoryRepo
		if repo, err = h.categoryRepo(kind); err == nil {
			err = repo.SetParent(ctx, userID, id, parent)
		}
	}
	if err != nil {
		return fmt.Errorf("reparent %s %d: %w", kind, id, err)
	}
	if h.Logger != nil {
		h.Logger.Info("reparented", "kind", kind, "id", id, "parent", parent)
	}
	return nil
}
