package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/database/repository"
)

// TreeFile is the TOML layout read by ImportTree:
//
//	[[node]]
//	name = "Food"
//	  [[node.children]]
//	  name = "Groceries"
type TreeFile struct {
	Nodes []TreeNode `toml:"node"`
}

type TreeNode struct {
	Name        string     `toml:"name"`
	Description string     `toml:"description"`
	Type        string     `toml:"type"`
	Color       string     `toml:"color"`
	Icon        string     `toml:"icon"`
	Currency    string     `toml:"currency"`
	Children    []TreeNode `toml:"children"`
}

// ImportTree inserts the hierarchy read from r, parents before children, all
// or nothing. New roots hang under parent when it is set. It returns how many
// rows were created.
func (s *Services) ImportTree(ctx context.Context, userID string, kind Kind, r io.Reader, parent *int64) (int, error) {
	var file TreeFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return 0, fmt.Errorf("decode tree: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		s.Logger.Warn("unknown keys in tree file", "keys", fmt.Sprint(undecoded))
	}
	if err := s.Hierarchies.CheckParent(ctx, userID, kind, nil, parent); err != nil {
		return 0, err
	}

	created := 0
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		insert, err := treeInserter(tx, kind, userID)
		if err != nil {
			return err
		}
		type item struct {
			node   TreeNode
			parent *int64
		}
		queue := make([]item, 0, len(file.Nodes))
		for _, n := range file.Nodes {
			queue = append(queue, item{node: n, parent: parent})
		}
		for len(queue) > 0 {
			it := queue[0]
			queue = queue[1:]
			name := strings.TrimSpace(it.node.Name)
			if name == "" {
				return invalidf("node without a name under parent %v", it.parent)
			}
			id, err := insert(ctx, it.node, name, it.parent)
			if err != nil {
				return fmt.Errorf("insert %q: %w", name, err)
			}
			created++
			for _, c := range it.node.Children {
				queue = append(queue, item{node: c, parent: &id})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.Logger.Info("tree imported", "kind", kind, "rows", created)
	return created, nil
}

type insertFunc func(ctx context.Context, n TreeNode, name string, parent *int64) (int64, error)

func treeInserter(tx *sql.Tx, kind Kind, userID string) (insertFunc, error) {
	optional := func(s string) *string { return trimmedPtr(&s) }
	if kind == KindAccounts {
		repo := repository.NewAccountRepo(tx)
		return func(ctx context.Context, n TreeNode, name string, parent *int64) (int64, error) {
			return repo.Create(ctx, repository.Account{
				UserID:         userID,
				ParentID:       parent,
				Name:           name,
				Description:    optional(n.Description),
				Type:           orDefault(n.Type, defaultType),
				BalanceDecimal: defaultDecimals,
				Currency:       strings.ToUpper(orDefault(n.Currency, defaultCurrency)),
				Color:          orDefault(n.Color, defaultColor),
				Icon:           orDefault(n.Icon, defaultIcon),
			})
		}, nil
	}
	var repo *repository.CategoryRepo
	switch kind {
	case KindAccountCategories:
		repo = repository.NewAccountCategoryRepo(tx)
	case KindTransactionCategories:
		repo = repository.NewTransactionCategoryRepo(tx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return func(ctx context.Context, n TreeNode, name string, parent *int64) (int64, error) {
		return repo.Create(ctx, repository.Category{
			UserID:      userID,
			ParentID:    parent,
			Name:        name,
			Description: optional(n.Description),
			Type:        orDefault(n.Type, defaultType),
			Color:       orDefault(n.Color, defaultColor),
			Icon:        orDefault(n.Icon, defaultIcon),
		})
	}, nil
}
