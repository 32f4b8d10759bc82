package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jask/fintree/internal/database/repository"
)

var defaultAccountCategories = []string{
	"Cash",
	"Bank > Checking",
	"Bank > Savings",
	"Cards > Credit",
	"Cards > Prepaid",
	"Investments > Brokerage",
	"Investments > Pension",
	"Loans",
}

var defaultTransactionCategories = []string{
	"Income > Salary",
	"Income > Refunds",
	"Food > Groceries",
	"Food > Restaurants",
	"Housing > Rent",
	"Housing > Utilities",
	"Transport",
	"Shopping",
	"Subscriptions",
	"Health",
	"Entertainment",
	"Transfers",
}

// SeedDefaults ensures baseline category hierarchies exist for userID.
// Each table is only seeded while it is empty for that user, so it is safe
// to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, userID string) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := seedPaths(ctx, repository.NewAccountCategoryRepo(tx), userID, defaultAccountCategories); err != nil {
			return fmt.Errorf("seed account categories: %w", err)
		}
		if err := seedPaths(ctx, repository.NewTransactionCategoryRepo(tx), userID, defaultTransactionCategories); err != nil {
			return fmt.Errorf("seed transaction categories: %w", err)
		}
		return nil
	})
}

func seedPaths(ctx context.Context, repo *repository.CategoryRepo, userID string, paths []string) error {
	existing, err := repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	created := make(map[string]int64)
	for _, path := range paths {
		var parentID *int64
		key := ""
		for _, raw := range strings.Split(path, ">") {
			name := strings.TrimSpace(raw)
			key += "/" + strings.ToLower(name)
			if id, ok := created[key]; ok {
				parentID = &id
				continue
			}
			id, err := repo.Create(ctx, repository.Category{
				UserID:   userID,
				ParentID: parentID,
				Name:     name,
				Type:     "other",
				Color:    "#000000",
				Icon:     "mdi:bank",
			})
			if err != nil {
				return err
			}
			created[key] = id
			parentID = &id
		}
	}
	return nil
}
