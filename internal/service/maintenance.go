package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/fintree/internal/database"
)

// MaintenanceService houses destructive actions.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes every row owned by userID. The schema stays intact.
func (s *MaintenanceService) Reset(ctx context.Context, userID string) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		// children before parents so no ON DELETE SET NULL churn
		tables := []string{
			"transaction_details",
			"transactions",
			"accounts",
			"account_categories",
			"transaction_categories",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t+" WHERE user_id = ?", userID); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	})
}
