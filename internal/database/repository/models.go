package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist for the given user.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

type scanner interface {
	Scan(dest ...any) error
}

// Category is a row of account_categories or transaction_categories.
type Category struct {
	ID          int64
	UserID      string
	ParentID    *int64
	Name        string
	Description *string
	Type        string
	Color       string
	Icon        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account represents an account row. Balance is in minor units.
type Account struct {
	ID             int64
	UserID         string
	CategoryID     *int64
	ParentID       *int64
	Name           string
	Description    *string
	Type           string
	Balance        int64
	BalanceDecimal int
	Virtual        bool
	Budget         bool
	Currency       string
	Color          string
	Icon           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transaction represents a transaction header. Amount is in minor units.
type Transaction struct {
	ID              int64
	UserID          string
	Reference       string
	CategoryID      *int64
	FromAccountID   *int64
	ToAccountID     *int64
	Type            string
	Status          string
	Method          string
	Amount          int64
	AmountDecimal   int
	Currency        string
	ExchangeRate    float64
	Date            time.Time
	TransactionDate time.Time
	ScheduledDate   *time.Time
	Description     *string
	Notes           *string
	Tags            *string
	Color           string
	Icon            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransactionDetail is one split line of a transaction.
type TransactionDetail struct {
	ID            int64
	UserID        string
	TransactionID int64
	Amount        int64
	AmountDecimal int
	Description   *string
	Notes         *string
	Tags          *string
	Color         string
	Icon          string
	CreatedAt     time.Time
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
