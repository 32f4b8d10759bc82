package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/logging"
)

// Services bundles everything the TUI and CLI need on top of one database.
type Services struct {
	DB                    *sql.DB
	Hierarchies           *Hierarchies
	Accounts              *AccountService
	AccountCategories     *CategoryService
	TransactionCategories *CategoryService
	Transactions          *TransactionService
	Maintenance           *MaintenanceService
	Logger                *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Services {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", logging.CompService)
	h := NewHierarchies(db, logger)
	return &Services{
		DB:          db,
		Hierarchies: h,
		Accounts: &AccountService{
			Repo:        h.Accounts,
			Categories:  h.AccountCategories,
			Hierarchies: h,
			Logger:      logger,
		},
		AccountCategories: &CategoryService{
			Kind:        KindAccountCategories,
			Repo:        h.AccountCategories,
			Hierarchies: h,
			Logger:      logger,
		},
		TransactionCategories: &CategoryService{
			Kind:        KindTransactionCategories,
			Repo:        h.TransactionCategories,
			Hierarchies: h,
			Logger:      logger,
		},
		Transactions: &TransactionService{
			DB:         db,
			Repo:       repository.NewTransactionRepo(db),
			Categories: h.TransactionCategories,
			Accounts:   h.Accounts,
			Logger:     logger,
		},
		Maintenance: &MaintenanceService{DB: db},
		Logger:      logger,
	}
}

// Categories returns the service of a category kind.
func (s *Services) Categories(kind Kind) (*CategoryService, error) {
	switch kind {
	case KindAccountCategories:
		return s.AccountCategories, nil
	case KindTransactionCategories:
		return s.TransactionCategories, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Snapshot is every collection of one user.
type Snapshot struct {
	Accounts              []repository.Account
	AccountCategories     []repository.Category
	TransactionCategories []repository.Category
	Transactions          []repository.Transaction
}

// LoadSnapshot loads the four collections concurrently. The first failure
// cancels the rest.
func (s *Services) LoadSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Accounts, err = s.Accounts.List(ctx, userID)
		return wrapLoad("accounts", err)
	})
	g.Go(func() error {
		var err error
		snap.AccountCategories, err = s.AccountCategories.List(ctx, userID)
		return wrapLoad("account categories", err)
	})
	g.Go(func() error {
		var err error
		snap.TransactionCategories, err = s.TransactionCategories.List(ctx, userID)
		return wrapLoad("transaction categories", err)
	})
	g.Go(func() error {
		var err error
		snap.Transactions, err = s.Transactions.List(ctx, userID)
		return wrapLoad("transactions", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}
