package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jask/fintree/internal/database/repository"
)

const (
	defaultType     = "other"
	defaultCurrency = "EUR"
	defaultDecimals = 2
	defaultColor    = "#000000"
	defaultIcon     = "mdi:bank"
)

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// AccountInput is the editable part of an account. Virtual and budget
// accounts are not user-creatable, so there are no fields for them.
type AccountInput struct {
	CategoryID     *int64
	ParentID       *int64
	Name           string
	Description    *string
	Type           string
	Balance        int64
	BalanceDecimal int
	Currency       string
	Color          string
	Icon           string
}

// AccountService manages accounts for a user.
type AccountService struct {
	Repo        *repository.AccountRepo
	Categories  *repository.CategoryRepo
	Hierarchies *Hierarchies
	Logger      *slog.Logger
}

func (s *AccountService) List(ctx context.Context, userID string) ([]repository.Account, error) {
	return s.Repo.List(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID string, id int64) (repository.Account, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *AccountService) apply(ctx context.Context, userID string, a *repository.Account, in AccountInput) error {
	a.Name = strings.TrimSpace(in.Name)
	if a.Name == "" {
		return invalidf("account name required")
	}
	if in.CategoryID != nil {
		if _, err := s.Categories.Get(ctx, userID, *in.CategoryID); err != nil {
			return fmt.Errorf("account category %d: %w", *in.CategoryID, err)
		}
	}
	if in.BalanceDecimal < 0 {
		return invalidf("balance decimals %d", in.BalanceDecimal)
	}
	a.UserID = userID
	a.CategoryID = in.CategoryID
	a.ParentID = in.ParentID
	a.Description = trimmedPtr(in.Description)
	a.Type = orDefault(in.Type, defaultType)
	a.Balance = in.Balance
	a.BalanceDecimal = in.BalanceDecimal
	if a.BalanceDecimal == 0 {
		a.BalanceDecimal = defaultDecimals
	}
	a.Currency = strings.ToUpper(orDefault(in.Currency, defaultCurrency))
	a.Color = orDefault(in.Color, defaultColor)
	a.Icon = orDefault(in.Icon, defaultIcon)
	a.Virtual = false
	a.Budget = false
	return nil
}

func (s *AccountService) Create(ctx context.Context, userID string, in AccountInput) (repository.Account, error) {
	var a repository.Account
	if err := s.apply(ctx, userID, &a, in); err != nil {
		return repository.Account{}, err
	}
	if err := s.Hierarchies.CheckParent(ctx, userID, KindAccounts, nil, a.ParentID); err != nil {
		return repository.Account{}, err
	}
	id, err := s.Repo.Create(ctx, a)
	if err != nil {
		return repository.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.Logger.Info("account created", "id", id)
	return s.Repo.Get(ctx, userID, id)
}

func (s *AccountService) Update(ctx context.Context, userID string, id int64, in AccountInput) (repository.Account, error) {
	a, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return repository.Account{}, err
	}
	if err := s.apply(ctx, userID, &a, in); err != nil {
		return repository.Account{}, err
	}
	if err := s.Hierarchies.CheckParent(ctx, userID, KindAccounts, &id, a.ParentID); err != nil {
		return repository.Account{}, err
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return repository.Account{}, fmt.Errorf("update account %d: %w", id, err)
	}
	return s.Repo.Get(ctx, userID, id)
}

// Delete removes the account; its children become roots.
func (s *AccountService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	s.Logger.Info("account deleted", "id", id)
	return nil
}

// InputFromAccount turns a row back into editable input.
func InputFromAccount(a repository.Account) AccountInput {
	return AccountInput{
		CategoryID:     a.CategoryID,
		ParentID:       a.ParentID,
		Name:           a.Name,
		Description:    a.Description,
		Type:           a.Type,
		Balance:        a.Balance,
		BalanceDecimal: a.BalanceDecimal,
		Currency:       a.Currency,
		Color:          a.Color,
		Icon:           a.Icon,
	}
}
