package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/database/repository"
)

// ListLimit caps how many transactions List returns.
const ListLimit = 200

// TransactionInput is the editable part of a transaction header.
type TransactionInput struct {
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
}

// DetailInput is one split line. A zero AmountDecimal inherits the header's.
type DetailInput struct {
	Amount        int64
	AmountDecimal int
	Description   *string
	Notes         *string
	Tags          *string
	Color         string
	Icon          string
}

// TransactionService manages transaction headers and details.
type TransactionService struct {
	DB         *sql.DB
	Repo       *repository.TransactionRepo
	Categories *repository.CategoryRepo
	Accounts   *repository.AccountRepo
	Logger     *slog.Logger

	now func() time.Time
}

func (s *TransactionService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return database.Now()
}

// checkRefs makes sure the category and accounts belong to userID; the
// foreign keys alone do not look at the owner.
func (s *TransactionService) checkRefs(ctx context.Context, userID string, t repository.Transaction) error {
	if t.CategoryID != nil && s.Categories != nil {
		if _, err := s.Categories.Get(ctx, userID, *t.CategoryID); err != nil {
			return fmt.Errorf("transaction category %d: %w", *t.CategoryID, err)
		}
	}
	if s.Accounts == nil {
		return nil
	}
	for _, ref := range []struct {
		name string
		id   *int64
	}{{"from account", t.FromAccountID}, {"to account", t.ToAccountID}} {
		if ref.id == nil {
			continue
		}
		if _, err := s.Accounts.Get(ctx, userID, *ref.id); err != nil {
			return fmt.Errorf("%s %d: %w", ref.name, *ref.id, err)
		}
	}
	return nil
}

func (s *TransactionService) apply(userID string, t *repository.Transaction, in TransactionInput) error {
	t.Type = strings.TrimSpace(in.Type)
	if t.Type == "" {
		return invalidf("transaction type required")
	}
	if in.AmountDecimal < 0 {
		return invalidf("amount decimals %d", in.AmountDecimal)
	}
	if in.ExchangeRate < 0 {
		return invalidf("exchange rate %v", in.ExchangeRate)
	}
	t.UserID = userID
	t.CategoryID = in.CategoryID
	t.FromAccountID = in.FromAccountID
	t.ToAccountID = in.ToAccountID
	t.Status = orDefault(in.Status, "completed")
	t.Method = orDefault(in.Method, "other")
	t.Amount = in.Amount
	t.AmountDecimal = in.AmountDecimal
	if t.AmountDecimal == 0 {
		t.AmountDecimal = defaultDecimals
	}
	t.Currency = strings.ToUpper(orDefault(in.Currency, defaultCurrency))
	t.ExchangeRate = in.ExchangeRate
	if t.ExchangeRate == 0 {
		t.ExchangeRate = 1
	}
	t.Date = in.Date
	if t.Date.IsZero() {
		t.Date = s.clock()
	}
	t.Date = t.Date.UTC()
	t.TransactionDate = in.TransactionDate
	if t.TransactionDate.IsZero() {
		t.TransactionDate = t.Date
	}
	t.TransactionDate = t.TransactionDate.UTC()
	t.ScheduledDate = nil
	if in.ScheduledDate != nil && !in.ScheduledDate.IsZero() {
		sd := in.ScheduledDate.UTC()
		t.ScheduledDate = &sd
	}
	t.Description = trimmedPtr(in.Description)
	t.Notes = trimmedPtr(in.Notes)
	t.Tags = trimmedPtr(in.Tags)
	t.Color = orDefault(in.Color, defaultColor)
	t.Icon = orDefault(in.Icon, defaultIcon)
	return nil
}

func checkDetails(header repository.Transaction, details []DetailInput) error {
	if len(details) == 0 {
		return nil
	}
	var sum int64
	for i, d := range details {
		if d.AmountDecimal != 0 && d.AmountDecimal != header.AmountDecimal {
			return invalidf("detail %d uses %d decimals, header uses %d", i+1, d.AmountDecimal, header.AmountDecimal)
		}
		sum += d.Amount
	}
	if sum != header.Amount {
		return fmt.Errorf("%w: details %s, amount %s", ErrDetailSumMismatch,
			FormatMinor(sum, header.AmountDecimal), FormatMinor(header.Amount, header.AmountDecimal))
	}
	return nil
}

// Create writes the header and its details in one database transaction and
// assigns a fresh reference.
func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput, details []DetailInput) (repository.Transaction, error) {
	var t repository.Transaction
	if err := s.apply(userID, &t, in); err != nil {
		return repository.Transaction{}, err
	}
	if err := s.checkRefs(ctx, userID, t); err != nil {
		return repository.Transaction{}, err
	}
	if err := checkDetails(t, details); err != nil {
		return repository.Transaction{}, err
	}
	t.Reference = uuid.NewString()

	var id int64
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		repo := repository.NewTransactionRepo(tx)
		var err error
		if id, err = repo.Create(ctx, t); err != nil {
			return fmt.Errorf("insert header: %w", err)
		}
		for i, d := range details {
			_, err := repo.InsertDetail(ctx, repository.TransactionDetail{
				UserID:        userID,
				TransactionID: id,
				Amount:        d.Amount,
				AmountDecimal: t.AmountDecimal,
				Description:   trimmedPtr(d.Description),
				Notes:         trimmedPtr(d.Notes),
				Tags:          trimmedPtr(d.Tags),
				Color:         orDefault(d.Color, defaultColor),
				Icon:          orDefault(d.Icon, defaultIcon),
			})
			if err != nil {
				return fmt.Errorf("insert detail %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return repository.Transaction{}, err
	}
	s.Logger.Info("transaction created", "id", id, "details", len(details))
	return s.Repo.Get(ctx, userID, id)
}

// Update rewrites the header. When the amount changes and details exist they
// must still add up.
func (s *TransactionService) Update(ctx context.Context, userID string, id int64, in TransactionInput) (repository.Transaction, error) {
	t, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return repository.Transaction{}, err
	}
	if err := s.apply(userID, &t, in); err != nil {
		return repository.Transaction{}, err
	}
	if err := s.checkRefs(ctx, userID, t); err != nil {
		return repository.Transaction{}, err
	}
	existing, err := s.Repo.Details(ctx, userID, id)
	if err != nil {
		return repository.Transaction{}, err
	}
	if len(existing) > 0 {
		var sum int64
		for _, d := range existing {
			sum += d.Amount
		}
		if sum != t.Amount {
			return repository.Transaction{}, fmt.Errorf("%w: details %s, amount %s", ErrDetailSumMismatch,
				FormatMinor(sum, t.AmountDecimal), FormatMinor(t.Amount, t.AmountDecimal))
		}
	}
	if err := s.Repo.Update(ctx, t); err != nil {
		return repository.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return s.Repo.Get(ctx, userID, id)
}

// SetCategory files a transaction under category, or unfiles it when
// category is nil.
func (s *TransactionService) SetCategory(ctx context.Context, userID string, id int64, category *int64) error {
	if category != nil && s.Categories != nil {
		if _, err := s.Categories.Get(ctx, userID, *category); err != nil {
			return fmt.Errorf("transaction category %d: %w", *category, err)
		}
	}
	if err := s.Repo.UpdateCategory(ctx, userID, id, category); err != nil {
		return fmt.Errorf("set category of transaction %d: %w", id, err)
	}
	s.Logger.Info("transaction category set", "id", id, "category", category)
	return nil
}

// Delete removes the header and, through the foreign key, its details.
func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.Logger.Info("transaction deleted", "id", id)
	return nil
}

// List returns the newest ListLimit transactions by transaction date.
func (s *TransactionService) List(ctx context.Context, userID string) ([]repository.Transaction, error) {
	return s.Repo.List(ctx, userID, ListLimit)
}

func (s *TransactionService) Details(ctx context.Context, userID string, id int64) ([]repository.TransactionDetail, error) {
	if _, err := s.Repo.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Repo.Details(ctx, userID, id)
}
