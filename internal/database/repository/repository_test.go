package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/database/repository"
)

func setup(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return ctx, db
}

func ptr[T any](v T) *T { return &v }

func TestCategoryRepoCRUD(t *testing.T) {
	t.Parallel()
	ctx, db := setup(t)
	repo := repository.NewAccountCategoryRepo(db)

	bank, err := repo.Create(ctx, repository.Category{UserID: "u1", Name: "Bank", Type: "other", Color: "#000000", Icon: "mdi:bank"})
	require.NoError(t, err)
	checking, err := repo.Create(ctx, repository.Category{UserID: "u1", ParentID: ptr(bank), Name: "Checking", Type: "other", Color: "#000000", Icon: "mdi:bank"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "u1", checking)
	require.NoError(t, err)
	require.Equal(t, "Checking", got.Name)
	require.Equal(t, bank, *got.ParentID)
	require.Nil(t, got.Description)

	got.Description = ptr("day to day")
	got.Name = "Current"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, "u1", checking)
	require.NoError(t, err)
	require.Equal(t, "Current", got.Name)
	require.Equal(t, "day to day", *got.Description)

	require.NoError(t, repo.SetParent(ctx, "u1", checking, nil))
	got, err = repo.Get(ctx, "u1", checking)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)

	// other users never see the row
	_, err = repo.Get(ctx, "u2", checking)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "u2", checking), repository.ErrNotFound)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, bank, list[0].ID)
}

func TestCategoryDeletePromotesChildren(t *testing.T) {
	t.Parallel()
	ctx, db := setup(t)
	repo := repository.NewTransactionCategoryRepo(db)

	food, err := repo.Create(ctx, repository.Category{UserID: "u1", Name: "Food", Type: "expense", Color: "#000000", Icon: "mdi:food"})
	require.NoError(t, err)
	groceries, err := repo.Create(ctx, repository.Category{UserID: "u1", ParentID: ptr(food), Name: "Groceries", Type: "expense", Color: "#000000", Icon: "mdi:cart"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u1", food))
	got, err := repo.Get(ctx, "u1", groceries)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
	require.ErrorIs(t, repo.Delete(ctx, "u1", food), repository.ErrNotFound)
}

func TestAccountRepoRoundTrip(t *testing.T) {
	t.Parallel()
	ctx, db := setup(t)
	repo := repository.NewAccountRepo(db)

	id, err := repo.Create(ctx, repository.Account{
		UserID: "u1", Name: "Wallet", Type: "cash", Balance: 12345, BalanceDecimal: 2,
		Currency: "EUR", Color: "#112233", Icon: "mdi:wallet",
	})
	require.NoError(t, err)

	a, err := repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.Equal(t, int64(12345), a.Balance)
	require.False(t, a.Virtual)
	require.False(t, a.Budget)
	require.Nil(t, a.CategoryID)
	require.False(t, a.CreatedAt.IsZero())

	a.Balance = 500
	require.NoError(t, repo.Update(ctx, a))
	a, err = repo.Get(ctx, "u1", id)
	require.NoError(t, err)
	require.Equal(t, int64(500), a.Balance)

	require.ErrorIs(t, repo.SetParent(ctx, "u1", 999, nil), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", id))
	_, err = repo.Get(ctx, "u1", id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionRepoOrderingAndCascade(t *testing.T) {
	t.Parallel()
	ctx, db := setup(t)
	repo := repository.NewTransactionRepo(db)

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(ref string, offset int) int64 {
		id, err := repo.Create(ctx, repository.Transaction{
			UserID: "u1", Reference: ref, Type: "expense", Status: "completed", Method: "card",
			Amount: 1000, AmountDecimal: 2, Currency: "EUR", ExchangeRate: 1,
			Date: day, TransactionDate: day.AddDate(0, 0, offset), Color: "#000000", Icon: "mdi:bank",
		})
		require.NoError(t, err)
		return id
	}
	older := mk("ref-a", 0)
	newer := mk("ref-b", 3)

	_, err := repo.Create(ctx, repository.Transaction{
		UserID: "u1", Reference: "ref-a", Type: "expense", Status: "completed", Method: "card",
		Date: day, TransactionDate: day, Color: "#000000", Icon: "mdi:bank",
	})
	require.Error(t, err, "reference is unique")

	list, err := repo.List(ctx, "u1", 200)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer, list[0].ID)
	require.True(t, list[0].TransactionDate.Equal(day.AddDate(0, 0, 3)))
	require.Nil(t, list[0].ScheduledDate)

	for _, amt := range []int64{600, 400} {
		_, err := repo.InsertDetail(ctx, repository.TransactionDetail{
			UserID: "u1", TransactionID: older, Amount: amt, AmountDecimal: 2, Color: "#000000", Icon: "mdi:bank",
		})
		require.NoError(t, err)
	}
	details, err := repo.Details(ctx, "u1", older)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, int64(600), details[0].Amount)

	require.NoError(t, repo.Delete(ctx, "u1", older))
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transaction_details`).Scan(&count))
	require.Zero(t, count)
}
