package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/hierarchy"
)

const testUser = "u1"

func newTestServices(t *testing.T) (context.Context, *Services) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return ctx, New(db, nil)
}

func ptr[T any](v T) *T { return &v }

// foodTree creates Food > Groceries > Dairy as transaction categories.
func foodTree(t *testing.T, ctx context.Context, s *Services) (food, groceries, dairy int64) {
	t.Helper()
	cats := s.TransactionCategories
	f, err := cats.Create(ctx, testUser, CategoryInput{Name: "Food"})
	require.NoError(t, err)
	g, err := cats.Create(ctx, testUser, CategoryInput{Name: "Groceries", ParentID: ptr(f.ID)})
	require.NoError(t, err)
	d, err := cats.Create(ctx, testUser, CategoryInput{Name: "Dairy", ParentID: ptr(g.ID)})
	require.NoError(t, err)
	return f.ID, g.ID, d.ID
}

func TestReparentRejectsCycles(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	food, groceries, dairy := foodTree(t, ctx, s)

	for _, parent := range []int64{food, groceries, dairy} {
		err := s.Hierarchies.Reparent(ctx, testUser, KindTransactionCategories, food, ptr(parent))
		require.ErrorIs(t, err, ErrCycle)
		require.ErrorIs(t, err, hierarchy.ErrProhibited)
	}

	require.ErrorIs(t, s.Hierarchies.Reparent(ctx, testUser, KindTransactionCategories, 999, nil), ErrNotFound)
	require.ErrorIs(t, s.Hierarchies.Reparent(ctx, testUser, KindTransactionCategories, dairy, ptr(int64(999))), ErrNotFound)

	require.NoError(t, s.Hierarchies.Reparent(ctx, testUser, KindTransactionCategories, dairy, nil))
	require.NoError(t, s.Hierarchies.Reparent(ctx, testUser, KindTransactionCategories, food, ptr(dairy)))

	f, err := s.Hierarchies.Forest(ctx, testUser, KindTransactionCategories)
	require.NoError(t, err)
	require.Equal(t, []int64{dairy}, f.Ancestors(food))
	require.Equal(t, []string{"Dairy", "Food", "Groceries"}, f.Path(groceries))
}

func TestCategoryUpdateChecksParent(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	food, _, dairy := foodTree(t, ctx, s)

	cur, err := s.TransactionCategories.Get(ctx, testUser, food)
	require.NoError(t, err)
	in := InputFromCategory(cur)
	in.ParentID = ptr(dairy)
	_, err = s.TransactionCategories.Update(ctx, testUser, food, in)
	require.ErrorIs(t, err, ErrCycle)

	in.ParentID = nil
	in.Name = "  Food & Drink "
	updated, err := s.TransactionCategories.Update(ctx, testUser, food, in)
	require.NoError(t, err)
	require.Equal(t, "Food & Drink", updated.Name)

	_, err = s.TransactionCategories.Create(ctx, testUser, CategoryInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestAccountDefaultsAndForcedFlags(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)

	a, err := s.Accounts.Create(ctx, testUser, AccountInput{Name: " Wallet ", Description: ptr("  ")})
	require.NoError(t, err)
	require.Equal(t, "Wallet", a.Name)
	require.Equal(t, "other", a.Type)
	require.Equal(t, "EUR", a.Currency)
	require.Equal(t, 2, a.BalanceDecimal)
	require.Equal(t, "#000000", a.Color)
	require.Equal(t, "mdi:bank", a.Icon)
	require.Nil(t, a.Description)
	require.False(t, a.Virtual)
	require.False(t, a.Budget)

	_, err = s.Accounts.Create(ctx, testUser, AccountInput{Name: "Sub", ParentID: ptr(int64(404))})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Accounts.Create(ctx, testUser, AccountInput{Name: "Sub", CategoryID: ptr(int64(404))})
	require.ErrorIs(t, err, ErrNotFound)

	child, err := s.Accounts.Create(ctx, testUser, AccountInput{Name: "Pocket", ParentID: ptr(a.ID), Currency: "usd"})
	require.NoError(t, err)
	require.Equal(t, "USD", child.Currency)

	in := InputFromAccount(a)
	in.ParentID = ptr(child.ID)
	_, err = s.Accounts.Update(ctx, testUser, a.ID, in)
	require.ErrorIs(t, err, ErrCycle)

	require.NoError(t, s.Accounts.Delete(ctx, testUser, a.ID))
	got, err := s.Accounts.Get(ctx, testUser, child.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
}

func TestTransactionCreateWithDetails(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	_, groceries, _ := foodTree(t, ctx, s)

	when := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	in := TransactionInput{CategoryID: ptr(groceries), Type: "expense", Amount: 1250, TransactionDate: when}

	_, err := s.Transactions.Create(ctx, testUser, in, []DetailInput{{Amount: 1000}, {Amount: 200}})
	require.ErrorIs(t, err, ErrDetailSumMismatch)
	list, err := s.Transactions.List(ctx, testUser)
	require.NoError(t, err)
	require.Empty(t, list, "a rejected create writes nothing")

	tx, err := s.Transactions.Create(ctx, testUser, in, []DetailInput{{Amount: 1000, Description: ptr("milk")}, {Amount: 250}})
	require.NoError(t, err)
	require.NotEmpty(t, tx.Reference)
	require.Equal(t, "completed", tx.Status)
	require.Equal(t, "other", tx.Method)
	require.Equal(t, 1.0, tx.ExchangeRate)
	require.True(t, tx.TransactionDate.Equal(when))

	details, err := s.Transactions.Details(ctx, testUser, tx.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, "milk", *details[0].Description)
	require.Equal(t, 2, details[1].AmountDecimal)

	upd := in
	upd.Amount = 999
	_, err = s.Transactions.Update(ctx, testUser, tx.ID, upd)
	require.ErrorIs(t, err, ErrDetailSumMismatch)

	other, err := s.Transactions.Create(ctx, testUser, TransactionInput{Type: "income", Amount: 5, TransactionDate: when.AddDate(0, 0, 1)}, nil)
	require.NoError(t, err)
	require.NotEqual(t, tx.Reference, other.Reference)

	list, err = s.Transactions.List(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, other.ID, list[0].ID)

	require.NoError(t, s.Transactions.Delete(ctx, testUser, tx.ID))
	_, err = s.Transactions.Details(ctx, testUser, tx.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Transactions.Create(ctx, testUser, TransactionInput{Amount: 1}, nil)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTransactionSetCategory(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	food, _, _ := foodTree(t, ctx, s)

	tx, err := s.Transactions.Create(ctx, testUser, TransactionInput{Type: "expense", Amount: 300}, nil)
	require.NoError(t, err)
	require.Nil(t, tx.CategoryID)

	require.NoError(t, s.Transactions.SetCategory(ctx, testUser, tx.ID, ptr(food)))
	got, err := s.Transactions.Repo.Get(ctx, testUser, tx.ID)
	require.NoError(t, err)
	require.Equal(t, food, *got.CategoryID)

	require.ErrorIs(t, s.Transactions.SetCategory(ctx, testUser, tx.ID, ptr(int64(999))), ErrNotFound)
	require.ErrorIs(t, s.Transactions.SetCategory(ctx, "u2", tx.ID, nil), ErrNotFound)

	require.NoError(t, s.Transactions.SetCategory(ctx, testUser, tx.ID, nil))
	got, err = s.Transactions.Repo.Get(ctx, testUser, tx.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)
}

func TestTransactionRefsMustBelongToUser(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	food, _, _ := foodTree(t, ctx, s)
	mine, err := s.Accounts.Create(ctx, testUser, AccountInput{Name: "Checking"})
	require.NoError(t, err)
	theirs, err := s.Accounts.Create(ctx, "u2", AccountInput{Name: "Theirs"})
	require.NoError(t, err)
	theirCat, err := s.TransactionCategories.Create(ctx, "u2", CategoryInput{Name: "Theirs"})
	require.NoError(t, err)

	_, err = s.Transactions.Create(ctx, testUser, TransactionInput{Type: "expense", Amount: 100, CategoryID: ptr(theirCat.ID)}, nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Transactions.Create(ctx, testUser, TransactionInput{Type: "expense", Amount: 100, FromAccountID: ptr(theirs.ID)}, nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Transactions.Create(ctx, testUser, TransactionInput{Type: "transfer", Amount: 100, FromAccountID: ptr(mine.ID), ToAccountID: ptr(theirs.ID)}, nil)
	require.ErrorIs(t, err, ErrNotFound)

	tx, err := s.Transactions.Create(ctx, testUser, TransactionInput{Type: "expense", Amount: 100, CategoryID: ptr(food), FromAccountID: ptr(mine.ID)}, nil)
	require.NoError(t, err)
	require.Equal(t, mine.ID, *tx.FromAccountID)

	_, err = s.Transactions.Update(ctx, testUser, tx.ID, TransactionInput{Type: "expense", Amount: 100, ToAccountID: ptr(theirs.ID)})
	require.ErrorIs(t, err, ErrNotFound)
	got, err := s.Transactions.Repo.Get(ctx, testUser, tx.ID)
	require.NoError(t, err)
	require.Nil(t, got.ToAccountID)
}

func TestParseAndFormatMinor(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     int64
	}{
		{"12.34", 2, 1234},
		{"12", 2, 1200},
		{"12,3", 2, 1230},
		{"0.999", 2, 99},
		{"-4.5", 2, -450},
		{"", 2, 0},
		{".5", 2, 50},
		{"7", 0, 7},
	}
	for _, tt := range tests {
		got, err := ParseMinor(tt.in, tt.decimals)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"1a", "1.2.3", "--1", "abc"} {
		_, err := ParseMinor(bad, 2)
		require.ErrorIs(t, err, ErrInvalid, bad)
	}

	require.Equal(t, "12.34", FormatMinor(1234, 2))
	require.Equal(t, "0.05", FormatMinor(5, 2))
	require.Equal(t, "-0.05", FormatMinor(-5, 2))
	require.Equal(t, "42", FormatMinor(42, 0))
}

func TestLoadSnapshot(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	require.NoError(t, database.SeedDefaults(ctx, s.DB, testUser))
	_, err := s.Accounts.Create(ctx, testUser, AccountInput{Name: "Cash"})
	require.NoError(t, err)

	snap, err := s.LoadSnapshot(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 1)
	require.NotEmpty(t, snap.AccountCategories)
	require.NotEmpty(t, snap.TransactionCategories)
	require.Empty(t, snap.Transactions)

	empty, err := s.LoadSnapshot(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty.Accounts)
}

func TestImportTree(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)

	doc := `
[[node]]
name = "Housing"
description = "home costs"

  [[node.children]]
  name = "Rent"

  [[node.children]]
  name = "Utilities"

    [[node.children.children]]
    name = "Power"

[[node]]
name = "Travel"
`
	n, err := s.ImportTree(ctx, testUser, KindAccountCategories, strings.NewReader(doc), nil)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	f, err := s.Hierarchies.Forest(ctx, testUser, KindAccountCategories)
	require.NoError(t, err)
	require.Len(t, f.Roots(), 2)
	var power int64
	for _, e := range f.Items() {
		if e.Name == "Power" {
			power = e.ID
		}
	}
	require.Equal(t, []string{"Housing", "Utilities", "Power"}, f.Path(power))

	_, err = s.ImportTree(ctx, testUser, KindAccountCategories, strings.NewReader("[[node]]\nname = \"\"\n"), nil)
	require.ErrorIs(t, err, ErrInvalid)
	after, err := s.Hierarchies.Entities(ctx, testUser, KindAccountCategories)
	require.NoError(t, err)
	require.Len(t, after, 5)

	n, err = s.ImportTree(ctx, testUser, KindAccounts, strings.NewReader("[[node]]\nname = \"Bank\"\ncurrency = \"gbp\"\n"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	accts, err := s.Accounts.List(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, "GBP", accts[0].Currency)
}

func TestMaintenanceResetScopedToUser(t *testing.T) {
	t.Parallel()
	ctx, s := newTestServices(t)
	foodTree(t, ctx, s)
	_, err := s.TransactionCategories.Create(ctx, "u2", CategoryInput{Name: "Other"})
	require.NoError(t, err)

	require.NoError(t, s.Maintenance.Reset(ctx, testUser))
	mine, err := s.TransactionCategories.List(ctx, testUser)
	require.NoError(t, err)
	require.Empty(t, mine)
	theirs, err := s.TransactionCategories.List(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Accounts ")
	require.NoError(t, err)
	require.Equal(t, KindAccounts, k)
	_, err = ParseKind("tags")
	require.ErrorIs(t, err, ErrUnknownKind)
}
