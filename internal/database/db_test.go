package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/fintree/internal/database/repository"
)

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenAndMigrate(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestMigrationsCreateSchema(t *testing.T) {
	t.Parallel()
	db, path := openTestDB(t)

	for _, table := range []string{"account_categories", "accounts", "transaction_categories", "transactions", "transaction_details"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	v, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), v)

	// second run is a no-op
	require.NoError(t, RunMigrations(path))
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	t.Parallel()
	db, _ := openTestDB(t)

	var on int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
	require.Equal(t, 1, on)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, _ := openTestDB(t)

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := repository.NewAccountCategoryRepo(tx).Create(ctx, repository.Category{UserID: "u1", Name: "Temp", Type: "other", Color: "#000000", Icon: "mdi:bank"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_categories`).Scan(&count))
	require.Zero(t, count)
}

func TestSeedDefaultsIsIdempotentPerUser(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, _ := openTestDB(t)

	require.NoError(t, SeedDefaults(ctx, db, "u1"))
	cats, err := repository.NewTransactionCategoryRepo(db).List(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	byName := make(map[string]repository.Category)
	for _, c := range cats {
		byName[c.Name] = c
	}
	groceries, food := byName["Groceries"], byName["Food"]
	require.NotNil(t, groceries.ParentID)
	require.Equal(t, food.ID, *groceries.ParentID)
	require.Nil(t, food.ParentID)

	require.NoError(t, SeedDefaults(ctx, db, "u1"))
	again, err := repository.NewTransactionCategoryRepo(db).List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, again, len(cats))

	require.NoError(t, SeedDefaults(ctx, db, "u2"))
	other, err := repository.NewAccountCategoryRepo(db).List(ctx, "u2")
	require.NoError(t, err)
	require.NotEmpty(t, other)
}
