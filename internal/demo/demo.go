// Package demo fills a user's book with sample accounts and transactions.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/service"
)

// Result counts what Seed created.
type Result struct {
	Accounts     int
	Transactions int
}

type sampleAccount struct {
	Name     string
	Parent   string
	Type     string
	Currency string
}

var sampleAccounts = []sampleAccount{
	{Name: "Sample Bank", Type: "bank"},
	{Name: "Checking", Parent: "Sample Bank", Type: "checking"},
	{Name: "Savings", Parent: "Sample Bank", Type: "savings"},
	{Name: "Cash", Type: "cash"},
	{Name: "Wallet", Parent: "Cash", Type: "cash"},
}

var descriptions = []string{"UBER EATS* SUSHI", "AMAZON.COM*XYZ", "WOOLWORTHS", "SPOTIFY", "SALARY ACME", "SHELL FUEL", "CITY RENT"}

// Seed creates the sample account tree and n transactions spread over the
// last 30 days, filed under random transaction categories of userID. The
// same rng seed gives the same book.
func Seed(ctx context.Context, svc *service.Services, userID string, rng *rand.Rand, n int) (Result, error) {
	var res Result
	ids := make(map[string]int64, len(sampleAccounts))
	for _, sa := range sampleAccounts {
		in := service.AccountInput{Name: sa.Name, Type: sa.Type, Currency: sa.Currency}
		if sa.Parent != "" {
			parent := ids[sa.Parent]
			in.ParentID = &parent
		}
		acc, err := svc.Accounts.Create(ctx, userID, in)
		if err != nil {
			return res, fmt.Errorf("demo account %s: %w", sa.Name, err)
		}
		ids[sa.Name] = acc.ID
		res.Accounts++
	}

	cats, err := svc.TransactionCategories.List(ctx, userID)
	if err != nil {
		return res, err
	}
	from := ids["Checking"]
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < n; i++ {
		desc := descriptions[rng.Intn(len(descriptions))]
		status := "completed"
		if rng.Intn(10) < 2 {
			status = "pending"
		}
		in := service.TransactionInput{
			FromAccountID:   &from,
			Type:            "expense",
			Status:          status,
			Method:          "card",
			Amount:          int64(rng.Intn(20000) + 500),
			AmountDecimal:   2,
			TransactionDate: now.AddDate(0, 0, -rng.Intn(30)),
			Description:     &desc,
		}
		if len(cats) > 0 {
			in.CategoryID = pick(rng, cats)
		}
		if _, err := svc.Transactions.Create(ctx, userID, in, nil); err != nil {
			return res, fmt.Errorf("demo transaction %d: %w", i+1, err)
		}
		res.Transactions++
	}
	return res, nil
}

func pick(rng *rand.Rand, cats []repository.Category) *int64 {
	id := cats[rng.Intn(len(cats))].ID
	return &id
}
