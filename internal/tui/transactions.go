package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/service"
)

func newTransactionTable(th Theme) table.Model {
	t := table.New(
		table.WithColumns(transactionColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styleTable(&t, th)
	return t
}

func styleTable(t *table.Model, th Theme) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(th.Palette.Surface1).
		BorderBottom(true).
		Bold(true).
		Foreground(th.Palette.Pink)
	s.Selected = s.Selected.
		Foreground(th.Palette.Base).
		Background(th.Palette.Lavender).
		Bold(false)
	t.SetStyles(s)
}

func transactionColumns(width int) []table.Column {
	desc := width - 12 - 24 - 14 - 10 - 10
	if desc < 12 {
		desc = 12
	}
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Description", Width: desc},
		{Title: "Category", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Status", Width: 10},
	}
}

func (a *App) transactionRows() []table.Row {
	rows := make([]table.Row, 0, len(a.snap.Transactions))
	for _, tx := range a.snap.Transactions {
		category := a.categoryPath(service.KindTransactionCategories, tx.CategoryID)
		if category == "" {
			category = "-"
		}
		rows = append(rows, table.Row{
			tx.TransactionDate.Local().Format(a.dateLayout()),
			strOr(tx.Description),
			category,
			a.formatAmount(tx),
			tx.Status,
		})
	}
	return rows
}

func (a *App) formatAmount(tx repository.Transaction) string {
	amount := service.FormatMinor(tx.Amount, tx.AmountDecimal)
	if tx.Currency == "EUR" && a.cfg.UI.CurrencySymbol != "" {
		return a.cfg.UI.CurrencySymbol + amount
	}
	return amount + " " + tx.Currency
}

func (a *App) selectedTransaction() (repository.Transaction, bool) {
	i := a.txTable.Cursor()
	if i < 0 || i >= len(a.snap.Transactions) {
		return repository.Transaction{}, false
	}
	return a.snap.Transactions[i], true
}

func (a *App) handleTransactionsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.New):
		a.form = a.transactionForm()
		return a, nil
	case key.Matches(m, a.keys.Category):
		if tx, ok := a.selectedTransaction(); ok {
			c := a.openChooser(chooseTransactionCategory, service.KindTransactionCategories, "Category for "+transactionLabel(tx), tx.CategoryID)
			c.txID = tx.ID
		}
		return a, nil
	case key.Matches(m, a.keys.Delete):
		if tx, ok := a.selectedTransaction(); ok {
			a.confirm = &confirmState{
				prompt: "Delete " + transactionLabel(tx) + " and its details?",
				run:    a.deleteTransactionCmd(tx.ID),
			}
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.txTable, cmd = a.txTable.Update(m)
	return a, cmd
}

func transactionLabel(tx repository.Transaction) string {
	if d := strings.TrimSpace(strOr(tx.Description)); d != "" {
		return d
	}
	return "transaction " + service.FormatMinor(tx.Amount, tx.AmountDecimal)
}

func (a *App) renderTransactions() string {
	if len(a.snap.Transactions) == 0 {
		return a.theme.Muted.Render("No transactions yet. Press n to add one.")
	}
	return a.txTable.View()
}
