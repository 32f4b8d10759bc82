package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/service"
)

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *App) categoryForm(kind service.Kind, c *repository.Category, parent *int64) *form {
	title := "New " + strings.TrimSuffix(kind.Title(), "ies") + "y"
	var cur repository.Category
	if c != nil {
		cur = *c
		title = "Edit " + c.Name
	}
	f := newForm(title, formCategory,
		fieldSpec{key: "name", label: "Name", value: cur.Name},
		fieldSpec{key: "description", label: "Description", value: strOr(cur.Description)},
		fieldSpec{key: "type", label: "Type", value: cur.Type, placeholder: "other"},
		fieldSpec{key: "color", label: "Color", value: cur.Color, placeholder: "#000000"},
		fieldSpec{key: "icon", label: "Icon", value: cur.Icon, placeholder: "mdi:bank"},
	)
	f.target = kind
	f.parent = parent
	if c != nil {
		f.id = &cur.ID
		f.parent = cur.ParentID
	}
	return f
}

func (a *App) accountForm(acc *repository.Account, parent *int64) *form {
	title := "New Account"
	cur := repository.Account{BalanceDecimal: 2}
	balance := ""
	if acc != nil {
		cur = *acc
		title = "Edit " + acc.Name
		balance = service.FormatMinor(cur.Balance, cur.BalanceDecimal)
	}
	f := newForm(title, formAccount,
		fieldSpec{key: "name", label: "Name", value: cur.Name},
		fieldSpec{key: "description", label: "Description", value: strOr(cur.Description)},
		fieldSpec{key: "type", label: "Type", value: cur.Type, placeholder: "other"},
		fieldSpec{key: "currency", label: "Currency", value: cur.Currency, placeholder: "EUR"},
		fieldSpec{key: "balance", label: "Balance", value: balance, placeholder: "0.00"},
		fieldSpec{key: "decimals", label: "Decimals", value: strconv.Itoa(cur.BalanceDecimal)},
		fieldSpec{key: "color", label: "Color", value: cur.Color, placeholder: "#000000"},
		fieldSpec{key: "icon", label: "Icon", value: cur.Icon, placeholder: "mdi:bank"},
	)
	f.target = service.KindAccounts
	f.parent = parent
	if acc != nil {
		f.id = &cur.ID
		f.parent = cur.ParentID
	}
	return f.withCategory(service.KindAccountCategories, cur.CategoryID, a.categoryPath(service.KindAccountCategories, cur.CategoryID))
}

func (a *App) transactionForm() *form {
	layout := a.dateLayout()
	f := newForm("New Transaction", formTransaction,
		fieldSpec{key: "date", label: "Date", value: time.Now().Format(layout), placeholder: layout},
		fieldSpec{key: "description", label: "Description"},
		fieldSpec{key: "amount", label: "Amount", placeholder: "0.00"},
		fieldSpec{key: "type", label: "Type", value: "expense"},
		fieldSpec{key: "method", label: "Method", placeholder: "other"},
		fieldSpec{key: "currency", label: "Currency", placeholder: "EUR"},
	)
	return f.withCategory(service.KindTransactionCategories, nil, "")
}

func (a *App) dateLayout() string {
	if a.cfg.UI.DateFormat != "" {
		return a.cfg.UI.DateFormat
	}
	return "2006-01-02"
}

// submitForm validates what can be checked locally and returns the write
// command. A non-nil error keeps the form open.
func (a *App) submitForm(f *form) (tea.Cmd, error) {
	switch f.kind {
	case formCategory:
		in := service.CategoryInput{
			ParentID:    f.parent,
			Name:        f.value("name"),
			Description: optional(f.value("description")),
			Type:        f.value("type"),
			Color:       f.value("color"),
			Icon:        f.value("icon"),
		}
		if in.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		return a.saveCategoryCmd(f.target, f.id, in), nil

	case formAccount:
		decimals := 2
		if s := f.value("decimals"); s != "" {
			d, err := strconv.Atoi(s)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("decimals must be a whole number")
			}
			decimals = d
		}
		balance, err := service.ParseMinor(f.value("balance"), decimals)
		if err != nil {
			return nil, err
		}
		in := service.AccountInput{
			CategoryID:     f.category,
			ParentID:       f.parent,
			Name:           f.value("name"),
			Description:    optional(f.value("description")),
			Type:           f.value("type"),
			Balance:        balance,
			BalanceDecimal: decimals,
			Currency:       f.value("currency"),
			Color:          f.value("color"),
			Icon:           f.value("icon"),
		}
		if in.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		return a.saveAccountCmd(f.id, in), nil

	case formTransaction:
		when, err := time.ParseInLocation(a.dateLayout(), f.value("date"), time.Local)
		if err != nil {
			return nil, fmt.Errorf("date must look like %s", a.dateLayout())
		}
		amount, err := service.ParseMinor(f.value("amount"), 2)
		if err != nil {
			return nil, err
		}
		in := service.TransactionInput{
			CategoryID:      f.category,
			Type:            f.value("type"),
			Method:          f.value("method"),
			Amount:          amount,
			AmountDecimal:   2,
			Currency:        f.value("currency"),
			Date:            when,
			TransactionDate: when,
			Description:     optional(f.value("description")),
		}
		if in.Type == "" {
			return nil, fmt.Errorf("type is required")
		}
		return a.createTransactionCmd(in), nil
	}
	return nil, fmt.Errorf("unknown form")
}

func (a *App) saveCategoryCmd(kind service.Kind, id *int64, in service.CategoryInput) tea.Cmd {
	return func() tea.Msg {
		svc, err := a.svc.Categories(kind)
		if err != nil {
			return errMsg{err}
		}
		if id == nil {
			c, err := svc.Create(a.ctx, a.userID, in)
			if err != nil {
				return errMsg{err}
			}
			return doneMsg(fmt.Sprintf("%s added", c.Name))
		}
		c, err := svc.Update(a.ctx, a.userID, *id, in)
		if err != nil {
			return errMsg{err}
		}
		return doneMsg(fmt.Sprintf("%s saved", c.Name))
	}
}

func (a *App) saveAccountCmd(id *int64, in service.AccountInput) tea.Cmd {
	return func() tea.Msg {
		if id == nil {
			acc, err := a.svc.Accounts.Create(a.ctx, a.userID, in)
			if err != nil {
				return errMsg{err}
			}
			return doneMsg(fmt.Sprintf("%s added", acc.Name))
		}
		acc, err := a.svc.Accounts.Update(a.ctx, a.userID, *id, in)
		if err != nil {
			return errMsg{err}
		}
		return doneMsg(fmt.Sprintf("%s saved", acc.Name))
	}
}

func (a *App) createTransactionCmd(in service.TransactionInput) tea.Cmd {
	return func() tea.Msg {
		tx, err := a.svc.Transactions.Create(a.ctx, a.userID, in, nil)
		if err != nil {
			return errMsg{err}
		}
		return doneMsg("transaction " + service.FormatMinor(tx.Amount, tx.AmountDecimal) + " added")
	}
}

func (a *App) deleteCmd(kind service.Kind, id int64, label string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if kind == service.KindAccounts {
			err = a.svc.Accounts.Delete(a.ctx, a.userID, id)
		} else {
			var svc *service.CategoryService
			if svc, err = a.svc.Categories(kind); err == nil {
				err = svc.Delete(a.ctx, a.userID, id)
			}
		}
		if err != nil {
			return errMsg{err}
		}
		return doneMsg(label + " deleted")
	}
}

func (a *App) deleteTransactionCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.svc.Transactions.Delete(a.ctx, a.userID, id); err != nil {
			return errMsg{err}
		}
		return doneMsg("transaction deleted")
	}
}

func (a *App) reparentCmd(kind service.Kind, id int64, parent *int64, label string) tea.Cmd {
	return func() tea.Msg {
		if err := a.svc.Hierarchies.Reparent(a.ctx, a.userID, kind, id, parent); err != nil {
			return errMsg{err}
		}
		if parent == nil {
			return doneMsg(label + " moved to top level")
		}
		return doneMsg(label + " moved")
	}
}

func (a *App) setTransactionCategoryCmd(id int64, category *int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.svc.Transactions.SetCategory(a.ctx, a.userID, id, category); err != nil {
			return errMsg{err}
		}
		if category == nil {
			return doneMsg("category cleared")
		}
		return doneMsg("category updated")
	}
}
