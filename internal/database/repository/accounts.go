package repository

import (
	"context"
	"database/sql"
	"errors"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `id, user_id, category_id, parent_id, name, description, type, balance, balance_decimal,
 virtual, budget, currency, color, icon, created_at, updated_at`

func scanAccount(s scanner) (Account, error) {
	var a Account
	err := s.Scan(&a.ID, &a.UserID, &a.CategoryID, &a.ParentID, &a.Name, &a.Description, &a.Type,
		&a.Balance, &a.BalanceDecimal, &a.Virtual, &a.Budget, &a.Currency, &a.Color, &a.Icon,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AccountRepo) List(ctx context.Context, userID string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Get(ctx context.Context, userID string, id int64) (Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *AccountRepo) Create(ctx context.Context, a Account) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(user_id, category_id, parent_id, name, description, type, balance, balance_decimal,
	 virtual, budget, currency, color, icon, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, a.UserID, a.CategoryID, a.ParentID, a.Name, a.Description, a.Type, a.Balance, a.BalanceDecimal,
		a.Virtual, a.Budget, a.Currency, a.Color, a.Icon)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *AccountRepo) Update(ctx context.Context, a Account) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET
	 category_id=?,
	 parent_id=?,
	 name=?,
	 description=?,
	 type=?,
	 balance=?,
	 balance_decimal=?,
	 virtual=?,
	 budget=?,
	 currency=?,
	 color=?,
	 icon=?,
	 updated_at=CURRENT_TIMESTAMP
	WHERE user_id = ? AND id = ?;
	`, a.CategoryID, a.ParentID, a.Name, a.Description, a.Type, a.Balance, a.BalanceDecimal,
		a.Virtual, a.Budget, a.Currency, a.Color, a.Icon, a.UserID, a.ID)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *AccountRepo) SetParent(ctx context.Context, userID string, id int64, parent *int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET parent_id = ?, updated_at=CURRENT_TIMESTAMP WHERE user_id = ? AND id = ?`, parent, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *AccountRepo) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}
