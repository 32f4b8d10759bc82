package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TransactionRepo handles transaction headers and their detail rows.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, user_id, reference, category_id, from_account_id, to_account_id, type, status, method,
 amount, amount_decimal, currency, exchange_rate, date, transaction_date, scheduled_date,
 description, notes, tags, color, icon, created_at, updated_at`

func scanTransaction(s scanner) (Transaction, error) {
	var t Transaction
	err := s.Scan(&t.ID, &t.UserID, &t.Reference, &t.CategoryID, &t.FromAccountID, &t.ToAccountID,
		&t.Type, &t.Status, &t.Method, &t.Amount, &t.AmountDecimal, &t.Currency, &t.ExchangeRate,
		&t.Date, &t.TransactionDate, &t.ScheduledDate, &t.Description, &t.Notes, &t.Tags,
		&t.Color, &t.Icon, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// List returns the newest transactions first, at most limit rows.
func (r *TransactionRepo) List(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+transactionColumns+` FROM transactions
	WHERE user_id = ?
	ORDER BY transaction_date DESC, id DESC
	LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) Get(ctx context.Context, userID string, id int64) (Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return t, err
}

func (r *TransactionRepo) Create(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 user_id, reference, category_id, from_account_id, to_account_id, type, status, method,
	 amount, amount_decimal, currency, exchange_rate, date, transaction_date, scheduled_date,
	 description, notes, tags, color, icon, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.UserID, t.Reference, t.CategoryID, t.FromAccountID, t.ToAccountID, t.Type, t.Status, t.Method,
		t.Amount, t.AmountDecimal, t.Currency, t.ExchangeRate, t.Date, t.TransactionDate, t.ScheduledDate,
		t.Description, t.Notes, t.Tags, t.Color, t.Icon)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites every mutable header column. The reference never changes.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 category_id=?, from_account_id=?, to_account_id=?, type=?, status=?, method=?,
	 amount=?, amount_decimal=?, currency=?, exchange_rate=?, date=?, transaction_date=?, scheduled_date=?,
	 description=?, notes=?, tags=?, color=?, icon=?, updated_at=CURRENT_TIMESTAMP
	WHERE user_id = ? AND id = ?;
	`,
		t.CategoryID, t.FromAccountID, t.ToAccountID, t.Type, t.Status, t.Method,
		t.Amount, t.AmountDecimal, t.Currency, t.ExchangeRate, t.Date, t.TransactionDate, t.ScheduledDate,
		t.Description, t.Notes, t.Tags, t.Color, t.Icon, t.UserID, t.ID)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *TransactionRepo) UpdateCategory(ctx context.Context, userID string, id int64, categoryID *int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET category_id = ?, updated_at=CURRENT_TIMESTAMP WHERE user_id = ? AND id = ?`, categoryID, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Delete removes the header; detail rows go with it via ON DELETE CASCADE.
func (r *TransactionRepo) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *TransactionRepo) InsertDetail(ctx context.Context, d TransactionDetail) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transaction_details(user_id, transaction_id, amount, amount_decimal, description, notes, tags, color, icon, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, d.UserID, d.TransactionID, d.Amount, d.AmountDecimal, d.Description, d.Notes, d.Tags, d.Color, d.Icon)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *TransactionRepo) Details(ctx context.Context, userID string, transactionID int64) ([]TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, transaction_id, amount, amount_decimal, description, notes, tags, color, icon, created_at
	FROM transaction_details
	WHERE user_id = ? AND transaction_id = ?
	ORDER BY id`, userID, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionDetail
	for rows.Next() {
		var d TransactionDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.TransactionID, &d.Amount, &d.AmountDecimal,
			&d.Description, &d.Notes, &d.Tags, &d.Color, &d.Icon, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) DeleteDetails(ctx context.Context, userID string, transactionID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transaction_details WHERE user_id = ? AND transaction_id = ?`, userID, transactionID)
	return err
}
