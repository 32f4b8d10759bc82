package repository

import (
	"context"
	"database/sql"
	"errors"
)

// CategoryRepo handles one of the two category tables.
type CategoryRepo struct {
	db    DBTX
	table string
}

func NewAccountCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db, table: "account_categories"}
}

func NewTransactionCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db, table: "transaction_categories"}
}

const categoryColumns = `id, user_id, parent_id, name, description, type, color, icon, created_at, updated_at`

func scanCategory(s scanner) (Category, error) {
	var c Category
	err := s.Scan(&c.ID, &c.UserID, &c.ParentID, &c.Name, &c.Description, &c.Type, &c.Color, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context, userID string) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM `+r.table+` WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Get(ctx context.Context, userID string, id int64) (Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM `+r.table+` WHERE user_id = ? AND id = ?`, userID, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

// Create inserts c and returns the new id.
func (r *CategoryRepo) Create(ctx context.Context, c Category) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO `+r.table+`(user_id, parent_id, name, description, type, color, icon, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, c.UserID, c.ParentID, c.Name, c.Description, c.Type, c.Color, c.Icon)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CategoryRepo) Update(ctx context.Context, c Category) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE `+r.table+` SET
	 parent_id=?,
	 name=?,
	 description=?,
	 type=?,
	 color=?,
	 icon=?,
	 updated_at=CURRENT_TIMESTAMP
	WHERE user_id = ? AND id = ?;
	`, c.ParentID, c.Name, c.Description, c.Type, c.Color, c.Icon, c.UserID, c.ID)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// SetParent moves id under parent; nil makes it a root.
func (r *CategoryRepo) SetParent(ctx context.Context, userID string, id int64, parent *int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE `+r.table+` SET parent_id = ?, updated_at=CURRENT_TIMESTAMP WHERE user_id = ? AND id = ?`, parent, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Delete removes the row; children are promoted to roots by the schema.
func (r *CategoryRepo) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}
