package storage

import (
	"context"
	"database/sql"
	"errors"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so queries run either way.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createExpense = `
INSERT INTO expenses (user_id, category_id, amount_cents, expense_date, month_key, note, shared_group)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createExpense,
		e.UserID,
		e.CategoryID,
		e.Amount.Cents,
		e.Date.String(),
		e.MonthKey().String(),
		e.Note,
		e.SharedGroup,
	).Scan(&id)
	return id, err
}

const sumExpenses = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM expenses
WHERE category_id = ? AND month_key = ?
`

func (q *Queries) SumExpenses(ctx context.Context, categoryID int64, month core.MonthKey) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumExpenses, categoryID, month.String()).Scan(&total)
	return total, err
}

const findMonthBudget = `
SELECT id, category_id, amount_cents, month_key
FROM budgets
WHERE category_id = ? AND month_key = ?
`

const findStandingBudget = `
SELECT id, category_id, amount_cents, month_key
FROM budgets
WHERE category_id = ? AND month_key IS NULL
`

func (q *Queries) FindBudget(ctx context.Context, categoryID int64, month *core.MonthKey) (*core.Budget, error) {
	var row *sql.Row
	if month != nil {
		row = q.db.QueryRowContext(ctx, findMonthBudget, categoryID, month.String())
	} else {
		row = q.db.QueryRowContext(ctx, findStandingBudget, categoryID)
	}
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

const updateBudgetAmount = `
UPDATE budgets SET amount_cents = ? WHERE id = ?
`

const insertBudget = `
INSERT INTO budgets (category_id, amount_cents, month_key)
VALUES (?, ?, ?)
RETURNING id
`

func (q *Queries) UpdateBudgetAmount(ctx context.Context, id int64, cents int64) error {
	_, err := q.db.ExecContext(ctx, updateBudgetAmount, cents, id)
	return err
}

func (q *Queries) InsertBudget(ctx context.Context, categoryID int64, cents int64, month *core.MonthKey) (int64, error) {
	var monthValue any
	if month != nil {
		monthValue = month.String()
	}
	var id int64
	err := q.db.QueryRowContext(ctx, insertBudget, categoryID, cents, monthValue).Scan(&id)
	return id, err
}

const findCategory = `
SELECT id, name FROM categories WHERE id = ?
`

func (q *Queries) FindCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx, findCategory, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const findCategoryByName = `
SELECT id, name FROM categories WHERE name = ? COLLATE NOCASE
`

func (q *Queries) FindCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx, findCategoryByName, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const listCategories = `
SELECT id, name FROM categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const findUserByName = `
SELECT id, name, email FROM users WHERE name = ? COLLATE NOCASE
`

const insertUser = `
INSERT INTO users (name) VALUES (?) RETURNING id
`

func (q *Queries) FindUserByName(ctx context.Context, name string) (*core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx, findUserByName, name).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) InsertUser(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertUser, name).Scan(&id)
	return id, err
}

const monthTotals = `
SELECT month_key, SUM(amount_cents)
FROM expenses
GROUP BY month_key
ORDER BY month_key
`

func (q *Queries) MonthTotals(ctx context.Context) ([]ledger.MonthTotal, error) {
	rows, err := q.db.QueryContext(ctx, monthTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ledger.MonthTotal
	for rows.Next() {
		var (
			month core.MonthKey
			cents int64
		)
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, err
		}
		out = append(out, ledger.MonthTotal{Month: month, Total: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}

const listRecentExpenses = `
SELECT id, user_id, category_id, amount_cents, expense_date, note, shared_group
FROM expenses
ORDER BY expense_date DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listRecentExpenses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			dateStr string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Amount.Cents, &dateStr, &e.Note, &e.SharedGroup); err != nil {
			return nil, err
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		e.Date = date
		out = append(out, e)
	}
	return out, rows.Err()
}

const listBudgets = `
SELECT id, category_id, amount_cents, month_key
FROM budgets
ORDER BY category_id, month_key
`

func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []core.Budget
	for rows.Next() {
		var (
			b        core.Budget
			monthStr sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Amount.Cents, &monthStr); err != nil {
			return nil, err
		}
		if monthStr.Valid {
			month, err := core.ParseMonthKey(monthStr.String)
			if err != nil {
				return nil, err
			}
			b.Month = &month
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBudget(row *sql.Row) (*core.Budget, error) {
	var (
		b        core.Budget
		monthStr sql.NullString
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &b.Amount.Cents, &monthStr); err != nil {
		return nil, err
	}
	if monthStr.Valid {
		month, err := core.ParseMonthKey(monthStr.String)
		if err != nil {
			return nil, err
		}
		b.Month = &month
	}
	return &b, nil
}
