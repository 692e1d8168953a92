// Package storage is the SQLite ledger backend. The month key of every
// expense is derived once at insert and stored denormalized, so
// aggregation and budget matching are exact string comparisons.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) SumExpenses(ctx context.Context, categoryID int64, month core.MonthKey) (core.Money, error) {
	cents, err := r.queries.SumExpenses(ctx, categoryID, month)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, categoryID int64, month *core.MonthKey) (*core.Budget, error) {
	b, err := r.queries.FindBudget(ctx, categoryID, month)
	if err != nil {
		return nil, fmt.Errorf("find budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) FindCategory(ctx context.Context, id int64) (*core.Category, error) {
	c, err := r.queries.FindCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) FindCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	c, err := r.queries.FindCategoryByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	out, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// FindOrCreateUser runs in a transaction so two concurrent submissions
// under the same new name cannot create duplicate users.
func (r *SQLiteRepository) FindOrCreateUser(ctx context.Context, name string) (*core.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.ErrEmptyName
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	user, err := q.FindUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		id, err := q.InsertUser(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		user = &core.User{ID: id, Name: name}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"category_id", e.CategoryID,
		"amount_cents", e.Amount.Cents,
		"month", e.MonthKey().String())
	return id, nil
}

// UpsertBudget updates the matching row's amount in place, inserting the
// row on first use. Runs in a transaction to keep the one-row-per-pair
// invariant under concurrent writers.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, categoryID int64, amount core.Money, month *core.MonthKey) (*core.Budget, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	existing, err := q.FindBudget(ctx, categoryID, month)
	if err != nil {
		return nil, fmt.Errorf("find budget: %w", err)
	}

	var b core.Budget
	if existing != nil {
		if err := q.UpdateBudgetAmount(ctx, existing.ID, amount.Cents); err != nil {
			return nil, fmt.Errorf("update budget: %w", err)
		}
		b = *existing
		b.Amount = amount
	} else {
		id, err := q.InsertBudget(ctx, categoryID, amount.Cents, month)
		if err != nil {
			return nil, fmt.Errorf("insert budget: %w", err)
		}
		b = core.Budget{ID: id, CategoryID: categoryID, Amount: amount}
		if month != nil {
			m := *month
			b.Month = &m
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) MonthTotals(ctx context.Context) ([]ledger.MonthTotal, error) {
	out, err := r.queries.MonthTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := r.queries.ListRecentExpenses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	out, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}
