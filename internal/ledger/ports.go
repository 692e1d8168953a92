// Package ledger defines the store ports the rest of the system depends
// on. Components accept these narrow interfaces and a backend (memory or
// SQLite) is injected at construction; nothing looks up a shared handle.
package ledger

import (
	"context"

	"expensetracker/internal/core"
)

type (
	// SpendReader totals persisted spend. SumExpenses returns zero when no
	// expense matches; absence of spend is not an error.
	SpendReader interface {
		SumExpenses(ctx context.Context, categoryID int64, month core.MonthKey) (core.Money, error)
	}

	// BudgetReader looks up a single budget row. A nil month selects the
	// standing budget. A (nil, nil) return means no row is configured.
	BudgetReader interface {
		FindBudget(ctx context.Context, categoryID int64, month *core.MonthKey) (*core.Budget, error)
	}

	CategoryReader interface {
		// FindCategory returns nil when the id is unknown.
		FindCategory(ctx context.Context, id int64) (*core.Category, error)
		// FindCategoryByName returns nil when the name is unknown.
		FindCategoryByName(ctx context.Context, name string) (*core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	UserStore interface {
		// FindOrCreateUser returns the user with the given name, creating
		// it on first use.
		FindOrCreateUser(ctx context.Context, name string) (*core.User, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	}

	BudgetWriter interface {
		// UpsertBudget sets the amount for the (category, month) pair,
		// updating the existing row in place when one exists. A nil month
		// addresses the standing budget.
		UpsertBudget(ctx context.Context, categoryID int64, amount core.Money, month *core.MonthKey) (*core.Budget, error)
	}

	ReportReader interface {
		// MonthTotals returns overall spend per month, oldest first.
		MonthTotals(ctx context.Context) ([]MonthTotal, error)
		ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error)
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	// Store is the full surface a backend provides.
	Store interface {
		SpendReader
		BudgetReader
		CategoryReader
		UserStore
		ExpenseWriter
		BudgetWriter
		ReportReader
	}
)

// MonthTotal is one row of the per-month spend report.
type MonthTotal struct {
	Month core.MonthKey
	Total core.Money
}
