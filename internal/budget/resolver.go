package budget

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Resolver determines which budget governs a (category, month) pair.
type Resolver struct {
	budgets ledger.BudgetReader
}

func NewResolver(budgets ledger.BudgetReader) *Resolver {
	return &Resolver{budgets: budgets}
}

// Resolve returns the governing budget: the month-specific row when one
// exists, otherwise the standing row, otherwise nil meaning no budget is
// configured. A month-specific row always wins over the standing one.
func (r *Resolver) Resolve(ctx context.Context, categoryID int64, month core.MonthKey) (*core.Budget, error) {
	specific, err := r.budgets.FindBudget(ctx, categoryID, &month)
	if err != nil {
		return nil, fmt.Errorf("find month budget: %w", err)
	}
	if specific != nil {
		return specific, nil
	}
	standing, err := r.budgets.FindBudget(ctx, categoryID, nil)
	if err != nil {
		return nil, fmt.Errorf("find standing budget: %w", err)
	}
	return standing, nil
}
