package services

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

type BudgetService struct {
	store  ledger.Store
	logger *log.Logger
}

func NewBudgetService(store ledger.Store, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("budget_service")
	}
	return &BudgetService{store: store, logger: logger}
}

// SetBudget creates or updates the budget for (category, month). A nil
// month addresses the standing budget. Amounts must be positive; the
// category must exist.
func (s *BudgetService) SetBudget(ctx context.Context, categoryID int64, amount core.Money, month *core.MonthKey) (*core.Budget, error) {
	if err := amount.Validate(); err != nil {
		return nil, fmt.Errorf("budget amount: %w", err)
	}
	category, err := s.store.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category #%d: %w", categoryID, core.ErrUnknownCategory)
	}

	b, err := s.store.UpsertBudget(ctx, categoryID, amount, month)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	monthStr := "standing"
	if month != nil {
		monthStr = month.String()
	}
	s.logger.InfoContext(ctx, "Budget set",
		"category", category.Name,
		"amount_cents", amount.Cents,
		"month", monthStr)
	return b, nil
}

// ListBudgets returns every configured budget row.
func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}
