package services

import (
	"context"
	"fmt"

	"expensetracker/internal/budget"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// CategoryReportRow is one category's month at a glance: spend, governing
// budget (nil when none is configured), and the resulting level.
type CategoryReportRow struct {
	Category string
	Spent    core.Money
	Budget   *core.Money
	Level    budget.Level
}

// CategoryReport is the per-month view rendered by /reports and exported
// to the spreadsheet by the alert worker.
type CategoryReport struct {
	Month core.MonthKey
	Rows  []CategoryReportRow
}

type ReportService struct {
	store     ledger.Store
	evaluator *budget.Evaluator
}

func NewReportService(store ledger.Store) *ReportService {
	return &ReportService{
		store:     store,
		evaluator: budget.NewEvaluator(store, store, store),
	}
}

// MonthlyTotals returns the overall spend per month, oldest first.
func (s *ReportService) MonthlyTotals(ctx context.Context) ([]ledger.MonthTotal, error) {
	return s.store.MonthTotals(ctx)
}

// CategoryReport builds one row per category for the given month. Rows
// come from the same evaluator that drives alerting.
func (s *ReportService) CategoryReport(ctx context.Context, month core.MonthKey) (CategoryReport, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return CategoryReport{}, fmt.Errorf("list categories: %w", err)
	}

	report := CategoryReport{Month: month, Rows: make([]CategoryReportRow, 0, len(categories))}
	for _, c := range categories {
		decision, err := s.evaluator.Evaluate(ctx, c.ID, month, core.Money{})
		if err != nil {
			return CategoryReport{}, fmt.Errorf("evaluate %s: %w", c.Name, err)
		}
		row := CategoryReportRow{
			Category: c.Name,
			Spent:    decision.Spent,
			Level:    decision.Level,
		}
		if decision.Level != budget.LevelNone {
			amount := decision.Budget
			row.Budget = &amount
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// RecentExpenses returns the latest persisted expenses, newest first.
func (s *ReportService) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.store.ListRecentExpenses(ctx, limit)
}
