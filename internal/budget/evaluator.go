package budget

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Evaluator combines the aggregator and resolver into the decision
// policy. It only reads the ledger; decisions are returned to the caller
// and never persisted.
type Evaluator struct {
	aggregator *Aggregator
	resolver   *Resolver
	categories ledger.CategoryReader
}

// NewEvaluator wires an evaluator over the given store ports.
func NewEvaluator(spend ledger.SpendReader, budgets ledger.BudgetReader, categories ledger.CategoryReader) *Evaluator {
	return &Evaluator{
		aggregator: NewAggregator(spend),
		resolver:   NewResolver(budgets),
		categories: categories,
	}
}

// Evaluate classifies the category's month. Absent budgets and zero spend
// are valid states, never errors; only malformed input (negative pending,
// unknown category) fails, and that failure is the caller's to see.
//
// The thresholds are division free and budget scaled: exceeded when
// total > budget, low when remaining*10 <= budget (10% or less left,
// remaining 0 included), so a zero budget flips to exceeded on the first
// positive cent without any divide-by-zero risk.
func (e *Evaluator) Evaluate(ctx context.Context, categoryID int64, month core.MonthKey, pending core.Money) (Decision, error) {
	category, err := e.categories.FindCategory(ctx, categoryID)
	if err != nil {
		return Decision{}, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return Decision{}, fmt.Errorf("category %d: %w", categoryID, core.ErrUnknownCategory)
	}

	total, err := e.aggregator.TotalSpent(ctx, categoryID, month, pending)
	if err != nil {
		return Decision{}, err
	}

	governing, err := e.resolver.Resolve(ctx, categoryID, month)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Category: category.Name,
		Month:    month,
		Spent:    total,
	}
	if governing == nil {
		d.Level = LevelNone
		return d, nil
	}

	d.Budget = governing.Amount
	switch {
	case total.Cents > governing.Amount.Cents:
		d.Level = LevelExceeded
	default:
		d.Remaining = governing.Amount.Sub(total)
		if d.Remaining.Cents*10 <= governing.Amount.Cents {
			d.Level = LevelLow
		} else {
			d.Level = LevelOK
		}
	}
	return d, nil
}
