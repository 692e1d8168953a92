package budget

import (
	"context"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// Aggregator totals a category's spend for one month.
type Aggregator struct {
	spend ledger.SpendReader
}

func NewAggregator(spend ledger.SpendReader) *Aggregator {
	return &Aggregator{spend: spend}
}

// TotalSpent returns the persisted total for (category, month) plus
// pending. Pending lets a caller evaluate as if a not-yet-committed
// expense existed, avoiding a read-after-write round trip. A month with
// no expenses totals exactly zero; that is a valid state, not an error.
func (a *Aggregator) TotalSpent(ctx context.Context, categoryID int64, month core.MonthKey, pending core.Money) (core.Money, error) {
	if pending.Cents < 0 {
		return core.Money{}, fmt.Errorf("pending amount: %w", core.ErrInvalidAmount)
	}
	total, err := a.spend.SumExpenses(ctx, categoryID, month)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return total.Add(pending), nil
}
