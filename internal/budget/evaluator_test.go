package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger/memory"
)

func newEvaluator(t *testing.T) (*Evaluator, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded()
	return NewEvaluator(store, store, store), store
}

func addExpense(t *testing.T, store *memory.Store, categoryID, cents int64, date core.Date) {
	t.Helper()
	if _, err := store.CreateExpense(context.Background(), core.Expense{
		UserID:     1,
		CategoryID: categoryID,
		Amount:     core.Money{Cents: cents},
		Date:       date,
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}
}

func setBudget(t *testing.T, store *memory.Store, categoryID, cents int64, month *core.MonthKey) {
	t.Helper()
	if _, err := store.UpsertBudget(context.Background(), categoryID, core.Money{Cents: cents}, month); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
}

func TestEvaluateNoBudgetNeverAlerts(t *testing.T) {
	ctx := context.Background()
	ev, store := newEvaluator(t)
	may := core.NewMonthKey(2024, time.May)

	// Heavy spend, no budget configured anywhere.
	addExpense(t, store, 1, 1_000_000, core.NewDate(2024, 5, 10))

	d, err := ev.Evaluate(ctx, 1, may, core.Money{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelNone {
		t.Fatalf("level = %q, want none", d.Level)
	}
	if d.Alert() {
		t.Fatal("no-budget decision must never alert")
	}
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	may := core.NewMonthKey(2024, time.May)
	cases := []struct {
		name       string
		spentCents int64
		want       Level
	}{
		{"well inside", 5000, LevelOK},
		{"just under threshold", 8999, LevelOK},
		{"exactly 10 percent left", 9000, LevelLow},
		{"spent to the cent", 10000, LevelLow},
		{"one cent over", 10001, LevelExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			ev, store := newEvaluator(t)
			setBudget(t, store, 1, 10000, nil) // budget 100.00
			addExpense(t, store, 1, tc.spentCents, core.NewDate(2024, 5, 3))

			d, err := ev.Evaluate(ctx, 1, may, core.Money{})
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if d.Level != tc.want {
				t.Fatalf("spent %d: level = %q, want %q", tc.spentCents, d.Level, tc.want)
			}
		})
	}
}

func TestEvaluateExactBudgetIsLowWithZeroRemaining(t *testing.T) {
	ctx := context.Background()
	ev, store := newEvaluator(t)
	may := core.NewMonthKey(2024, time.May)
	setBudget(t, store, 1, 20000, nil)
	addExpense(t, store, 1, 5000, core.NewDate(2024, 5, 2))
	addExpense(t, store, 1, 15000, core.NewDate(2024, 5, 20))

	d, err := ev.Evaluate(ctx, 1, may, core.Money{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelLow {
		t.Fatalf("level = %q, want low", d.Level)
	}
	if d.Remaining.Cents != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining.Cents)
	}
}

func TestEvaluatePendingAmount(t *testing.T) {
	ctx := context.Background()
	ev, store := newEvaluator(t)
	may := core.NewMonthKey(2024, time.May)
	setBudget(t, store, 1, 20000, nil) // standing 200.00, no expenses yet

	// Evaluate as if a 50.00 expense existed: total 50.00, OK.
	d, err := ev.Evaluate(ctx, 1, may, core.Money{Cents: 5000})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelOK || d.Spent.Cents != 5000 {
		t.Fatalf("got level %q spent %d, want ok/5000", d.Level, d.Spent.Cents)
	}

	// Commit 50.00, then a pending 150.00 brings the total to the budget.
	addExpense(t, store, 1, 5000, core.NewDate(2024, 5, 4))
	d, err = ev.Evaluate(ctx, 1, may, core.Money{Cents: 15000})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelLow || d.Remaining.Cents != 0 {
		t.Fatalf("got level %q remaining %d, want low/0", d.Level, d.Remaining.Cents)
	}
}

func TestEvaluateMonthSpecificOverridesStanding(t *testing.T) {
	ctx := context.Background()
	ev, store := newEvaluator(t)
	june := core.NewMonthKey(2024, time.June)

	// Transport: standing 500.00, June-specific 50.00. A 60.00 June total
	// must be judged against 50.00, not 500.00.
	transport := int64(2)
	setBudget(t, store, transport, 50000, nil)
	setBudget(t, store, transport, 5000, &june)
	addExpense(t, store, transport, 6000, core.NewDate(2024, 6, 8))

	d, err := ev.Evaluate(ctx, transport, june, core.Money{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelExceeded {
		t.Fatalf("level = %q, want exceeded", d.Level)
	}
	if d.Budget.Cents != 5000 {
		t.Fatalf("governing budget = %d, want 5000", d.Budget.Cents)
	}
}

func TestEvaluateZeroBudget(t *testing.T) {
	ctx := context.Background()
	ev, store := newEvaluator(t)
	may := core.NewMonthKey(2024, time.May)
	setBudget(t, store, 1, 0, nil)
	addExpense(t, store, 1, 1, core.NewDate(2024, 5, 1)) // 0.01

	d, err := ev.Evaluate(ctx, 1, may, core.Money{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Level != LevelExceeded {
		t.Fatalf("level = %q, want exceeded", d.Level)
	}
}

func TestEvaluateUnknownCategory(t *testing.T) {
	ctx := context.Background()
	ev, _ := newEvaluator(t)

	_, err := ev.Evaluate(ctx, 999, core.NewMonthKey(2024, time.May), core.Money{})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("got %v, want ErrUnknownCategory", err)
	}
}

func TestEvaluateNegativePending(t *testing.T) {
	ctx := context.Background()
	ev, _ := newEvaluator(t)

	_, err := ev.Evaluate(ctx, 1, core.NewMonthKey(2024, time.May), core.Money{Cents: -1})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
}

func TestDecisionSubjectAndBody(t *testing.T) {
	may := core.NewMonthKey(2024, time.May)
	exceeded := Decision{
		Level:    LevelExceeded,
		Category: "Food",
		Month:    may,
		Spent:    core.Money{Cents: 21050},
		Budget:   core.Money{Cents: 20000},
	}
	if exceeded.Subject() != "Budget Exceeded: Food" {
		t.Fatalf("subject = %q", exceeded.Subject())
	}
	wantBody := "You have exceeded your budget for 2024-05.\nSpent: 210.50\nBudget: 200.00"
	if exceeded.Body() != wantBody {
		t.Fatalf("body = %q, want %q", exceeded.Body(), wantBody)
	}

	low := Decision{
		Level:     LevelLow,
		Category:  "Food",
		Month:     may,
		Spent:     core.Money{Cents: 19000},
		Budget:    core.Money{Cents: 20000},
		Remaining: core.Money{Cents: 1000},
	}
	if low.Subject() != "Low Budget Remaining: Food" {
		t.Fatalf("subject = %q", low.Subject())
	}
	if low.Body() != "Only 10.00 left from budget 200.00 for 2024-05." {
		t.Fatalf("body = %q", low.Body())
	}

	ok := Decision{Level: LevelOK}
	if ok.Alert() || ok.Subject() != "" || ok.Body() != "" {
		t.Fatal("ok decisions carry no alert text")
	}
}
