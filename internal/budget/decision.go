// Package budget implements the evaluation engine: spend aggregation,
// budget resolution, and the decision policy that drives alerting.
package budget

import (
	"fmt"

	"expensetracker/internal/core"
)

// Level classifies the state of a category's month against its budget.
type Level string

const (
	// LevelNone means no budget is configured; budgets are optional and
	// this never alerts.
	LevelNone Level = "none"
	// LevelOK means spend is comfortably inside the budget.
	LevelOK Level = "ok"
	// LevelLow means 10% or less of the budget remains. Spending the
	// budget exactly (remaining 0) lands here, not in exceeded.
	LevelLow Level = "low"
	// LevelExceeded means spend is strictly above the budget.
	LevelExceeded Level = "exceeded"
)

// Decision is the outcome of one evaluation. Decisions are ephemeral:
// they are handed to the alert path and never persisted.
type Decision struct {
	Level     Level
	Category  string
	Month     core.MonthKey
	Spent     core.Money
	Budget    core.Money
	Remaining core.Money
}

// Alert reports whether the decision must be dispatched.
func (d Decision) Alert() bool {
	return d.Level == LevelLow || d.Level == LevelExceeded
}

// Subject renders the alert subject line.
func (d Decision) Subject() string {
	switch d.Level {
	case LevelExceeded:
		return "Budget Exceeded: " + d.Category
	case LevelLow:
		return "Low Budget Remaining: " + d.Category
	default:
		return ""
	}
}

// Body renders the alert body.
func (d Decision) Body() string {
	switch d.Level {
	case LevelExceeded:
		return fmt.Sprintf("You have exceeded your budget for %s.\nSpent: %s\nBudget: %s",
			d.Month, d.Spent, d.Budget)
	case LevelLow:
		return fmt.Sprintf("Only %s left from budget %s for %s.",
			d.Remaining, d.Budget, d.Month)
	default:
		return ""
	}
}
