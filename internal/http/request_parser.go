package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseMonthParam reads an optional "month" value in YYYY-MM form,
// defaulting to the current month when absent.
func parseMonthParam(values url.Values) (core.MonthKey, error) {
	v := strings.TrimSpace(values.Get("month"))
	if v == "" {
		return core.MonthKeyOf(time.Now()), nil
	}
	return core.ParseMonthKey(v)
}

// parseExpenseForm maps submitted form values to a service input. The
// category may arrive as a numeric id or a name; the amount is a decimal
// string validated through the money parser.
func parseExpenseForm(form url.Values) (services.NewExpense, error) {
	in := services.NewExpense{
		UserName:    sanitizeInput(form.Get("user")),
		Note:        sanitizeInput(form.Get("note")),
		SharedGroup: sanitizeInput(form.Get("shared_group")),
	}

	category := sanitizeInput(form.Get("category"))
	if category == "" {
		return in, fmt.Errorf("category: %w", core.ErrUnknownCategory)
	}
	if id, err := strconv.ParseInt(category, 10, 64); err == nil && id > 0 {
		in.CategoryID = id
	} else {
		in.CategoryName = category
	}

	cents, err := core.ParseDecimalToCents(form.Get("amount"))
	if err != nil {
		return in, fmt.Errorf("amount: %w", err)
	}
	in.Amount = core.Money{Cents: cents}

	if v := strings.TrimSpace(form.Get("date")); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			return in, fmt.Errorf("date: %w", err)
		}
		in.Date = date
	}

	return in, nil
}

// budgetInput is the parsed form for setting a budget. A nil Month
// addresses the category's standing budget.
type budgetInput struct {
	CategoryID int64
	Amount     core.Money
	Month      *core.MonthKey
}

func parseBudgetForm(form url.Values) (budgetInput, error) {
	var in budgetInput

	id, err := strconv.ParseInt(strings.TrimSpace(form.Get("category")), 10, 64)
	if err != nil || id <= 0 {
		return in, fmt.Errorf("category: %w", core.ErrUnknownCategory)
	}
	in.CategoryID = id

	cents, err := core.ParseDecimalToCents(form.Get("amount"))
	if err != nil {
		return in, fmt.Errorf("amount: %w", err)
	}
	in.Amount = core.Money{Cents: cents}

	if v := strings.TrimSpace(form.Get("month")); v != "" {
		month, err := core.ParseMonthKey(v)
		if err != nil {
			return in, fmt.Errorf("month: %w", err)
		}
		in.Month = &month
	}

	return in, nil
}
