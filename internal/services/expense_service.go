// Package services orchestrates the write path: validate, persist,
// evaluate, and hand alerts to the notifier. Validation and not-found
// failures abort before anything is written; evaluation and dispatch
// failures after the committed write are logged, never returned.
package services

import (
	"context"
	"fmt"
	"strings"

	"expensetracker/internal/alert"
	"expensetracker/internal/budget"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

// NewExpense is the validated submission input shared by the form flow
// and the JSON endpoint. Exactly one of CategoryID and CategoryName must
// be set; an empty user falls back to the Default user.
type NewExpense struct {
	UserName     string
	CategoryID   int64
	CategoryName string
	Amount       core.Money
	Date         core.Date
	Note         string
	SharedGroup  string
}

// CreateResult reports the persisted id and the decision the evaluation
// produced. Decision.Level is empty when evaluation itself failed after
// the commit.
type CreateResult struct {
	ExpenseID int64
	Decision  budget.Decision
}

type ExpenseService struct {
	store     ledger.Store
	evaluator *budget.Evaluator
	notifier  *alert.Notifier
	logger    *log.Logger
}

func NewExpenseService(store ledger.Store, notifier *alert.Notifier, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("expense_service")
	}
	return &ExpenseService{
		store:     store,
		evaluator: budget.NewEvaluator(store, store, store),
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateExpense validates and persists the expense, then evaluates the
// category's month and forwards any alerting decision. Both entry points
// (form and JSON) call this identically.
func (s *ExpenseService) CreateExpense(ctx context.Context, in NewExpense) (CreateResult, error) {
	if err := in.Amount.Validate(); err != nil {
		return CreateResult{}, fmt.Errorf("amount: %w", err)
	}
	if in.Date.IsZero() {
		in.Date = core.Today()
	}

	category, err := s.findCategory(ctx, in)
	if err != nil {
		return CreateResult{}, err
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = "Default"
	}
	user, err := s.store.FindOrCreateUser(ctx, userName)
	if err != nil {
		return CreateResult{}, fmt.Errorf("find or create user: %w", err)
	}

	expense := core.Expense{
		UserID:      user.ID,
		CategoryID:  category.ID,
		Amount:      in.Amount,
		Date:        in.Date,
		Note:        strings.TrimSpace(in.Note),
		SharedGroup: strings.TrimSpace(in.SharedGroup),
	}
	if err := expense.Validate(); err != nil {
		return CreateResult{}, err
	}

	id, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create expense: %w", err)
	}

	result := CreateResult{ExpenseID: id}

	// The row is committed; evaluate with pending 0 and never let the
	// alert path fail the request.
	decision, err := s.evaluator.Evaluate(ctx, category.ID, expense.MonthKey(), core.Money{})
	if err != nil {
		s.logger.ErrorContext(ctx, "Budget evaluation failed after commit",
			"error", err,
			"category_id", category.ID,
			"month", expense.MonthKey().String(),
			"expense_id", id)
		return result, nil
	}
	result.Decision = decision

	if decision.Alert() && s.notifier != nil {
		s.notifier.Notify(decision)
	}

	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", id,
		"category", category.Name,
		"amount_cents", expense.Amount.Cents,
		"month", expense.MonthKey().String(),
		"decision", string(decision.Level))

	return result, nil
}

// Preview evaluates a category's month as if pending were already
// committed, without writing anything.
func (s *ExpenseService) Preview(ctx context.Context, categoryID int64, month core.MonthKey, pending core.Money) (budget.Decision, error) {
	return s.evaluator.Evaluate(ctx, categoryID, month, pending)
}

func (s *ExpenseService) findCategory(ctx context.Context, in NewExpense) (*core.Category, error) {
	var (
		category *core.Category
		err      error
	)
	switch {
	case in.CategoryID > 0:
		category, err = s.store.FindCategory(ctx, in.CategoryID)
	case strings.TrimSpace(in.CategoryName) != "":
		category, err = s.store.FindCategoryByName(ctx, strings.TrimSpace(in.CategoryName))
	default:
		return nil, fmt.Errorf("category: %w", core.ErrUnknownCategory)
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", categoryRef(in), core.ErrUnknownCategory)
	}
	return category, nil
}

func categoryRef(in NewExpense) string {
	if in.CategoryID > 0 {
		return fmt.Sprintf("#%d", in.CategoryID)
	}
	return in.CategoryName
}
