// Package memory is the in-process ledger backend. It is the default
// backend when no database is configured and the fixture store for engine
// and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

type Store struct {
	mu         sync.Mutex
	nextID     int64
	users      []core.User
	categories []core.Category
	budgets    []core.Budget
	expenses   []core.Expense
}

var _ ledger.Store = (*Store)(nil)

// New returns an empty store seeded with the given category names.
func New(categories ...string) *Store {
	s := &Store{nextID: 1}
	for _, name := range dedupe(categories) {
		s.categories = append(s.categories, core.Category{ID: s.nextID, Name: name})
		s.nextID++
	}
	return s
}

// NewSeeded returns a store with the default category set and user, the
// same seed the SQLite migrations apply.
func NewSeeded() *Store {
	s := New("Food", "Transport", "Entertainment", "Utilities", "Groceries")
	s.users = append(s.users, core.User{ID: s.nextID, Name: "Default"})
	s.nextID++
	return s
}

func (s *Store) SumExpenses(_ context.Context, categoryID int64, month core.MonthKey) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, e := range s.expenses {
		if e.CategoryID == categoryID && e.MonthKey().Equal(month) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s *Store) FindBudget(_ context.Context, categoryID int64, month *core.MonthKey) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		b := s.budgets[i]
		if b.CategoryID != categoryID {
			continue
		}
		if month == nil && b.Month == nil {
			out := b
			return &out, nil
		}
		if month != nil && b.Month != nil && b.Month.Equal(*month) {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) FindCategory(_ context.Context, id int64) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) FindCategoryByName(_ context.Context, name string) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FindOrCreateUser(_ context.Context, name string) (*core.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			out := u
			return &out, nil
		}
	}
	u := core.User{ID: s.nextID, Name: name}
	s.nextID++
	s.users = append(s.users, u)
	out := u
	return &out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) UpsertBudget(_ context.Context, categoryID int64, amount core.Money, month *core.MonthKey) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		b := &s.budgets[i]
		if b.CategoryID != categoryID {
			continue
		}
		if (month == nil) != (b.Month == nil) {
			continue
		}
		if month != nil && !b.Month.Equal(*month) {
			continue
		}
		b.Amount = amount
		out := *b
		return &out, nil
	}
	b := core.Budget{ID: s.nextID, CategoryID: categoryID, Amount: amount}
	s.nextID++
	if month != nil {
		m := *month
		b.Month = &m
	}
	s.budgets = append(s.budgets, b)
	out := b
	return &out, nil
}

func (s *Store) MonthTotals(_ context.Context) ([]ledger.MonthTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := map[string]*ledger.MonthTotal{}
	for _, e := range s.expenses {
		key := e.MonthKey()
		row, ok := byMonth[key.String()]
		if !ok {
			row = &ledger.MonthTotal{Month: key}
			byMonth[key.String()] = row
		}
		row.Total = row.Total.Add(e.Amount)
	}
	out := make([]ledger.MonthTotal, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.String() < out[j].Month.String() })
	return out, nil
}

func (s *Store) ListRecentExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.expenses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Budget(nil), s.budgets...)
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
