package core

import (
	"errors"
	"strings"
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		UserID:     1,
		CategoryID: 1,
		Amount:     Money{Cents: 1250},
		Date:       NewDate(2024, 5, 12),
		Note:       "groceries",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -5} }, ErrInvalidAmount},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"missing category", func(e *Expense) { e.CategoryID = 0 }, ErrUnknownCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	long := valid
	long.Note = strings.Repeat("x", 501)
	if err := long.Validate(); err == nil {
		t.Fatal("overlong note should be rejected")
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{CategoryID: 1, Amount: Money{Cents: 5000}}).Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
	// A zero budget is storable; the evaluator handles it without division.
	if err := (Budget{CategoryID: 1, Amount: Money{}}).Validate(); err != nil {
		t.Fatalf("zero budget rejected: %v", err)
	}
	if err := (Budget{CategoryID: 1, Amount: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatal("negative budget should be rejected")
	}
	if err := (Budget{Amount: Money{Cents: 100}}).Validate(); !errors.Is(err, ErrUnknownCategory) {
		t.Fatal("budget without category should be rejected")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-31")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-05-31" {
		t.Fatalf("got %q", d.String())
	}
	for _, bad := range []string{"", "31-05-2024", "2024-05-32", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) should fail with ErrInvalidDate, got %v", bad, err)
		}
	}
}
