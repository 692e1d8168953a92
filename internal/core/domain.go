package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is created on first expense submission under a new name and
	// never deleted here.
	User struct {
		ID    int64
		Name  string
		Email string
	}

	// Category is a named spending bucket. Categories are seeded by
	// migration and immutable in this scope.
	Category struct {
		ID   int64
		Name string
	}

	// Budget binds an amount to a category. A nil Month denotes a standing
	// budget that applies to every month without its own row. At most one
	// row exists per (category, month) pair, the standing row included.
	Budget struct {
		ID         int64
		CategoryID int64
		Amount     Money
		Month      *MonthKey
	}

	// Expense is immutable once created; there is no edit or delete path.
	Expense struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Amount      Money
		Date        Date
		Note        string
		SharedGroup string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonthKey = errors.New("invalid month key")
	ErrEmptyName       = errors.New("empty name")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownUser     = errors.New("unknown user")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar day in "YYYY-MM-DD" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the day formatted as "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(n Money) Money {
	return Money{Cents: m.Cents + n.Cents}
}

// Sub returns m minus n. The result may be negative.
func (m Money) Sub(n Money) Money {
	return Money{Cents: m.Cents - n.Cents}
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if len(e.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

// MonthKey returns the month the expense falls in, the grouping key for
// both aggregation and budget resolution.
func (e Expense) MonthKey() MonthKey {
	return MonthKeyOf(e.Date.Time)
}
