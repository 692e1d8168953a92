package core

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// MonthKey identifies a calendar month. Its string form "YYYY-MM" is
// stable and sortable and is the value stored in the database, so month
// matching for aggregation and budget resolution is an exact string
// comparison.
type MonthKey struct {
	year  int
	month time.Month
}

// NewMonthKey returns the key for the given year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey{year: year, month: month}
}

// MonthKeyOf returns the key for the month t falls in.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{year: t.Year(), month: t.Month()}
}

// ParseMonthKey parses a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, ErrInvalidMonthKey
	}
	return MonthKeyOf(t), nil
}

// String returns the key formatted as "YYYY-MM".
func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

func (m MonthKey) Year() int { return m.year }

func (m MonthKey) Month() time.Month { return m.month }

// IsZero reports whether m is the zero key.
func (m MonthKey) IsZero() bool {
	return m.year == 0 && m.month == 0
}

// Equal reports whether m and n name the same month.
func (m MonthKey) Equal(n MonthKey) bool {
	return m.year == n.year && m.month == n.month
}

// Contains reports whether the time instant falls in the month.
func (m MonthKey) Contains(t time.Time) bool {
	return t.Year() == m.year && t.Month() == m.month
}

// MarshalJSON implements json.Marshaler, emitting the "YYYY-MM" form.
func (m MonthKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MonthKey) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}
	parsed, err := ParseMonthKey(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner, reading the stored "YYYY-MM" string.
func (m *MonthKey) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = MonthKey{}
		return nil
	case string:
		parsed, err := ParseMonthKey(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		return m.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MonthKey", value)
	}
}

// Value implements driver.Valuer, writing the "YYYY-MM" string.
func (m MonthKey) Value() (driver.Value, error) {
	return m.String(), nil
}
