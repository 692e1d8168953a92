package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/budget"
	"expensetracker/internal/core"
)

// BudgetAlertMessage is the wire form of an alerting decision. It carries
// everything the alert worker needs to rebuild the subject and body, so
// the worker never has to read the ledger.
type BudgetAlertMessage struct {
	Level          string    `json:"level"`
	Category       string    `json:"category"`
	Month          string    `json:"month"`
	SpentCents     int64     `json:"spent_cents"`
	BudgetCents    int64     `json:"budget_cents"`
	RemainingCents int64     `json:"remaining_cents"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage converts a decision into its wire form.
func NewBudgetAlertMessage(d budget.Decision) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Level:          string(d.Level),
		Category:       d.Category,
		Month:          d.Month.String(),
		SpentCents:     d.Spent.Cents,
		BudgetCents:    d.Budget.Cents,
		RemainingCents: d.Remaining.Cents,
		Timestamp:      time.Now(),
	}
}

// Decision rebuilds the decision the message was created from.
func (m *BudgetAlertMessage) Decision() (budget.Decision, error) {
	month, err := core.ParseMonthKey(m.Month)
	if err != nil {
		return budget.Decision{}, err
	}
	return budget.Decision{
		Level:     budget.Level(m.Level),
		Category:  m.Category,
		Month:     month,
		Spent:     core.Money{Cents: m.SpentCents},
		Budget:    core.Money{Cents: m.BudgetCents},
		Remaining: core.Money{Cents: m.RemainingCents},
	}, nil
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
