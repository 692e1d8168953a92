package amqp

import (
	"testing"
	"time"

	"expensetracker/internal/budget"
	"expensetracker/internal/core"
)

func TestBudgetAlertMessageRoundTrip(t *testing.T) {
	d := budget.Decision{
		Level:     budget.LevelExceeded,
		Category:  "Transport",
		Month:     core.NewMonthKey(2024, time.June),
		Spent:     core.Money{Cents: 6000},
		Budget:    core.Money{Cents: 5000},
		Remaining: core.Money{},
	}

	data, err := NewBudgetAlertMessage(d).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := BudgetAlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	back, err := msg.Decision()
	if err != nil {
		t.Fatalf("decision: %v", err)
	}
	if back.Level != d.Level || back.Category != d.Category || !back.Month.Equal(d.Month) {
		t.Fatalf("decision mismatch: %+v != %+v", back, d)
	}
	if back.Spent != d.Spent || back.Budget != d.Budget || back.Remaining != d.Remaining {
		t.Fatalf("amounts mismatch: %+v != %+v", back, d)
	}
	if back.Subject() != "Budget Exceeded: Transport" {
		t.Fatalf("subject = %q", back.Subject())
	}
}

func TestBudgetAlertMessageBadPayloads(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("malformed JSON should fail")
	}
	msg := &BudgetAlertMessage{Level: "low", Category: "Food", Month: "notamonth"}
	if _, err := msg.Decision(); err == nil {
		t.Fatal("bad month key should fail")
	}
}
