// Package worker runs the out-of-process side of alerting: it consumes
// published budget alerts and mails them, and periodically exports the
// current month's category report to a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/alert"
	"expensetracker/internal/amqp"
	"expensetracker/internal/budget"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/sheets"
)

// AlertConsumer is the part of the AMQP client the worker drives.
// Narrowed to an interface so tests can run without a broker.
type AlertConsumer interface {
	ConsumeBudgetAlerts(ctx context.Context, handler func(context.Context, *amqp.BudgetAlertMessage) error) error
}

type AlertWorker struct {
	mailer  alert.Dispatcher
	reports *services.ReportService
	sheets  sheets.ReportWriter
}

// NewAlertWorker wires mail dispatch and optional report export. A nil
// sheets writer disables export; mail dispatch is mandatory.
func NewAlertWorker(mailer alert.Dispatcher, reports *services.ReportService, sheetsWriter sheets.ReportWriter) *AlertWorker {
	return &AlertWorker{
		mailer:  mailer,
		reports: reports,
		sheets:  sheetsWriter,
	}
}

// HandleAlertMessage mails one consumed alert. Non-alerting levels are
// acknowledged without action; a malformed month is an error so the
// broker rejects the payload.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	decision, err := msg.Decision()
	if err != nil {
		return fmt.Errorf("rebuild decision: %w", err)
	}

	if !decision.Alert() {
		slog.InfoContext(ctx, "Skipping non-alerting message",
			"level", msg.Level,
			"category", msg.Category,
			"month", msg.Month)
		return nil
	}

	if err := w.mailer.Dispatch(ctx, decision.Subject(), decision.Body()); err != nil {
		return fmt.Errorf("dispatch alert mail: %w", err)
	}

	slog.InfoContext(ctx, "Alert mail dispatched",
		"level", msg.Level,
		"category", msg.Category,
		"month", msg.Month)
	return nil
}

// ExportCurrentReport appends the current month's category report to the
// configured spreadsheet. No-op when export is not configured.
func (w *AlertWorker) ExportCurrentReport(ctx context.Context) error {
	if w.sheets == nil {
		return nil
	}

	month := core.MonthKeyOf(time.Now())
	report, err := w.reports.CategoryReport(ctx, month)
	if err != nil {
		return fmt.Errorf("build category report: %w", err)
	}
	if !hasActivity(report) {
		slog.InfoContext(ctx, "Skipping report export, no activity", "month", month.String())
		return nil
	}

	if err := w.sheets.AppendReport(ctx, report); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// Run consumes alerts and exports reports until the context ends. Export
// failures are logged and retried on the next tick; a consumer failure
// stops the worker.
func (w *AlertWorker) Run(ctx context.Context, consumer AlertConsumer, exportInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeBudgetAlerts(ctx, w.HandleAlertMessage)
	})

	g.Go(func() error {
		if w.sheets == nil {
			<-ctx.Done()
			return ctx.Err()
		}
		ticker := time.NewTicker(exportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ExportCurrentReport(ctx); err != nil {
					slog.ErrorContext(ctx, "Report export failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func hasActivity(report services.CategoryReport) bool {
	for _, row := range report.Rows {
		if row.Spent.Cents > 0 || row.Level != budget.LevelNone {
			return true
		}
	}
	return false
}
