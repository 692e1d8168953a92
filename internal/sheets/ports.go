// Package sheets defines the outbound port for spreadsheet report
// export.
package sheets

import (
	"context"

	"expensetracker/internal/services"
)

// ReportWriter appends a month's category report to an external
// spreadsheet. Implementations must be safe to call repeatedly with the
// same month; each export is a new snapshot.
type ReportWriter interface {
	AppendReport(ctx context.Context, report services.CategoryReport) error
}
