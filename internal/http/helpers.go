package http

import (
	"errors"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
)

// formatAmount renders money for page templates.
func formatAmount(m core.Money) string {
	return "€" + m.String()
}

// statusForError maps domain failures to HTTP statuses. Unknown
// categories are a lookup miss, validation failures are unprocessable
// input, anything else is a server fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownCategory), errors.Is(err, core.ErrUnknownUser):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonthKey),
		errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), msg, "error", err, "url", r.URL.Path)
	} else {
		slog.WarnContext(r.Context(), msg, "error", err, "url", r.URL.Path, "status", status)
	}
	http.Error(w, err.Error(), status)
}
