package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

type createExpenseRequest struct {
	User        string      `json:"user"`
	CategoryID  int64       `json:"category_id"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Note        string      `json:"note"`
	SharedGroup string      `json:"shared_group"`
}

type createExpenseResponse struct {
	ID       int64  `json:"id"`
	Level    string `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
	Month    string `json:"month,omitempty"`
}

type reportRowResponse struct {
	Category    string `json:"category"`
	SpentCents  int64  `json:"spent_cents"`
	BudgetCents *int64 `json:"budget_cents"`
	Level       string `json:"level"`
}

type reportResponse struct {
	Month string              `json:"month"`
	Rows  []reportRowResponse `json:"rows"`
}

type monthTotalResponse struct {
	Month      string `json:"month"`
	TotalCents int64  `json:"total_cents"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createExpenseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := services.NewExpense{
		UserName:     sanitizeInput(req.User),
		CategoryID:   req.CategoryID,
		CategoryName: sanitizeInput(req.Category),
		Note:         sanitizeInput(req.Note),
		SharedGroup:  sanitizeInput(req.SharedGroup),
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	in.Amount = core.Money{Cents: cents}

	if v := strings.TrimSpace(req.Date); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
			return
		}
		in.Date = date
	}

	result, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "API expense creation failed", "error", err)
			writeJSONError(w, status, "internal error")
			return
		}
		writeJSONError(w, status, err.Error())
		return
	}

	s.reportCache.Delete(expenseMonth(in).String())

	resp := createExpenseResponse{ID: result.ExpenseID}
	if result.Decision.Level != "" {
		resp.Level = string(result.Decision.Level)
		resp.Category = result.Decision.Category
		resp.Month = result.Decision.Month.String()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month, err := parseMonthParam(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid month, want YYYY-MM")
		return
	}

	report, err := s.categoryReport(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "API category report failed", "error", err, "month", month.String())
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := reportResponse{Month: report.Month.String(), Rows: make([]reportRowResponse, 0, len(report.Rows))}
	for _, row := range report.Rows {
		out := reportRowResponse{
			Category:   row.Category,
			SpentCents: row.Spent.Cents,
			Level:      string(row.Level),
		}
		if row.Budget != nil {
			cents := row.Budget.Cents
			out.BudgetCents = &cents
		}
		resp.Rows = append(resp.Rows, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPITotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	totals, err := s.reports.MonthlyTotals(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "API month totals failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]monthTotalResponse, 0, len(totals))
	for _, mt := range totals {
		resp = append(resp, monthTotalResponse{Month: mt.Month.String(), TotalCents: mt.Total.Cents})
	}
	writeJSON(w, http.StatusOK, resp)
}
