package http

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

type expenseRow struct {
	Date     string
	Category string
	Amount   string
	Note     string
	Shared   string
}

type totalRow struct {
	Month string
	Total string
}

type budgetRow struct {
	Category string
	Amount   string
	Month    string
}

type reportRow struct {
	Category string
	Spent    string
	Budget   string
	Level    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Category list error", "error", err)
	}
	names := categoryNames(categories)

	var recent []expenseRow
	if expenses, err := s.reports.RecentExpenses(ctx, 10); err != nil {
		slog.ErrorContext(ctx, "Recent expenses error", "error", err)
	} else {
		for _, e := range expenses {
			recent = append(recent, expenseRow{
				Date:     e.Date.String(),
				Category: names[e.CategoryID],
				Amount:   formatAmount(e.Amount),
				Note:     e.Note,
				Shared:   e.SharedGroup,
			})
		}
	}

	var totals []totalRow
	if monthTotals, err := s.reports.MonthlyTotals(ctx); err != nil {
		slog.ErrorContext(ctx, "Month totals error", "error", err)
	} else {
		for _, mt := range monthTotals {
			totals = append(totals, totalRow{Month: mt.Month.String(), Total: formatAmount(mt.Total)})
		}
	}

	data := struct {
		Today         string
		Categories    []core.Category
		Recent        []expenseRow
		Totals        []totalRow
		AlertLevel    string
		AlertCategory string
	}{
		Today:         core.Today().String(),
		Categories:    categories,
		Recent:        recent,
		Totals:        totals,
		AlertLevel:    sanitizeInput(r.URL.Query().Get("alert")),
		AlertCategory: sanitizeInput(r.URL.Query().Get("category")),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(ctx, "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		http.Error(w, "invalid request format", http.StatusBadRequest)
		return
	}

	in, err := parseExpenseForm(r.Form)
	if err != nil {
		s.renderError(w, r, err, "Expense form rejected")
		return
	}

	result, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		s.renderError(w, r, err, "Expense creation failed")
		return
	}

	s.reportCache.Delete(expenseMonth(in).String())

	target := "/"
	if result.Decision.Alert() {
		target = "/?alert=" + string(result.Decision.Level) +
			"&category=" + template.URLQueryEscaper(result.Decision.Category)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBudgets(w, r)
	case http.MethodPost:
		s.handleSetBudget(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderBudgets(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Category list error", "error", err)
	}
	names := categoryNames(categories)

	var rows []budgetRow
	if budgets, err := s.budgets.ListBudgets(ctx); err != nil {
		slog.ErrorContext(ctx, "Budget list error", "error", err)
	} else {
		for _, b := range budgets {
			row := budgetRow{
				Category: names[b.CategoryID],
				Amount:   formatAmount(b.Amount),
				Month:    "standing",
			}
			if b.Month != nil {
				row.Month = b.Month.String()
			}
			rows = append(rows, row)
		}
	}

	data := struct {
		Categories []core.Category
		Budgets    []budgetRow
	}{Categories: categories, Budgets: rows}

	if err := s.templates.ExecuteTemplate(w, "budgets.html", data); err != nil {
		slog.ErrorContext(ctx, "Budgets template execution failed", "error", err, "template", "budgets.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request format", http.StatusBadRequest)
		return
	}

	in, err := parseBudgetForm(r.Form)
	if err != nil {
		s.renderError(w, r, err, "Budget form rejected")
		return
	}

	if _, err := s.budgets.SetBudget(r.Context(), in.CategoryID, in.Amount, in.Month); err != nil {
		s.renderError(w, r, err, "Budget update failed")
		return
	}

	// A standing budget governs every month without an override, so the
	// whole report cache is stale.
	if in.Month != nil {
		s.reportCache.Delete(in.Month.String())
	} else {
		s.reportCache.Clear()
	}

	http.Redirect(w, r, "/budgets", http.StatusSeeOther)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	month, err := parseMonthParam(r.URL.Query())
	if err != nil {
		s.renderError(w, r, err, "Report month rejected")
		return
	}

	report, err := s.categoryReport(r.Context(), month)
	if err != nil {
		s.renderError(w, r, err, "Category report failed")
		return
	}

	var rows []reportRow
	for _, row := range report.Rows {
		out := reportRow{
			Category: row.Category,
			Spent:    formatAmount(row.Spent),
			Budget:   "-",
			Level:    string(row.Level),
		}
		if row.Budget != nil {
			out.Budget = formatAmount(*row.Budget)
		}
		rows = append(rows, out)
	}

	var totals []totalRow
	if monthTotals, err := s.reports.MonthlyTotals(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Month totals error", "error", err)
	} else {
		for _, mt := range monthTotals {
			totals = append(totals, totalRow{Month: mt.Month.String(), Total: formatAmount(mt.Total)})
		}
	}

	data := struct {
		Month  string
		Rows   []reportRow
		Totals []totalRow
	}{Month: month.String(), Rows: rows, Totals: totals}

	if err := s.templates.ExecuteTemplate(w, "reports.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Reports template execution failed", "error", err, "template", "reports.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// categoryReport serves report lookups through the TTL cache.
func (s *Server) categoryReport(ctx context.Context, month core.MonthKey) (services.CategoryReport, error) {
	key := month.String()
	if report, found := s.reportCache.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", "month", key)
		return report, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	report, err := s.reports.CategoryReport(cctx, month)
	if err != nil {
		return services.CategoryReport{}, err
	}

	s.reportCache.Set(key, report)
	return report, nil
}

func categoryNames(categories []core.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// expenseMonth is the month the submission lands in, used for cache
// invalidation before the decision is known.
func expenseMonth(in services.NewExpense) core.MonthKey {
	if in.Date.IsZero() {
		return core.MonthKeyOf(time.Now())
	}
	return core.MonthKeyOf(in.Date.Time)
}
