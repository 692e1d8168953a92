package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger/memory"
	"expensetracker/internal/services"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded()
	expenses := services.NewExpenseService(store, nil, nil)
	budgets := services.NewBudgetService(store, nil)
	reports := services.NewReportService(store)
	srv := NewServer(":0", expenses, budgets, reports, store)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, store
}

func foodID(t *testing.T, store *memory.Store) int64 {
	t.Helper()
	c, err := store.FindCategoryByName(context.Background(), "Food")
	if err != nil || c == nil {
		t.Fatalf("seeded Food category missing: %v", err)
	}
	return c.ID
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Expense Tracker") {
		t.Fatalf("index body missing heading")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d, want 404", rr.Code)
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv, _ := newTestServer(t)

	// Wrong method
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("category=Food&amount=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Unknown category
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("category=Nonexistent&amount=1.23"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	// Success by category name
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("category=Food&amount=12,50&note=lunch"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestCreateExpenseRedirectsWithAlert(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	id := foodID(t, store)

	if _, err := store.UpsertBudget(ctx, id, core.Money{Cents: 1000}, nil); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("category=Food&amount=20.00&date=2024-05-10"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "alert=exceeded") || !strings.Contains(loc, "category=Food") {
		t.Fatalf("expected exceeded alert redirect, got %q", loc)
	}
}

func TestBudgetsPageAndSet(t *testing.T) {
	srv, store := newTestServer(t)
	id := foodID(t, store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/budgets", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("budgets page status=%d", rr.Code)
	}

	form := "category=" + itoa(id) + "&amount=500.00&month=2024-05"
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/budgets", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rr.Code, rr.Body.String())
	}

	// Invalid month format
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/budgets", strings.NewReader("category="+itoa(id)+"&amount=500.00&month=May"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestReportsPage(t *testing.T) {
	srv, store := newTestServer(t)
	id := foodID(t, store)
	ctx := context.Background()

	if _, err := store.UpsertBudget(ctx, id, core.Money{Cents: 10000}, nil); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	expense := core.Expense{
		UserID:     1,
		CategoryID: id,
		Amount:     core.Money{Cents: 9500},
		Date:       core.NewDate(2024, 5, 10),
	}
	if _, err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports?month=2024-05", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("reports status=%d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "2024-05") || !strings.Contains(body, "low") {
		t.Fatalf("report body missing expected content: %s", body)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/reports?month=bogus", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad month, got %d", rr.Code)
	}
}

func TestAPICreateExpenseAndReport(t *testing.T) {
	srv, store := newTestServer(t)
	id := foodID(t, store)
	ctx := context.Background()

	if _, err := store.UpsertBudget(ctx, id, core.Money{Cents: 1000}, nil); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	body := `{"category":"Food","amount":"15.00","date":"2024-05-10","note":"groceries"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created createExpenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero expense id")
	}
	if created.Level != "exceeded" {
		t.Fatalf("expected exceeded level, got %q", created.Level)
	}
	if created.Month != "2024-05" {
		t.Fatalf("expected month 2024-05, got %q", created.Month)
	}

	// Numeric amounts are accepted too.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"category":"Food","amount":4.5,"date":"2024-05-11"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for numeric amount, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reports?month=2024-05", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("report status=%d", rr.Code)
	}
	var report reportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Month != "2024-05" {
		t.Fatalf("report month = %q", report.Month)
	}
	var food *reportRowResponse
	for i := range report.Rows {
		if report.Rows[i].Category == "Food" {
			food = &report.Rows[i]
		}
	}
	if food == nil {
		t.Fatal("Food row missing from report")
	}
	if food.Level != "exceeded" || food.SpentCents != 1950 {
		t.Fatalf("unexpected Food row: %+v", food)
	}
	if food.BudgetCents == nil || *food.BudgetCents != 1000 {
		t.Fatalf("unexpected Food budget: %+v", food.BudgetCents)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/totals", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("totals status=%d", rr.Code)
	}
	var totals []monthTotalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if len(totals) != 1 || totals[0].Month != "2024-05" || totals[0].TotalCents != 1950 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestAPIBadPayloads(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader("{not json"))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"category":"Food","amount":"-3"}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"category":"Nope","amount":"3.00"}`))
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
