package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func seedForExport(t *testing.T, s *testServer) {
	t.Helper()
	for _, v := range []url.Values{
		{"item": {"rent"}, "category": {"bills"}, "amount": {"20,000"}, "paymentMode": {"Cash"}, "purchaseDate": {"2024-03-01"}},
		{"item": {"dinner"}, "category": {"food"}, "amount": {"1500"}, "paymentMode": {"Card"}, "cardType": {"credit"}, "cardBankName": {"hdfc"}, "purchaseDate": {"2024-03-09"}},
		{"item": {"flight"}, "category": {"travel"}, "amount": {"8000"}, "paymentMode": {"Cash"}, "purchaseDate": {"2024-02-20"}},
		{"entryType": {"income"}, "incomeSource": {"salary"}, "incomeAmount": {"50000"}, "incomeDate": {"2024-03-01"}},
	} {
		if rr := s.postForm(v); rr.Code != http.StatusOK {
			t.Fatalf("seed failed: %s", rr.Body.String())
		}
	}
}

func TestHandleCSV_Filtered(t *testing.T) {
	s := newTestServer(t)
	seedForExport(t, s)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/export/csv/expenses?month=3&year=2024", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Expenses_2024_March.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rr.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q", got)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2 rows", len(records))
	}
	if records[1][1] != "Rent" || records[2][1] != "Dinner" {
		t.Errorf("rows = %v, want oldest first", records[1:])
	}
	if records[1][3] != "20000.00" {
		t.Errorf("amount = %q, want 20000.00", records[1][3])
	}
}

func TestHandleCSV_AllData(t *testing.T) {
	s := newTestServer(t)
	seedForExport(t, s)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/export/csv/income", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Income_All_Data.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(rr.Body.String(), "Salary,50000.00") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestHandleExport_BadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"invalid month", "/export/csv/expenses?month=13", http.StatusBadRequest},
		{"invalid year", "/export/pdf/income?year=-1", http.StatusBadRequest},
		{"unknown kind", "/export/csv/budgets", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if rr.Header().Get("Content-Disposition") != "" {
				t.Error("failed export must not be served as an attachment")
			}
		})
	}
}

func TestHandlePDF(t *testing.T) {
	s := newTestServer(t)
	seedForExport(t, s)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/export/pdf/expenses?year=2024", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Expenses_2024_AllMonths.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "%PDF-") {
		t.Error("body is not a PDF document")
	}
}

func TestHandleSummary(t *testing.T) {
	s := newTestServer(t)
	seedForExport(t, s)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/api/summary?month=3&year=2024", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var got SummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalExpenses != "21500.00" || got.TotalIncome != "50000.00" || got.Net != "28500.00" {
		t.Errorf("totals = %s / %s / %s", got.TotalExpenses, got.TotalIncome, got.Net)
	}
	if got.SavingsRate != "57.0" {
		t.Errorf("SavingsRate = %s, want 57.0", got.SavingsRate)
	}
	if got.ExpenseCount != 2 || got.IncomeCount != 1 {
		t.Errorf("counts = %d / %d", got.ExpenseCount, got.IncomeCount)
	}
	if len(got.ByCategory) != 2 || got.ByCategory[0].Label != "Bills" {
		t.Errorf("ByCategory = %+v", got.ByCategory)
	}
	if len(got.ByPayment) != 2 || got.ByPayment[1].Label != "Credit Card - Hdfc" {
		t.Errorf("ByPayment = %+v", got.ByPayment)
	}

	rr = s.do(httptest.NewRequest(http.MethodGet, "/api/summary?month=oops", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid filter status = %d, want 400", rr.Code)
	}
}

// brokenConn accepts headers but fails every body write, like a client that
// hung up mid-download.
type brokenConn struct{ *httptest.ResponseRecorder }

func (brokenConn) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandleCSV_LogsWriteFailure(t *testing.T) {
	s := newTestServer(t)
	seedForExport(t, s)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	w := brokenConn{httptest.NewRecorder()}
	s.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/csv/expenses", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(logs.String(), "Error writing Expenses csv export: connection reset") {
		t.Errorf("log = %q", logs.String())
	}
}
