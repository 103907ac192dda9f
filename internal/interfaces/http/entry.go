package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/domain/entry"
	"spendlog/internal/shared/telemetry"
)

// EntryService is the subset of entry.Service the handlers call.
type EntryService interface {
	SubmitSingleExpense(ctx context.Context, f entry.ExpenseForm) (*entry.Expense, error)
	SubmitBulkExpenses(ctx context.Context, f entry.BulkExpenseForm) ([]*entry.Expense, error)
	SubmitIncome(ctx context.Context, f entry.IncomeForm) (*entry.Income, error)
	ListExpenses(ctx context.Context) ([]*entry.Expense, error)
	ListIncome(ctx context.Context) ([]*entry.Income, error)
	UpdateExpense(ctx context.Context, id int64, u entry.ExpenseUpdate) error
	UpdateIncome(ctx context.Context, id int64, u entry.IncomeUpdate) error
	DeleteExpense(ctx context.Context, id int64) error
	DeleteIncome(ctx context.Context, id int64) error
}

type EntryHandler struct {
	svc EntryService
	loc *time.Location
	// baseURL prefixes payslip links; empty derives it from the request.
	baseURL   string
	maxUpload int64
}

func NewEntryHandler(svc EntryService, loc *time.Location, baseURL string, maxUploadBytes int64) *EntryHandler {
	return &EntryHandler{svc: svc, loc: loc, baseURL: baseURL, maxUpload: maxUploadBytes}
}

// HandleAdd accepts the entry form as multipart/form-data or
// application/x-www-form-urlencoded and dispatches on entryType and entryMode.
func (h *EntryHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := parseEntryForm(r, h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, "submission is too large")
			return
		}
		log.Printf("Error parsing entry form: %v", err)
		writeFailure(w, http.StatusBadRequest, "invalid form submission")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	form := r.PostForm
	entryType := strings.ToLower(valueOr(form.Get("entryType"), "expense"))
	entryMode := strings.ToLower(valueOr(form.Get("entryMode"), "single"))

	var (
		count int
		err   error
	)
	switch {
	case entryType == "income":
		entryMode = "single"
		count, err = h.addIncome(r)
	case entryType == "expense" && entryMode == "bulk":
		count, err = h.addBulk(r.Context(), form)
	case entryType == "expense" && entryMode == "single":
		count, err = h.addSingle(r.Context(), form)
	default:
		writeFailure(w, http.StatusBadRequest, "unknown entry type or mode")
		return
	}

	if err != nil {
		outcome := telemetry.OutcomeFailed
		if statusFor(err) < http.StatusInternalServerError {
			outcome = telemetry.OutcomeRejected
		}
		telemetry.RecordSubmission(r.Context(), entryType, entryMode, outcome, 0)
		respondError(w, "adding "+entryType, err)
		return
	}

	telemetry.RecordSubmission(r.Context(), entryType, entryMode, telemetry.OutcomeOK, count)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Count: count})
}

func parseEntryForm(r *http.Request, maxMemory int64) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

func (h *EntryHandler) addSingle(ctx context.Context, form url.Values) (int, error) {
	_, err := h.svc.SubmitSingleExpense(ctx, entry.ExpenseForm{
		Item:         form.Get("item"),
		Category:     form.Get("category"),
		Amount:       form.Get("amount"),
		PaymentMode:  form.Get("paymentMode"),
		PurchaseDate: form.Get("purchaseDate"),
		Remarks:      form.Get("remarks"),
		Payment: entry.PaymentInputs{
			CardType:     form.Get("cardType"),
			CardBankName: form.Get("cardBankName"),
			UPIProvider:  form.Get("upiProvider"),
			UPIBankName:  form.Get("upiBankName"),
			UPICardType:  form.Get("upiCardType"),
		},
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (h *EntryHandler) addBulk(ctx context.Context, form url.Values) (int, error) {
	expenses, err := h.svc.SubmitBulkExpenses(ctx, entry.BulkExpenseForm{
		PaymentMode:  form.Get("bulkPaymentMode"),
		PurchaseDate: form.Get("bulkPurchaseDate"),
		Payment: entry.PaymentInputs{
			CardType:     form.Get("bulkCardType"),
			CardBankName: form.Get("bulkCardBankName"),
			UPIProvider:  form.Get("bulkUpiProvider"),
			UPIBankName:  form.Get("bulkUpiBankName"),
			UPICardType:  form.Get("bulkUpiCardType"),
		},
		Rows: entry.BulkRowsFromColumns(
			form["bulkItem[]"],
			form["bulkCategory[]"],
			form["bulkAmount[]"],
			form["bulkRemarks[]"],
		),
	})
	if err != nil {
		return 0, err
	}
	return len(expenses), nil
}

func (h *EntryHandler) addIncome(r *http.Request) (int, error) {
	form := entry.IncomeForm{
		Source:     r.PostForm.Get("incomeSource"),
		Amount:     r.PostForm.Get("incomeAmount"),
		IncomeDate: r.PostForm.Get("incomeDate"),
	}

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("payslip")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return 0, &entry.ValidationError{Reason: err}
		default:
			defer file.Close()
			if header.Filename != "" {
				form.Payslip = &entry.Upload{
					Filename: header.Filename,
					Content:  file,
					BaseURL:  h.publicBase(r),
				}
			}
		}
	}

	if _, err := h.svc.SubmitIncome(r.Context(), form); err != nil {
		return 0, err
	}
	return 1, nil
}

// publicBase is the origin payslip links point at.
func (h *EntryHandler) publicBase(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *EntryHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context())
	if err != nil {
		respondError(w, "listing expenses", err)
		return
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		response = append(response, toExpenseResponse(e, h.loc))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *EntryHandler) HandleListIncome(w http.ResponseWriter, r *http.Request) {
	income, err := h.svc.ListIncome(r.Context())
	if err != nil {
		respondError(w, "listing income", err)
		return
	}

	response := make([]IncomeResponse, 0, len(income))
	for _, inc := range income {
		response = append(response, toIncomeResponse(inc, h.loc))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *EntryHandler) HandleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateExpense(r.Context(), id, req.toUpdate()); err != nil {
		respondError(w, "updating expense "+strconv.FormatInt(id, 10), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *EntryHandler) HandleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateIncome(r.Context(), id, req.toUpdate()); err != nil {
		respondError(w, "updating income "+strconv.FormatInt(id, 10), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *EntryHandler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		respondError(w, "deleting expense "+strconv.FormatInt(id, 10), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *EntryHandler) HandleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteIncome(r.Context(), id); err != nil {
		respondError(w, "deleting income "+strconv.FormatInt(id, 10), err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// pathID reads the {id} wildcard. Non-numeric ids cannot name a record and
// get 404, like an unknown route.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusNotFound, "Record not found")
		return 0, false
	}
	return id, true
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
