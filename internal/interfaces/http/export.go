package http

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"spendlog/internal/domain/export"
)

type ExportHandler struct {
	entries export.Source
	now     func() time.Time
}

func NewExportHandler(entries export.Source, now func() time.Time) *ExportHandler {
	return &ExportHandler{entries: entries, now: now}
}

// HandleSummary returns the dashboard totals for ?month=&year=.
func (h *ExportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFilter(r.URL.Query().Get("month"), r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, "summarizing", err)
		return
	}

	expenses, err := h.entries.ListExpenses(r.Context())
	if err != nil {
		respondError(w, "summarizing expenses", err)
		return
	}
	income, err := h.entries.ListIncome(r.Context())
	if err != nil {
		respondError(w, "summarizing income", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(export.Summarize(f, expenses, income)))
}

func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.FormatCSV, "text/csv; charset=utf-8")
}

func (h *ExportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.FormatPDF, "application/pdf")
}

// serveExport renders the whole document before writing any header so a
// failure still produces a JSON error rather than a truncated download.
func (h *ExportHandler) serveExport(w http.ResponseWriter, r *http.Request, ext, contentType string) {
	kind, err := export.ParseKind(r.PathValue("kind"))
	if err != nil {
		respondError(w, "exporting", err)
		return
	}
	f, err := export.ParseFilter(r.URL.Query().Get("month"), r.URL.Query().Get("year"))
	if err != nil {
		respondError(w, "exporting", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(r.Context(), h.entries, &buf, kind, f, ext, h.now()); err != nil {
		respondError(w, fmt.Sprintf("exporting %s as %s", kind, ext), err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename(kind, ext)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing %s %s export: %v", kind, ext, err)
	}
}
