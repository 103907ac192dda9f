package main

import (
	"log"
	"net/http"

	httphandlers "spendlog/internal/interfaces/http"
	"spendlog/internal/shared/config"
	"spendlog/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", httphandlers.HandleEntryPage)
	mux.HandleFunc("GET /records", httphandlers.HandleRecordsPage)
	mux.HandleFunc("GET /dashboard", httphandlers.HandleDashboard)

	// Health check
	mux.HandleFunc("GET /health", httphandlers.HandleHealth)

	// Entry submission
	mux.HandleFunc("POST /add", deps.EntryHandler.HandleAdd)

	// Records
	mux.HandleFunc("GET /api/expenses", deps.EntryHandler.HandleListExpenses)
	mux.HandleFunc("GET /api/income", deps.EntryHandler.HandleListIncome)
	mux.HandleFunc("PUT /api/expenses/{id}", deps.EntryHandler.HandleUpdateExpense)
	mux.HandleFunc("PUT /api/income/{id}", deps.EntryHandler.HandleUpdateIncome)
	mux.HandleFunc("DELETE /api/expenses/{id}", deps.EntryHandler.HandleDeleteExpense)
	mux.HandleFunc("DELETE /api/income/{id}", deps.EntryHandler.HandleDeleteIncome)

	// Reports
	mux.HandleFunc("GET /api/summary", deps.ExportHandler.HandleSummary)
	mux.HandleFunc("GET /export/csv/{kind}", deps.ExportHandler.HandleCSV)
	mux.HandleFunc("GET /export/pdf/{kind}", deps.ExportHandler.HandlePDF)

	// Payslips
	mux.HandleFunc("GET /uploads/{name}", deps.UploadHandler.HandleUpload)

	// Apply global middleware
	var handler http.Handler = middleware.SecurityHeaders(middleware.Router(mux))
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	handler = middleware.Logging(middleware.Tracing(handler))

	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
