package http

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path"

	"spendlog/internal/infrastructure/uploads"
	"spendlog/internal/web"
)

// HandleHealth returns a simple health check response.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// HandleEntryPage serves the entry form.
func HandleEntryPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, web.EntryPage)
}

// HandleRecordsPage serves the editable records table.
func HandleRecordsPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, web.RecordsPage)
}

// HandleDashboard serves the dashboard page.
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, web.DashboardPage)
}

type UploadHandler struct {
	files uploads.Opener
}

func NewUploadHandler(files uploads.Opener) *UploadHandler {
	return &UploadHandler{files: files}
}

// HandleUpload streams a stored payslip back by its key.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rc, err := h.files.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) || errors.Is(err, uploads.ErrInvalidKey) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Error opening upload %q: %v", name, err)
		http.Error(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "inline")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error streaming upload %q: %v", name, err)
	}
}
