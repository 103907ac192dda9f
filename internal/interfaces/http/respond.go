package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"spendlog/internal/domain/entry"
	"spendlog/internal/domain/export"
)

type successResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count,omitempty"`
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Kind    entry.PersistKind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	var ve *entry.ValidationError
	var pe *entry.ParseError
	switch {
	case errors.As(err, &ve), errors.As(err, &pe),
		errors.Is(err, export.ErrInvalidFilter), errors.Is(err, export.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, entry.ErrExpenseNotFound), errors.Is(err, entry.ErrIncomeNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON failure. Client errors carry their full
// message. Store failures only expose a generic message and their kind; the
// underlying driver error is logged.
func respondError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		writeFailure(w, status, err.Error())
		return
	}

	var se *entry.PersistError
	if errors.As(err, &se) {
		log.Printf("Error %s: %v: %v", op, se, se.Err)
		writeJSON(w, status, errorResponse{Error: se.Error(), Kind: se.Kind})
		return
	}

	log.Printf("Error %s: %v", op, err)
	writeJSON(w, status, errorResponse{Error: "internal error", Kind: entry.KindStoreError})
}
