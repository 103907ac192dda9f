package entry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrNoRowsProvided = errors.New("no rows provided")
	ErrAllRowsEmpty   = errors.New("all rows are empty")

	ErrExpenseNotFound = errors.New("expense not found")
	ErrIncomeNotFound  = errors.New("income not found")
)

// Field labels reported back to the user when a required value is missing.
const (
	LabelItem         = "Item"
	LabelCategory     = "Category"
	LabelAmount       = "Amount"
	LabelPaymentMode  = "Payment Mode"
	LabelCardType     = "Card Type"
	LabelBankName     = "Bank Name"
	LabelUPIProvider  = "UPI Provider"
	LabelPurchaseDate = "Purchase Date"
	LabelSource       = "Source"
	LabelIncomeDate   = "Income Date"
)

// RowError lists the missing fields of one bulk row. Row is the 1-based
// position of the row as submitted, blank rows included.
type RowError struct {
	Row     int
	Missing []string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: missing %s", e.Row, strings.Join(e.Missing, ", "))
}

// ValidationError reports every missing field of a submission at once.
// Reason is set for whole-batch problems such as ErrAllRowsEmpty.
type ValidationError struct {
	Missing []string
	Rows    []RowError
	Reason  error
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Reason != nil {
		parts = append(parts, e.Reason.Error())
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	for _, r := range e.Rows {
		parts = append(parts, r.Error())
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// ParseError is returned when a present value cannot be converted. Row is 0
// for single submissions.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistKind classifies store failures.
type PersistKind string

const (
	KindStoreUnavailable    PersistKind = "store_unavailable"
	KindConstraintViolation PersistKind = "constraint_violation"
	KindStoreError          PersistKind = "store_error"
)

// PersistError wraps a store failure. Nothing of the batch it belongs to was
// committed. Row is the 1-based record of the batch that failed, when known.
type PersistError struct {
	Kind PersistKind
	Row  int
	Err  error
}

func (e *PersistError) Error() string {
	msg := "failed to save entries"
	switch e.Kind {
	case KindStoreUnavailable:
		msg = "storage is unavailable"
	case KindConstraintViolation:
		msg = "entry rejected by storage"
	}
	if e.Row > 0 {
		msg = fmt.Sprintf("%s (record %d)", msg, e.Row)
	}
	return msg
}

func (e *PersistError) Unwrap() error { return e.Err }

// asPersistError makes sure store failures leave the service as *PersistError.
func asPersistError(err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistError{Kind: KindStoreError, Err: err}
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing}
}
