// Package export selects stored entries by month and year and renders them
// as CSV or PDF documents.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/domain/entry"
)

var (
	ErrInvalidFilter = errors.New("invalid month or year filter")
	ErrUnknownKind   = errors.New("unknown export kind")
)

// Kind names what is being exported and prefixes the derived filename.
type Kind string

const (
	KindExpenses Kind = "Expenses"
	KindIncome   Kind = "Income"
)

// ParseKind accepts the lower-case path form used in URLs and on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expenses", "expense":
		return KindExpenses, nil
	case "income":
		return KindIncome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Filter selects entries by the month and year of their date. A zero Month
// or Year matches every month or year.
type Filter struct {
	Month time.Month
	Year  int
}

// ParseFilter reads the optional query values. Empty and "all" mean no filter.
func ParseFilter(month, year string) (Filter, error) {
	var f Filter
	if m := strings.TrimSpace(month); m != "" && !strings.EqualFold(m, "all") {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			return Filter{}, fmt.Errorf("%w: month %q", ErrInvalidFilter, month)
		}
		f.Month = time.Month(n)
	}
	if y := strings.TrimSpace(year); y != "" && !strings.EqualFold(y, "all") {
		n, err := strconv.Atoi(y)
		if err != nil || n < 1 {
			return Filter{}, fmt.Errorf("%w: year %q", ErrInvalidFilter, year)
		}
		f.Year = n
	}
	return f, nil
}

func (f Filter) IsZero() bool { return f.Month == 0 && f.Year == 0 }

// Match reports whether the civil date d passes the filter.
func (f Filter) Match(d time.Time) bool {
	if f.Month != 0 && d.Month() != f.Month {
		return false
	}
	if f.Year != 0 && d.Year() != f.Year {
		return false
	}
	return true
}

// Filename derives the download name from the filters that were supplied,
// e.g. Expenses_2024_March.csv, Income_AllYears_March.csv or
// Expenses_All_Data.csv.
func (f Filter) Filename(kind Kind, ext string) string {
	if f.IsZero() {
		return fmt.Sprintf("%s_All_Data.%s", kind, ext)
	}
	year := "AllYears"
	if f.Year != 0 {
		year = strconv.Itoa(f.Year)
	}
	month := "AllMonths"
	if f.Month != 0 {
		month = f.Month.String()
	}
	return fmt.Sprintf("%s_%s_%s.%s", kind, year, month, ext)
}

// Title is a human-readable description of the filter for document headings.
func (f Filter) Title(kind Kind) string {
	switch {
	case f.IsZero():
		return fmt.Sprintf("%s - All Data", kind)
	case f.Month == 0:
		return fmt.Sprintf("%s - %d", kind, f.Year)
	case f.Year == 0:
		return fmt.Sprintf("%s - %s (all years)", kind, f.Month)
	}
	return fmt.Sprintf("%s - %s %d", kind, f.Month, f.Year)
}

// FilterExpenses returns the matching expenses oldest first, by purchase date
// then creation time then id.
func FilterExpenses(f Filter, expenses []*entry.Expense) []*entry.Expense {
	out := make([]*entry.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e.PurchaseDate) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return chronological(out[i].PurchaseDate, out[j].PurchaseDate, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

// FilterIncome returns the matching income oldest first.
func FilterIncome(f Filter, income []*entry.Income) []*entry.Income {
	out := make([]*entry.Income, 0, len(income))
	for _, inc := range income {
		if f.Match(inc.IncomeDate) {
			out = append(out, inc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return chronological(out[i].IncomeDate, out[j].IncomeDate, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func chronological(dateA, dateB, createdA, createdB time.Time, idA, idB int64) bool {
	if !dateA.Equal(dateB) {
		return dateA.Before(dateB)
	}
	if !createdA.Equal(createdB) {
		return createdA.Before(createdB)
	}
	return idA < idB
}
