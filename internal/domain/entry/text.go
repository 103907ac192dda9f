package entry

import (
	"errors"
	"strings"
)

// ErrTextFormat is returned for chat messages that are not
// "Item, Amount, Payment_Type[, Category]".
var ErrTextFormat = errors.New("expected: Item, Amount, Payment_Type[, Category]")

// ParseExpenseText splits a chat message into a quick expense. Amounts in this
// format cannot carry thousands separators since the comma delimits fields.
func ParseExpenseText(text string) (QuickExpense, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return QuickExpense{}, ErrTextFormat
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	q := QuickExpense{
		Item:        parts[0],
		Amount:      parts[1],
		PaymentMode: parts[2],
	}
	if len(parts) == 4 {
		q.Category = parts[3]
	}
	return q, nil
}
