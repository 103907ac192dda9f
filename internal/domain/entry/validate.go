package entry

import "strings"

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isBlankAmount treats a value made only of separators and whitespace as absent.
func isBlankAmount(s string) bool {
	return cleanAmount(s) == ""
}

func appendIfBlank(missing []string, value, label string) []string {
	if isBlank(value) {
		return append(missing, label)
	}
	return missing
}

// ValidateSingleExpense returns the labels of every missing required field in
// reporting order, or nil when the form is complete.
func ValidateSingleExpense(f ExpenseForm) []string {
	var missing []string
	missing = appendIfBlank(missing, f.Item, LabelItem)
	missing = appendIfBlank(missing, f.Category, LabelCategory)
	if isBlankAmount(f.Amount) {
		missing = append(missing, LabelAmount)
	}
	missing = appendIfBlank(missing, f.PaymentMode, LabelPaymentMode)
	return append(missing, requiredPaymentFields(Normalize(f.PaymentMode), f.Payment)...)
}

// ValidateBulkExpenses checks the shared fields once and every non-blank row,
// collecting all problems into one *ValidationError.
func ValidateBulkExpenses(f BulkExpenseForm) error {
	var missing []string
	missing = appendIfBlank(missing, f.PaymentMode, LabelPaymentMode)
	missing = append(missing, requiredPaymentFields(Normalize(f.PaymentMode), f.Payment)...)

	if len(f.Rows) == 0 {
		return &ValidationError{Missing: missing, Reason: ErrNoRowsProvided}
	}

	var (
		rowErrs []RowError
		filled  int
	)
	for i, row := range f.Rows {
		if row.blank() {
			continue
		}
		filled++
		var rowMissing []string
		rowMissing = appendIfBlank(rowMissing, row.Item, LabelItem)
		rowMissing = appendIfBlank(rowMissing, row.Category, LabelCategory)
		if isBlankAmount(row.Amount) {
			rowMissing = append(rowMissing, LabelAmount)
		}
		if len(rowMissing) > 0 {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Missing: rowMissing})
		}
	}

	var reason error
	if filled == 0 {
		reason = ErrAllRowsEmpty
	}
	if reason == nil && len(missing) == 0 && len(rowErrs) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing, Rows: rowErrs, Reason: reason}
}

func ValidateIncome(f IncomeForm) []string {
	var missing []string
	missing = appendIfBlank(missing, f.Source, LabelSource)
	if isBlankAmount(f.Amount) {
		missing = append(missing, LabelAmount)
	}
	return missing
}

// ValidateExpenseUpdate applies the single-expense rules to an edit. A blank
// payment mode means Cash and is not reported.
func ValidateExpenseUpdate(u ExpenseUpdate) []string {
	var missing []string
	missing = appendIfBlank(missing, u.Item, LabelItem)
	if isBlankAmount(u.Amount) {
		missing = append(missing, LabelAmount)
	}
	return append(missing, requiredPaymentFields(updateMode(u), u.paymentInputs())...)
}

func ValidateIncomeUpdate(u IncomeUpdate) []string {
	return ValidateIncome(IncomeForm{Source: u.Source, Amount: u.Amount})
}

// ValidateQuickExpense requires item, amount and payment mode. Category falls
// back to DefaultCategory.
func ValidateQuickExpense(q QuickExpense) []string {
	var missing []string
	missing = appendIfBlank(missing, q.Item, LabelItem)
	if isBlankAmount(q.Amount) {
		missing = append(missing, LabelAmount)
	}
	return appendIfBlank(missing, q.PaymentMode, LabelPaymentMode)
}

func updateMode(u ExpenseUpdate) string {
	if mode := Normalize(u.PaymentMode); mode != "" {
		return mode
	}
	return ModeCash
}

// paymentInputs maps the flat edit fields onto both the card and the UPI
// slots so ResolvePayment still decides which ones survive.
func (u ExpenseUpdate) paymentInputs() PaymentInputs {
	return PaymentInputs{
		CardType:     u.CardType,
		CardBankName: u.BankName,
		UPIProvider:  u.UPIProvider,
		UPIBankName:  u.BankName,
		UPICardType:  u.CardType,
	}
}
