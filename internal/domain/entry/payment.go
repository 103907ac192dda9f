package entry

// Payment modes that carry detail fields. Any other mode (Cash included)
// stores no payment detail at all.
const (
	ModeCash = "Cash"
	ModeCard = "Card"
	ModeUPI  = "UPI"
)

// PaymentInputs holds the raw, mode-specific form values. Which of them are
// read depends on the payment mode.
type PaymentInputs struct {
	CardType     string
	CardBankName string
	UPIProvider  string
	UPIBankName  string
	UPICardType  string
}

// PaymentDetail is the resolved, nullable payment detail of an expense.
type PaymentDetail struct {
	CardType    *string
	BankName    *string
	UPIProvider *string
}

// ResolvePayment picks the detail fields that apply to mode. mode must already
// be normalized.
//
//	Card: card type and bank from the card inputs, no UPI provider
//	UPI:  provider, bank and backing card type from the UPI inputs
//	else: nothing
func ResolvePayment(mode string, in PaymentInputs) PaymentDetail {
	switch mode {
	case ModeCard:
		return PaymentDetail{
			CardType: NormalizeOrNone(in.CardType),
			BankName: NormalizeOrNone(in.CardBankName),
		}
	case ModeUPI:
		return PaymentDetail{
			CardType:    NormalizeOrNone(in.UPICardType),
			BankName:    NormalizeOrNone(in.UPIBankName),
			UPIProvider: NormalizeOrNone(in.UPIProvider),
		}
	default:
		return PaymentDetail{}
	}
}

// requiredPaymentFields lists the missing detail labels for mode.
func requiredPaymentFields(mode string, in PaymentInputs) []string {
	var missing []string
	switch mode {
	case ModeCard:
		missing = appendIfBlank(missing, in.CardType, LabelCardType)
		missing = appendIfBlank(missing, in.CardBankName, LabelBankName)
	case ModeUPI:
		missing = appendIfBlank(missing, in.UPIProvider, LabelUPIProvider)
		missing = appendIfBlank(missing, in.UPIBankName, LabelBankName)
		missing = appendIfBlank(missing, in.UPICardType, LabelCardType)
	}
	return missing
}
