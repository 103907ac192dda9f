package entry

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Normalize trims surrounding whitespace and upper-cases the first character,
// leaving the rest untouched. Empty input yields "".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// NormalizeOrNone is Normalize for nullable columns: empty input yields nil.
func NormalizeOrNone(s string) *string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return &n
}

// amountPattern is the accepted amount shape: plain digits with an optional
// sign and at most two decimals, sized to fit a NUMERIC(14,2) column.
var amountPattern = regexp.MustCompile(`^[+-]?(\d{1,12}(\.\d{0,2})?|\.\d{1,2})$`)

// ParseAmount strips thousands separators and whitespace and parses the rest
// as a base-10 decimal. Exponents, more than 12 integer digits and more than
// two decimals fail with ErrInvalidAmount, as does empty input.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := cleanAmount(s)
	if !amountPattern.MatchString(cleaned) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func cleanAmount(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}
