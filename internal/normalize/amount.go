// Package normalize turns raw invoice field text of unknown locale
// convention into typed values: monetary amounts and calendar dates.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountParseError reports a string that could not be read as a
// monetary amount.
type AmountParseError struct {
	Raw   string
	Cause error
}

func (e *AmountParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot parse amount %q: %v", e.Raw, e.Cause)
	}
	return fmt.Sprintf("cannot parse amount %q: no digits found", e.Raw)
}

func (e *AmountParseError) Unwrap() error {
	return e.Cause
}

var currencySymbols = strings.NewReplacer(
	"€", "", "$", "", "£", "", "¥", "", "₹", "",
)

// ParseAmount parses a numeric string of unknown locale convention into
// a signed decimal. The rightmost of "," and "." is treated as the
// decimal separator when it is followed by 1-2 digits; every other
// separator occurrence is a digit-group separator and is dropped.
// Handles both "1.234,56" and "1,234.56". Sign is preserved; rejecting
// negatives is a validation concern, not a parsing one.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := currencySymbols.Replace(raw)
	cleaned = strings.Join(strings.Fields(cleaned), "")
	cleaned = strings.Trim(cleaned, ":=")

	if !strings.ContainsAny(cleaned, "0123456789") {
		return decimal.Zero, &AmountParseError{Raw: raw}
	}

	sepIdx := strings.LastIndexAny(cleaned, ",.")
	decimalSep := -1
	if sepIdx >= 0 {
		if n := len(cleaned) - sepIdx - 1; n >= 1 && n <= 2 && digitsOnly(cleaned[sepIdx+1:]) {
			decimalSep = sepIdx
		}
	}

	var b strings.Builder
	b.Grow(len(cleaned))
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case i == decimalSep:
			b.WriteByte('.')
		case c == ',' || c == '.':
			// group separator
		default:
			b.WriteByte(c)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, &AmountParseError{Raw: raw, Cause: err}
	}
	return d, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// NormalizeCurrency maps currency symbols to ISO codes and upper-cases
// bare codes.
func NormalizeCurrency(raw string) string {
	switch strings.TrimSpace(raw) {
	case "€":
		return "EUR"
	case "$":
		return "USD"
	case "£":
		return "GBP"
	case "¥":
		return "JPY"
	case "₹":
		return "INR"
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}
