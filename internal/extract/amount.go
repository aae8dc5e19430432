package extract

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrNoDigits is returned when a would-be amount contains nothing numeric.
// Callers treat it as "field absent", never as a fatal failure.
var ErrNoDigits = errors.New("amount contains no digits")

// NormalizeAmount parses a free-text monetary substring like "$1,234.56" or
// "550 USD". Every rune except digits and the decimal point is discarded, so
// currency symbols and thousands separators carry no meaning: "$1,234" and
// "1234" normalize identically.
func NormalizeAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	if !strings.ContainsAny(cleaned, "0123456789") {
		return decimal.Decimal{}, errors.Wrapf(ErrNoDigits, "normalize %q", text)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "normalize %q", text)
	}
	return d, nil
}
