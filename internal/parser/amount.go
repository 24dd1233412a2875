package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountNoise strips currency symbols, thousands separators and whitespace
// (including the Unicode variants PDF extraction produces).
var amountNoise = strings.NewReplacer(
	"$", "",
	"£", "",
	"€", "",
	",", "",
	" ", "",
	"\u00A0", "", // non-breaking space
)

// ParseAmount converts a captured price like "$1,234.56" or "-$50.00" to a
// decimal, keeping an explicit minus sign.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountNoise.Replace(strings.TrimSpace(s))
	if cleaned == "" || cleaned == "-" {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", s, ErrUnparseableAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", s, ErrUnparseableAmount)
	}
	return d, nil
}

// ApplySign negates the parsed amount when the statement's sign convention
// is reversed. A literal minus on the statement and a reversed convention
// cancel out.
func ApplySign(amount decimal.Decimal, reverse bool) decimal.Decimal {
	if reverse {
		return amount.Neg()
	}
	return amount
}
