package amount

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
)

// ToRaw converts a human decimal string into integer base units for a token
// with the given decimal precision. Arbitrary precision throughout; excess
// fractional digits are truncated, never rounded.
func ToRaw(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || decimals < 0 {
		return nil, apperror.Newf(apperror.CodeInvalidAmount, "invalid amount: %q", s)
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, apperror.Newf(apperror.CodeInvalidAmount, "invalid amount: %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, apperror.Newf(apperror.CodeInvalidAmount, "invalid amount: %q", s)
	}

	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	raw, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, apperror.Newf(apperror.CodeInvalidAmount, "invalid amount: %q", s)
	}
	return raw, nil
}

// FromRaw converts integer base units back into a human decimal string,
// stripping trailing zeros and collapsing to an integer string when the
// fractional part is zero.
func FromRaw(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	s := raw.String()
	if decimals <= 0 {
		return s
	}

	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// Tier boundaries for the static price-impact ladder. The boundary value
// itself belongs to the next tier up (strict less-than).
var impactTiers = []struct {
	below decimal.Decimal
	label string
}{
	{decimal.NewFromInt(1), "0.05"},
	{decimal.NewFromInt(10), "0.1"},
	{decimal.NewFromInt(100), "0.3"},
	{decimal.NewFromInt(1000), "0.5"},
}

// PriceImpactTier maps a base-denominated trade size onto a coarse impact
// percentage label. A static ladder, not a depth-weighted model.
func PriceImpactTier(size decimal.Decimal) string {
	for _, t := range impactTiers {
		if size.LessThan(t.below) {
			return t.label
		}
	}
	return "1.0"
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
