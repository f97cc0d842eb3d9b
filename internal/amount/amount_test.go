package amount

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
)

func TestToRaw(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"0.2", 9, "200000000"},
		{"1", 9, "1000000000"},
		{"1.5", 6, "1500000"},
		{"0.000001", 6, "1"},
		{"123", 0, "123"},
		{".5", 9, "500000000"},
		{"7.", 6, "7000000"},
		{"0", 9, "0"},
		// excess fractional digits truncate, never round
		{"0.1234567899", 6, "123456"},
	}
	for _, tc := range cases {
		got, err := ToRaw(tc.in, tc.decimals)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestToRawRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", ".", "abc", "1.2.3", "-1", "1e9", " ", "0x10", "1,5"} {
		_, err := ToRaw(in, 9)
		require.Error(t, err, in)
		assert.Equal(t, apperror.CodeInvalidAmount, apperror.CodeOf(err), in)
	}
}

func TestFromRaw(t *testing.T) {
	cases := []struct {
		raw      string
		decimals int
		want     string
	}{
		{"200000000", 9, "0.2"},
		{"1000000000", 9, "1"},
		{"1500000", 6, "1.5"},
		{"1", 6, "0.000001"},
		{"123", 0, "123"},
		{"0", 9, "0"},
	}
	for _, tc := range cases {
		raw, ok := new(big.Int).SetString(tc.raw, 10)
		require.True(t, ok)
		assert.Equal(t, tc.want, FromRaw(raw, tc.decimals), tc.raw)
	}
}

func TestRoundTrip(t *testing.T) {
	// FromRaw(ToRaw(s)) equals s modulo trailing-zero normalization.
	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"0.2", 9, "0.2"},
		{"0.200", 9, "0.2"},
		{"1.000000", 6, "1"},
		{"42.0001", 6, "42.0001"},
		{"0.000000001", 9, "0.000000001"},
	}
	for _, tc := range cases {
		raw, err := ToRaw(tc.in, tc.decimals)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FromRaw(raw, tc.decimals), tc.in)
	}
}

func TestPriceImpactTierBoundaries(t *testing.T) {
	// The boundary value belongs to the next tier up (strict less-than).
	cases := map[string]string{
		"0.0286": "0.05",
		"0.99":   "0.05",
		"1":      "0.1",
		"9.99":   "0.1",
		"10":     "0.3",
		"100":    "0.5",
		"1000":   "1.0",
		"50000":  "1.0",
	}
	for in, want := range cases {
		size := decimal.RequireFromString(in)
		assert.Equal(t, want, PriceImpactTier(size), in)
	}
}
