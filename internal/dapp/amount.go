package dapp

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the token's fixed-point precision.
const Decimals = 18

// maxAmountDigits is the decimal length of the largest uint256.
const maxAmountDigits = 78

var errInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a human amount such as "12.5" to base units.
// Negative amounts, amounts finer than 10^-18 and amounts that do not fit
// a uint256 are rejected.
func ParseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, errInvalidAmount
	}
	if d.IsNegative() {
		return nil, errInvalidAmount
	}
	// Bound the exponent before anything rescales the coefficient.
	exp := int(d.Exponent())
	if exp < -(Decimals+maxAmountDigits) || d.NumDigits()+exp+Decimals > maxAmountDigits {
		return nil, errInvalidAmount
	}
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errInvalidAmount
	}
	v := scaled.BigInt()
	if v.BitLen() > 256 {
		return nil, errInvalidAmount
	}
	return v, nil
}

// FormatAmount renders base units as whole tokens, always with at least one
// fractional digit: 1000e18 → "1000.0", 125e17 → "12.5".
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(v, -Decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
