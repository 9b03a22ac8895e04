/**
 * @description
 * Money handling for the wallet-service. All balances and amounts are carried
 * internally as Kobo, an int64 count of minor currency units, so that ledger
 * arithmetic is exact. The API boundary accepts and renders decimal values
 * with at most two fractional digits; shopspring/decimal does the conversion
 * without ever routing the value through a float.
 */

package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kobo is a monetary value in minor currency units (1/100 of the major unit).
type Kobo int64

// maxAmountKobo mirrors the decimal(10,2) column bound: 99,999,999.99.
const maxAmountKobo = Kobo(9_999_999_999)

var (
	ErrInvalidAmount = errors.New("invalid amount")

	hundred = decimal.NewFromInt(100)
)

// ParseAmount converts a client-supplied decimal string into Kobo.
// It rejects non-numeric input, zero and negative values, more than two
// fractional digits, and values that exceed the decimal(10,2) column bound.
func ParseAmount(raw string) (Kobo, error) {
	amount, err := parseKobo(raw)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func parseKobo(raw string) (Kobo, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: more than two fractional digits", ErrInvalidAmount)
	}
	if !cents.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	amount := Kobo(cents.IntPart())
	if amount > maxAmountKobo || amount < -maxAmountKobo {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// String renders the value as an exact two-digit decimal, e.g. 30000 -> "300.00".
func (k Kobo) String() string {
	return decimal.New(int64(k), -2).StringFixed(2)
}

// MarshalJSON renders the value as a quoted two-digit decimal string so that
// clients never see a binary-float approximation of a balance.
func (k Kobo) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (k *Kobo) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := parseKobo(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
