package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount of money in minor units.  Amounts are stored as
// integers and rendered as fixed two-decimal strings ("150.00").
type Cents int64

// ErrInvalidAmount is returned by ParseCents for malformed input.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseCents parses a decimal string such as "150" or "150.5" into Cents.
// More than two fractional digits are rejected rather than rounded.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than 2 decimal places", ErrInvalidAmount, s)
	}
	return Cents(shifted.IntPart()), nil
}

// Decimal converts c to a decimal with two fractional digits.
func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// String renders c as "123.45".
func (c Cents) String() string { return c.Decimal().StringFixed(2) }

// Times multiplies c by n.
func (c Cents) Times(n int) Cents { return c * Cents(n) }

// MarshalJSON renders c as a JSON string so no precision is lost on the client.
func (c Cents) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// UnmarshalJSON accepts both "150.00" and 150.00.
func (c *Cents) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
