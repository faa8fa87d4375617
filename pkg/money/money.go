// Package money converts between settlement amounts and their display form.
//
// Settlement always happens in integral base units (wei for an 18-decimal currency),
// carried as decimal.Decimal so large balances never overflow and fee arithmetic stays
// exact. Fractional "ether" strings exist only at the presentation edge.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for malformed, negative, or fractional base-unit amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// MaxDigits is the precision of the NUMERIC(78,0) columns amounts are stored in.
const MaxDigits = 78

// MaxAmount is the largest storable amount of base units.
var MaxAmount = decimal.New(1, MaxDigits).Sub(decimal.New(1, 0))

// plainDecimal admits positional notation only. Exponent forms such as "1e50000000"
// are rejected before decimal sees them.
var plainDecimal = regexp.MustCompile(`^-?[0-9]{1,78}(\.[0-9]{1,78})?$`)

// Currency describes how base units are displayed.
type Currency struct {
	Symbol   string
	Decimals int32
}

// ParseAmount parses a plain decimal string of at most MaxDigits integer and
// fractional digits. Sign and scale are left to the caller.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(s))
	}
	return d, nil
}

// CheckRange rejects amounts whose integer part has more than MaxDigits digits.
// It counts digits instead of comparing, since a comparison rescales the operand
// and costs time proportional to its exponent.
func CheckRange(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	if int64(d.NumDigits())+int64(d.Exponent()) > MaxDigits {
		return fmt.Errorf("%w: more than %d digits", ErrInvalidAmount, MaxDigits)
	}
	return nil
}

// ParseBaseUnits parses an integral, non-negative amount of base units.
func ParseBaseUnits(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsInteger() || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q must be a non-negative whole number of base units", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseUnits converts a display amount such as "2.02" into base units.
// More fractional digits than the currency supports is an error, never a rounding.
func (c Currency) ParseUnits(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	units := d.Shift(c.Decimals)
	if !units.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, c.Decimals)
	}
	if err := CheckRange(units); err != nil {
		return decimal.Zero, err
	}
	return units.Truncate(0), nil
}

// MustParseUnits is ParseUnits for fixtures; it panics on bad input.
func (c Currency) MustParseUnits(s string) decimal.Decimal {
	d, err := c.ParseUnits(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatUnits renders base units in display form without trailing zeros ("2.02").
func (c Currency) FormatUnits(units decimal.Decimal) string {
	return units.Shift(-c.Decimals).String()
}

// Format renders base units with the currency symbol ("2.02 ETH").
func (c Currency) Format(units decimal.Decimal) string {
	if c.Symbol == "" {
		return c.FormatUnits(units)
	}
	return c.FormatUnits(units) + " " + c.Symbol
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
