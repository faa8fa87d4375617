// Package identity holds the account address type shared by every bounded context
// and the request-scoped caller carried through context.
package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAddress is returned when a string is not a 0x-prefixed 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrReservedAddress is returned when a caller claims an account only the ledger may act as.
	ErrReservedAddress = errors.New("address is reserved")
)

const addressHexLength = 40

// Address identifies an account, an asset contract, or the ledger's custody account.
// Addresses are stored in lowercase so equality is a plain string comparison.
type Address string

// ParseAddress normalizes s into an Address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) != addressHexLength+2 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if _, err := hex.DecodeString(s[2:]); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address("0x" + strings.ToLower(s[2:])), nil
}

// MustParseAddress is ParseAddress for constants and tests; it panics on bad input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the underlying string value.
func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ""
}
