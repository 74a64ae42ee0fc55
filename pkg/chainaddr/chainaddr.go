// Package chainaddr validates and canonicalizes chain object/account addresses
// before they are allowed anywhere near a query predicate or a transaction
// argument list.
package chainaddr

import (
	"strings"

	"bountyboard/pkg/errutil"
)

// Address is a canonicalized chain address: "0x" followed by exactly 64
// lowercase hex digits. The zero value is not a valid address.
type Address string

const hexDigits = "0123456789abcdef"

// Parse validates raw and returns its canonical form: lowercase, left-padded
// to 64 hex digits. This mirrors how the indexing pipeline standardizes
// addresses before writing mirror rows, so parsed addresses compare equal to
// stored columns. Anything that is not "0x" + 1..64 hex digits fails with an
// invalid-filter error.
func Parse(raw string) (Address, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(s, "0x") {
		return "", errutil.InvalidFilter("address must start with 0x", errutil.WithDetails(errutil.Detail{Field: "address", Message: raw}))
	}

	digits := s[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return "", errutil.InvalidFilter("address must be 1..64 hex digits", errutil.WithDetails(errutil.Detail{Field: "address", Message: raw}))
	}
	for _, c := range digits {
		if !strings.ContainsRune(hexDigits, c) {
			return "", errutil.InvalidFilter("address contains non-hex characters", errutil.WithDetails(errutil.Detail{Field: "address", Message: raw}))
		}
	}

	return Address("0x" + strings.Repeat("0", 64-len(digits)) + digits), nil
}

// MustParse is for constants known valid at compile time.
func MustParse(raw string) Address {
	addr, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return string(a)
}

// Short returns the truncated display form "0x1234...abcd".
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
