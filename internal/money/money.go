// Package money converts between decimal amounts and integer minor
// units. All arithmetic elsewhere in the service is done in cents, so
// rounding happens exactly once, on the way in.
package money

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid decimal amount")

// ParseCents parses a decimal string ("12", "12.3", "12.345") into
// minor units, rounding half-up at the cent: 12.345 -> 1235,
// -12.345 -> -1235 (away from zero on the .5 boundary).
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}

	var cents int64
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		cents = cents*10 + int64(c-'0')
	}
	cents *= 100

	for i, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		switch i {
		case 0:
			cents += int64(c-'0') * 10
		case 1:
			cents += int64(c - '0')
		case 2:
			// round half-up on the third fractional digit
			if c >= '5' {
				cents++
			}
		}
	}

	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders minor units as a decimal string: 1235 -> "12.35".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
