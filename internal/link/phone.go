package link

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone keeps only the decimal digits of raw. No country code is
// inferred and the length is not checked.
func NormalizePhone(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Plausible reports whether digits parse as a valid international number.
// It is advisory only; callers log it and never block on it.
func Plausible(digits string) bool {
	if digits == "" {
		return false
	}
	num, err := phonenumbers.Parse("+"+digits, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
