// Package phone canonicalizes phone numbers into the single key form
// used by every table in the service.  Two different spellings of the
// same number must collide on the same key, so Normalize is called
// before any lookup or mutation.
package phone

import "strings"

// Normalize converts an arbitrary phone string into the canonical
// "+<country><national>" key.  It strips every non-digit character,
// assumes US country code 1 when exactly ten digits remain, and
// prefixes "+".  Inputs that already start with "+" but do not reduce
// to a US number pass through unchanged.  An empty string is returned
// when no digits can be recovered.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = "1" + digits
	}
	if len(digits) == 11 && digits[0] == '1' {
		return "+" + digits
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		return strings.TrimSpace(raw)
	}
	// Best effort for non-US numbers supplied without a plus.
	return "+" + digits
}
