// Package validate provides syntactic format checks for inbound text
// fields. All predicates are total: malformed or empty input yields
// false, never an error.
package validate

import "regexp"

// emailRegex matches local-part@domain.tld with a 2+ letter TLD.
// This is a syntactic check only; mailbox and DNS verification are the
// caller's concern.
var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// procurementCodeLength is the fixed length of a procurement category code.
const procurementCodeLength = 8

// countryCodeLength is the fixed length of an ISO 3166-1 alpha-2 code.
const countryCodeLength = 2

// Email reports whether s is a syntactically valid email address.
func Email(s string) bool {
	if s == "" {
		return false
	}
	return emailRegex.MatchString(s)
}

// ProcurementCode reports whether s is a valid procurement category
// code: exactly 8 ASCII digits. There is no checksum; length and digit
// set are the only structural invariants.
func ProcurementCode(s string) bool {
	if len(s) != procurementCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CountryCode reports whether s is a two-letter uppercase country
// code. Lowercase and mixed-case input is rejected, not normalized;
// callers wanting case-insensitive matching must uppercase first.
func CountryCode(s string) bool {
	if len(s) != countryCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
