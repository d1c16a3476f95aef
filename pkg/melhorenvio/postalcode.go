package melhorenvio

import "strings"

// PostalCodeSize is the number of digits of a valid CEP.
const PostalCodeSize = 8

// NormalizePostalCode strips every non-digit character from a CEP.
func NormalizePostalCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPostalCode reports whether code has exactly PostalCodeSize digits once normalized.
func ValidPostalCode(code string) bool {
	return len(NormalizePostalCode(code)) == PostalCodeSize
}
