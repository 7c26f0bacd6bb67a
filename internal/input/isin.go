package input

import (
	"regexp"
	"strconv"
	"strings"
)

var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// FormatValid reports whether the identifier has the ISIN shape: two letter
// country code, nine alphanumerics, one check digit.
func FormatValid(isin string) bool {
	return isinPattern.MatchString(strings.ToUpper(strings.TrimSpace(isin)))
}

// ChecksumValid verifies the ISIN check digit (Luhn over the letter-expanded
// digit string).
func ChecksumValid(isin string) bool {
	s := strings.ToUpper(strings.TrimSpace(isin))
	if !isinPattern.MatchString(s) {
		return false
	}

	var expanded strings.Builder
	for _, ch := range s[:len(s)-1] {
		if ch >= '0' && ch <= '9' {
			expanded.WriteRune(ch)
		} else {
			expanded.WriteString(strconv.Itoa(int(ch) - 55))
		}
	}
	expanded.WriteByte(s[len(s)-1])

	digits := expanded.String()
	total := 0
	parity := len(digits) % 2
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
	}
	return total%10 == 0
}

// Valid reports whether the identifier is a well-formed ISIN with a correct
// check digit.
func Valid(isin string) bool {
	return FormatValid(isin) && ChecksumValid(isin)
}
