package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 12

// PasswordSpecials are the only characters that satisfy the special character rule.
const PasswordSpecials = "#?!@$%^&*-"

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,4}$`)

// IsValidEmail matches local@domain.tld with a 2-4 letter top level domain, ignoring case.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsStrongPassword requires MinPasswordLength characters on a single line with at
// least one uppercase letter, lowercase letter, digit and PasswordSpecials character.
func IsStrongPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength || hasLineTerminator(password) {
		return false
	}
	return HasUpper(password) && HasLower(password) && HasDigit(password) && HasSpecial(password)
}

// HasUpper looks for an ASCII uppercase letter.
func HasUpper(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
}

// HasLower looks for an ASCII lowercase letter.
func HasLower(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0
}

// HasDigit looks for an ASCII digit.
func HasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// HasSpecial reports whether s contains one of PasswordSpecials.
func HasSpecial(s string) bool {
	return strings.ContainsAny(s, PasswordSpecials)
}

func hasLineTerminator(s string) bool {
	return strings.ContainsAny(s, "\n\r\u2028\u2029")
}
