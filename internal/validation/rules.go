// Package validation holds the input rules shared by the registration form,
// the web client and the forum API.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)
	nicknameStrip   = regexp.MustCompile(`[^a-zA-Z0-9]`)
	emailPattern    = regexp.MustCompile(`^([A-Za-z0-9]+([-_.]?[A-Za-z0-9]+)*)@([A-Za-z0-9]+([-]?[A-Za-z0-9]+)*)(\.([A-Za-z0-9]+([-]?[A-Za-z0-9]+)*))?(\.([A-Za-z0-9]+([-]?[A-Za-z0-9]+)*))?(\.([A-Za-z]{2,63}))$`)
	phonePattern    = regexp.MustCompile(`^\d{2,3}-\d{3,4}-\d{4}$`)
)

// PasswordSymbols is the set of symbols that satisfy the password rule.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Nickname limits
const (
	NicknameMaxLength = 10
	PasswordMinLength = 8
	PasswordMaxLength = 15
)

func IsValidNickname(value string) bool {
	return nicknamePattern.MatchString(value)
}

func IsValidNicknameLength(value string) bool {
	n := utf8.RuneCountInString(value)
	return n > 0 && n <= NicknameMaxLength
}

// FilterNickname drops every character that is not an ASCII letter or digit.
func FilterNickname(value string) string {
	return nicknameStrip.ReplaceAllString(value, "")
}

func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsValidPassword requires 8-15 characters with at least one digit, one
// letter and one symbol from PasswordSymbols.
func IsValidPassword(value string) bool {
	n := utf8.RuneCountInString(value)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return false
	}
	var digit, letter, symbol bool
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return digit && letter && symbol
}

func IsValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

func IsPasswordMatch(password, confirm string) bool {
	return password == confirm
}

// FormatPhone inserts hyphens while a phone number is being typed. Seoul
// numbers (02) use a two digit area code; the middle group grows to four
// digits once eight digits follow the area code.
func FormatPhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 11 {
		digits = digits[:11]
	}

	area := 3
	if strings.HasPrefix(digits, "02") {
		area = 2
	}
	if len(digits) <= area {
		return digits
	}

	rest := digits[area:]
	if len(rest) <= 4 {
		return digits[:area] + "-" + rest
	}
	mid := 3
	if len(rest) >= 8 {
		mid = 4
	}
	return digits[:area] + "-" + rest[:mid] + "-" + rest[mid:]
}
