// Package names normalizes person names and contact values the way the
// registration forms expect them.
package names

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Locales carried on registration rows.
const (
	LocaleFrench     = "fra"
	LocaleEnglish    = "eng"
	LocaleVietnamese = "vie"
	LocaleKorean     = "kor"
)

var punctuationPattern = regexp.MustCompile("[.,\\\\/#!$%^&*;:{}=\\-_`~()<>\"']")

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// NormalizeName replaces punctuation with spaces and collapses duplicate
// space characters.
func NormalizeName(name string) string {
	punctuationless := punctuationPattern.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(punctuationless), " ")
}

// FormatFirstName normalizes and title-cases each component of a first
// name. Scripts without letter case, such as Hangul, pass through
// unchanged.
func FormatFirstName(firstName string) string {
	components := strings.Fields(NormalizeName(firstName))
	for i, component := range components {
		components[i] = capitalize(component)
	}
	return strings.Join(components, " ")
}

// FormatLastName normalizes and upper-cases a last name.
func FormatLastName(lastName string) string {
	return strings.ToUpper(NormalizeName(lastName))
}

// FormatFullName assembles a full name in locale order: first name first
// for French and English, family name first otherwise.
func FormatFullName(lastName, firstName, locale string) string {
	if locale == LocaleFrench || locale == LocaleEnglish {
		return firstName + " " + lastName
	}
	return lastName + " " + firstName
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid email address %q", normalized)
	}
	return normalized, nil
}

// FormatPhoneNumber converts a local Vietnamese phone number of 9 or 10
// digits to its international representation, zero-padding to 10 digits.
func FormatPhoneNumber(phoneNumber string) (string, error) {
	if !digitsPattern.MatchString(phoneNumber) {
		return "", fmt.Errorf("invalid phone number %q", phoneNumber)
	}
	if len(phoneNumber) < 9 {
		return "", fmt.Errorf("the phone number %q is missing digits", phoneNumber)
	}
	for len(phoneNumber) < 10 {
		phoneNumber = "0" + phoneNumber
	}
	return "+84." + phoneNumber, nil
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
