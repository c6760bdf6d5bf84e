package util

import (
	"html"
	"strings"
)

// SanitizeInput trims and escapes HTML/script-like characters
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

// ValidPhone accepts digit-only phone numbers as submitted by the login form.
func ValidPhone(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidCountryCode accepts an optional leading '+' followed by digits.
func ValidCountryCode(s string) bool {
	if s == "" {
		return false
	}
	s = strings.TrimPrefix(s, "+")
	return ValidPhone(s)
}
