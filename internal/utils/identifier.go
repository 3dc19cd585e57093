package utils

import (
	"regexp"
	"strings"
)

// emailRegex is a deliberately simple anchored pattern: login identifiers are
// only classified as email or username, never validated for deliverability.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether a login identifier looks like an email address.
// Anything that does not match is treated as a username.
func IsEmail(identifier string) bool {
	return emailRegex.MatchString(strings.TrimSpace(identifier))
}

// NormalizeEmail lowercases and trims an email address for unique lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
