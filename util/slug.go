// Package util provides utility functions for the application.
package util

import "strings"

// NormalizeSlug ensures organization slugs are always lowercase, trimmed, and
// space-free. Use this function whenever accepting slugs from external sources.
func NormalizeSlug(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	return strings.ReplaceAll(s, " ", "-")
}

// UsernameFromEmail derives a username candidate from the local part of an
// email address. Dots and plus-suffixes are stripped so the candidate is
// acceptable to the external platform's username rules.
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	local = strings.ReplaceAll(local, ".", "")
	return strings.ToLower(local)
}

// NormalizeEmail lowercases and trims an email for exact-match lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
