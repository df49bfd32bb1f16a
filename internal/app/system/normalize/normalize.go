// Package normalize canonicalizes the string values that flow in at the
// API boundary. Handlers run inputs through these before validation so the
// stores only ever see one spelling of each value.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared and
// indexed in this form everywhere.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved; use text.Fold for
// comparison keys.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a tool status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Pricing normalizes a pricing tier to its canonical capitalized form
// ("free" -> "Free"). Unknown values are returned trimmed as-is so the
// caller's validation can reject them.
func Pricing(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
