// Package sanitize cleans user-submitted text before storage. Review comments
// and tool descriptions arrive as free text; bluemonday strips any markup so
// stored values are safe to echo back to any client.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared bluemonday policy for sanitizing user text.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// Strict: user text in this application is plain text, never HTML.
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from user input and trims surrounding whitespace.
// Returns the cleaned string.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(getPolicy().Sanitize(s))
}

// List applies Text to each element, dropping entries that sanitize to empty.
func List(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if cleaned := Text(s); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
