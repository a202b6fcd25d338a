// Package sanitize strips markup from user-submitted text.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML element and trims surrounding whitespace.
// The result is HTML-escaped, so "a & b" is stored as "a &amp; b".
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
