package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag and attribute: script/style/iframe markup and
// inline event handlers never survive it. Shared, bluemonday policies are
// concurrency-safe after construction.
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips executable markup from a free-text value and trims it.
// Non-string input yields an empty string; the function never fails.
func SanitizeText(value interface{}) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeString is the string-typed variant for already-typed fields.
func SanitizeString(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
