package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a url-safe slug.
func GenerateSlug(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := slugInvalid.ReplaceAllString(hyphenated, "")
	normalized := slugHyphens.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}
