package answer

import (
	"regexp"
	"strings"
	"unicode"
)

// fuzzyPattern builds a regex source that matches the query with an optional
// hyphen-or-whitespace run between any two consecutive characters, so
// "bowtie" matches "bowtie", "bow-tie" and "bow tie", and "bow-tie" matches
// the same three forms. Only literal '-' and whitespace count as separators;
// queries with at most one non-separator character are matched literally.
func fuzzyPattern(query string) string {
	var parts []string
	for _, r := range strings.ToLower(query) {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	if len(parts) <= 1 {
		return regexp.QuoteMeta(query)
	}
	return strings.Join(parts, `[-\s]?`)
}

// compileFuzzy compiles the fuzzy pattern case-insensitively.
func compileFuzzy(query string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)` + fuzzyPattern(query))
}
