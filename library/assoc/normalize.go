// Package assoc turns cue words into human-feeling association responses
// drawn from a precomputed cue -> association table.
package assoc

import (
	"regexp"
	"strings"
)

var regexpToken = regexp.MustCompile(`[a-z0-9]+`)

// Normalize lowercases raw and returns its first run of ASCII letters or digits.
//
// Noise such as punctuation, whitespace or a numeric tag appended after a hyphen
// ("apple-123") is dropped. It returns "" when raw has no such run.
func Normalize(raw string) string {
	return regexpToken.FindString(strings.ToLower(raw))
}

// firstChar returns the first byte of a normalized token as a string, or "".
func firstChar(token string) string {
	if token == "" {
		return ""
	}

	return token[:1]
}
