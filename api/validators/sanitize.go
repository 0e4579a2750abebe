package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters other than newlines and
// tabs, and truncates to maxLen runes when maxLen is positive.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return strings.TrimSpace(cleaned)
}
