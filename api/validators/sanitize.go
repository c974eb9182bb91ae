package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims free text, drops control characters other than newline
// and tab, and cuts it to maxLen runes without splitting a character.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)
	if maxLen > 0 && utf8.RuneCountInString(cleaned) > maxLen {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:maxLen]))
	}
	return cleaned
}
