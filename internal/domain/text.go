package domain

import "unicode/utf8"

// TruncateText cuts s to at most limit bytes. The cut point backs up to
// the nearest rune boundary so multi-byte text is never split mid-rune.
func TruncateText(s string, limit int) string {
	if len(s) <= limit || limit < 0 {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
