package utils

import "strings"

// Truncate trims s and cuts it to at most maxLen runes, marking the cut with
// an ellipsis. Used for log line previews.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
