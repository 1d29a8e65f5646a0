package utils

import "strings"

// CleanQuery turns a listing title into a search query: the text before the
// first "(" or "|", trimmed.
//
//	"Acme Phone 5G (Blue, 128 GB) | 8 GB RAM" → "Acme Phone 5G"
func CleanQuery(title string) string {
	if i := strings.IndexAny(title, "(|"); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// Truncate shortens s to max runes and appends "..." when it was cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// CollapseSpace joins the whitespace-separated fields of s with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
