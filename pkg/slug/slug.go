package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLen matches the width of the courses.slug column.
const MaxLen = 200

// Make normalises s into a URL slug: lower-case, every run of characters that
// is not a letter or digit collapsed to a single "-", no leading or trailing
// dashes, at most MaxLen bytes.
func Make(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return cut(strings.TrimRight(b.String(), "-"), MaxLen)
}

// Valid reports whether s is already in normalised form.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}

func cut(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, "-")
}
