package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString collapses whitespace runs, drops control characters and
// clips the result to at most maxLen bytes without splitting a rune. A
// non-positive maxLen disables clipping.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	space := false
	for _, r := range strings.TrimSpace(input) {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	out := b.String()
	if maxLen <= 0 || len(out) <= maxLen {
		return out
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return strings.TrimRightFunc(out[:cut], unicode.IsSpace)
}

// SanitizeStrings applies SanitizeString to each value, dropping blanks and
// repeats while keeping first-seen order.
func SanitizeStrings(values []string, maxLen int) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		clean := SanitizeString(v, maxLen)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
