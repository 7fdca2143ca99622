package extraction

import (
	"strings"
	"unicode/utf8"
)

// Truncate collapses whitespace runs to single spaces and, when the result is
// longer than width runes, drops whole words from the end and appends
// placeholder so the output fits in width. Words are never split.
func Truncate(text string, width int, placeholder string) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if utf8.RuneCountInString(collapsed) <= width {
		return collapsed
	}

	budget := width - utf8.RuneCountInString(placeholder)
	var b strings.Builder
	used := 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if used > 0 {
			n++
		}
		if used+n > budget {
			break
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		used += n
	}

	if used == 0 {
		// Not even one word fits: return the placeholder alone.
		return truncateRunes(strings.TrimLeft(placeholder, " "), width)
	}
	return b.String() + placeholder
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
