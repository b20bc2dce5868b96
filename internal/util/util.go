// internal/util/util.go
// Package util holds the small text helpers shared by the prompt builder and the terminal views.
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// CountWords returns the number of whitespace-separated words in text.
// It is the token estimate used for prompt budgets.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TruncateWords keeps the first n words of text. Whitespace inside the kept
// prefix is collapsed to single spaces once truncation happens.
func TruncateWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}

// WrapToWidth wraps text to width runes per line, splitting words longer than a line.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur strings.Builder
		curLen := 0
		flush := func() {
			if curLen > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
		}
		for _, w := range words {
			r := []rune(w)
			for len(r) > width {
				flush()
				out = append(out, string(r[:width]))
				r = r[width:]
			}
			if len(r) == 0 {
				continue
			}
			if curLen > 0 && curLen+1+len(r) > width {
				flush()
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(string(r))
			curLen += len(r)
		}
		flush()
	}
	return strings.Join(out, "\n")
}
