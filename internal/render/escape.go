package render

import (
	"strings"
	"unicode"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes arbitrary text safe to embed in HTML markup.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Sanitize drops control characters, keeping tabs and newlines, so text
// cannot smuggle escape sequences into a terminal.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
