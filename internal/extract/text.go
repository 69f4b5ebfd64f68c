package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// cleanText trims s, collapses internal whitespace runs (including
// non-breaking spaces) to single spaces and normalizes to NFC.
func cleanText(s string) string {
	return norm.NFC.String(collapseSpaces(strings.TrimSpace(s)))
}

// cleanEncodedText is cleanText for strings that may still carry HTML
// entities, as JSON-LD values often do.
func cleanEncodedText(s string) string {
	return cleanText(html.UnescapeString(s))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
