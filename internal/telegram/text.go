package telegram

import (
	"strings"
	"unicode/utf8"
)

// splitMessage cuts text into chunks of at most maxBytes. Chunks end on line
// breaks where possible; a single overlong line is cut on rune boundaries.
func splitMessage(text string, maxBytes int) []string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if buf.Len()+len(line) > maxBytes {
			flush()
		}
		for len(line) > maxBytes {
			head := truncateByBytes(line, maxBytes)
			if head == "" {
				_, n := utf8.DecodeRuneInString(line)
				head = line[:n]
			}
			out = append(out, head)
			line = line[len(head):]
		}
		buf.WriteString(line)
	}
	flush()
	return out
}

// truncateByBytes keeps at most maxBytes of text, backing off to a rune start.
func truncateByBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
