// Package splitter breaks English prose into sentences.
//
// The rule is a heuristic: a sentence ends where whitespace follows '.', '!'
// or '?'. Closing quotes and brackets written directly after the mark belong
// to the sentence they close. Abbreviations such as "e.g. water" and similar
// cases are split too; callers accept that.
package splitter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split returns the trimmed, non-empty sentences of text in input order.
func Split(text string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}

		end := i + size
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(next) && !isCloser(next) {
				break
			}
			end += n
		}

		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}

		out = appendSentence(out, text[start:end])
		start = end
		i = end
	}
	return appendSentence(out, text[start:])
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}
