package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classify assigns a document type to one page of text. The text is
// uppercased, every start pattern is searched as a whole word, and the
// pattern matching earliest in the page wins. Ties at the same offset go
// to the type listed first in the table. Pages with no match get
// DefaultType.
func Classify(text string) string {
	upper := strings.ToUpper(text)

	bestOffset := -1
	bestType := DefaultType
	for _, tp := range startPatterns {
		for _, pat := range tp.Patterns {
			off := findWord(upper, pat)
			if off < 0 {
				continue
			}
			if bestOffset == -1 || off < bestOffset {
				bestOffset = off
				bestType = tp.Type
			}
		}
	}
	return bestType
}

// ClassifyPages classifies each page text independently.
func ClassifyPages(pages []string) []string {
	types := make([]string, len(pages))
	for i, text := range pages {
		types[i] = Classify(text)
	}
	return types
}

// findWord returns the byte offset of the first whole-word occurrence of
// pat in text, or -1. A match is a whole word when the runes adjacent to
// it are not letters or digits.
func findWord(text, pat string) int {
	if pat == "" {
		return -1
	}
	from := 0
	for {
		idx := strings.Index(text[from:], pat)
		if idx < 0 {
			return -1
		}
		start := from + idx
		end := start + len(pat)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return start
		}
		from = start + 1
	}
}

func boundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
