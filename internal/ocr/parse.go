// Package ocr pulls a best-guess card name and collector number out of the
// raw text printed on a card.
package ocr

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// Anything that is not a word character, whitespace, or one of - ' / :
	// \s is ASCII only, so Unicode separators are listed explicitly.
	nameNoise    = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}\v\-'/:]`)
	cardNumberRe = regexp.MustCompile(`\d+/\d+`)
)

// ExtractCardName returns the most likely card name in text: the longest
// line that survives the noise filters. ok is false if no line qualifies
// or the best line is nothing but noise.
func ExtractCardName(text string) (name string, ok bool) {
	best := ""
	bestLen := -1

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if utf8.RuneCountInString(line) < 3 || isDigits(line) {
			continue
		}

		clean := nameNoise.ReplaceAllString(line, "")

		// Lines with several bare numbers are stats, not names
		numeric := 0
		for _, word := range strings.Fields(clean) {
			if isDigits(word) {
				numeric++
			}
		}
		if numeric > 1 {
			continue
		}

		if n := utf8.RuneCountInString(clean); n > bestLen {
			best, bestLen = clean, n
		}
	}

	name = strings.TrimSpace(best)
	return name, name != ""
}

// ExtractCardNumber returns the first collector number of the form 4/102
// found in text.
func ExtractCardNumber(text string) (string, bool) {
	m := cardNumberRe.FindString(text)
	return m, m != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
