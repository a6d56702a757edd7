// Package sanitize normalizes raw document text before it reaches the
// summarization pipeline. All functions are pure and total.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"mvdan.cc/xurls/v2"
)

// DefaultMaxChars is the rune cap applied when Text is called with maxChars <= 0.
const DefaultMaxChars = 60000

var (
	citationPattern = regexp.MustCompile(`\[\d{1,3}\]`)
	urlPattern      = mustURLPattern()
)

func mustURLPattern() *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		panic("sanitize: compiling url pattern: " + err.Error())
	}
	return re
}

// Text returns the canonical form of raw: NFKC-normalized, free of control
// characters, bracketed numeric citations and bare http(s) URLs, with
// whitespace collapsed and the result capped at maxChars runes.
//
// Truncation is silent. The pass is repeated until stable so that
// Text(Text(x)) == Text(x) holds even when a removal exposes a new match.
func Text(raw string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	// After the first pass the text is NFKC and free of folded runes. A later
	// pass can only remove runes, or renormalize what a removal exposed, so
	// the loop terminates.
	s := pass(raw, maxChars)
	for {
		next := pass(s, maxChars)
		if next == s {
			return s
		}
		s = next
	}
}

func pass(s string, maxChars int) string {
	s = norm.NFKC.String(s)
	s = strings.Map(replaceRune, s)
	s = urlPattern.ReplaceAllString(s, "")
	s = citationPattern.ReplaceAllString(s, "")
	s = collapse(s)
	return truncate(s, maxChars)
}

// replaceRune maps control characters to a space and folds the em-dash and
// non-breaking space to their ASCII equivalents.
func replaceRune(r rune) rune {
	switch {
	case r == '\u2014':
		return '-'
	case r == '\u00a0':
		return ' '
	case unicode.IsControl(r):
		return ' '
	default:
		return r
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return strings.TrimRightFunc(s[:i], unicode.IsSpace)
		}
		n++
	}
	return s
}

// WordCount returns the number of space-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
