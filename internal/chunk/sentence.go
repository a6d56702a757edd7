package chunk

import (
	"unicode"
	"unicode/utf8"
)

// Sentences splits text at sentence boundaries. A boundary is a whitespace
// run that follows '.', '!' or '?' and precedes an ASCII uppercase letter,
// a digit, or a quote character. Abbreviations such as "Dr. Smith" are split
// too; the heuristic does not try to recognize them.
//
// The whitespace at a boundary is dropped. Whitespace elsewhere is kept as is.
func Sentences(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	var prev rune

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) || !isTerminal(prev) {
			prev = r
			i += size
			continue
		}

		// Consume the full whitespace run, then look at what follows.
		end := i + size
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				break
			}
			end += n
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if opensSentence(next) {
				out = append(out, text[start:i])
				start = end
			}
		}
		prev = ' '
		i = end
	}

	return append(out, text[start:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func opensSentence(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '"' || r == '\''
}
