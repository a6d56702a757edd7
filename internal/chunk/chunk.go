// Package chunk splits sanitized text into overlapping, sentence-aligned
// windows sized for a summarization backend.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Plan sizes the windows produced by Split. Both values are in runes.
type Plan struct {
	// ChunkChars is a soft cap: a single oversized sentence is never split.
	ChunkChars int `yaml:"chunk_chars"`

	// Overlap bounds the sentence tail repeated at the start of the next window.
	Overlap int `yaml:"overlap"`
}

// Default plans for the long-document path and the concise request mode.
var (
	LongPlan  = Plan{ChunkChars: 2200, Overlap: 150}
	ShortPlan = Plan{ChunkChars: 1400, Overlap: 120}
)

// Chunk is one window of the source document. Index is its position in
// document order, starting at 0.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Split packs the sentences of text greedily into windows of about
// plan.ChunkChars runes. When a window closes, the next one is seeded with
// the trailing sentences of the previous window whose combined length stays
// under plan.Overlap. The last window is always emitted.
//
// Whitespace-only text yields no chunks.
func Split(text string, plan Plan) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks []Chunk
		cur    []string
		curLen int
	)

	emit := func() {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.TrimSpace(strings.Join(cur, " ")),
		})
	}

	for _, sent := range Sentences(text) {
		slen := utf8.RuneCountInString(sent)
		if curLen+slen > plan.ChunkChars && len(cur) > 0 {
			emit()
			cur = tail(cur, plan.Overlap)
			curLen = totalLen(cur)
		}
		cur = append(cur, sent)
		curLen += slen
	}

	if len(cur) > 0 {
		emit()
	}
	return chunks
}

// tail returns the longest suffix of sents whose total rune length stays
// strictly below overlap. The returned slice does not alias sents.
func tail(sents []string, overlap int) []string {
	n := 0
	start := len(sents)
	for i := len(sents) - 1; i >= 0; i-- {
		l := utf8.RuneCountInString(sents[i])
		if n+l >= overlap {
			break
		}
		n += l
		start = i
	}
	return append([]string(nil), sents[start:]...)
}

func totalLen(sents []string) int {
	n := 0
	for _, s := range sents {
		n += utf8.RuneCountInString(s)
	}
	return n
}

// Texts returns the text of each chunk in index order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
