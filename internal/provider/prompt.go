package provider

import (
	"fmt"
	"strings"

	"github.com/flemzord/abridge/internal/band"
)

// Instructions returns the system prompt for chat-model backends. The word
// range is derived from the band so instruction-following models land in the
// same window the token-bounded backends target.
func Instructions(b band.Band) string {
	lo, hi := b.Words()
	var sb strings.Builder
	sb.WriteString("You are a precise summarization engine. ")
	fmt.Fprintf(&sb, "Summarize the user's text in %d to %d words. ", lo, hi)
	sb.WriteString("Keep names, numbers and conclusions that the text states. ")
	sb.WriteString("Do not add facts, opinions, headings, lists or preamble. ")
	sb.WriteString("Reply with the summary as plain prose only.")
	return sb.String()
}

// Temperature returns the sampling temperature for chat-model backends.
func Temperature(allowSampling bool) float64 {
	if allowSampling {
		return 0.7
	}
	return 0
}
