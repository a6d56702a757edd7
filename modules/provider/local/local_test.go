package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/flemzord/abridge/internal/band"
	"github.com/flemzord/abridge/internal/chunk"
	"github.com/flemzord/abridge/internal/provider"
)

// article builds n sentences of roughly twelve words each. Every third
// sentence mentions the main topic so ranking has something to find.
func article(n int) string {
	var sb strings.Builder
	for i := range n {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i%3 == 0 {
			fmt.Fprintf(&sb, "The river dam project reached stage %d after the council vote on funding.", i)
		} else {
			fmt.Fprintf(&sb, "Residents number %d shared unrelated remarks about weather and local sports teams.", i)
		}
	}
	return sb.String()
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	if p.Name() != "local" || p.ModelName() != "textrank" {
		t.Errorf("Name/ModelName = %q/%q", p.Name(), p.ModelName())
	}

	if _, err := New(Config{Model: "sshleifer/distilbart-cnn-12-6"}, nil); !errors.Is(err, provider.ErrInit) {
		t.Errorf("unknown model err = %v, want ErrInit", err)
	}
}

func TestSummarizeOnce_WithinBand(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	text := article(60)
	b := band.Intermediate()

	got, err := p.SummarizeOnce(context.Background(), text, b, false)
	if err != nil {
		t.Fatalf("SummarizeOnce: %v", err)
	}

	_, maxWords := b.Bound().Words()
	if n := len(strings.Fields(got)); n > maxWords {
		t.Errorf("summary has %d words, ceiling %d", n, maxWords)
	}
	if !strings.HasPrefix(got, "The river dam project reached stage 0") {
		t.Errorf("summary should keep the lead sentence: %q", got)
	}
}

func TestSummarizeOnce_DocumentOrder(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	text := article(40)
	got, err := p.SummarizeOnce(context.Background(), text, band.Intermediate(), false)
	if err != nil {
		t.Fatalf("SummarizeOnce: %v", err)
	}

	last := -1
	for _, s := range chunk.Sentences(got) {
		idx := strings.Index(text, s)
		if idx < 0 {
			t.Fatalf("sentence %q is not from the input", s)
		}
		if idx <= last {
			t.Fatalf("sentence %q is out of document order", s)
		}
		last = idx
	}
}

func TestSummarizeOnce_Deterministic(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	text := article(50)

	first, err := p.SummarizeOnce(context.Background(), text, band.Target(600, 0.1), true)
	if err != nil {
		t.Fatalf("SummarizeOnce: %v", err)
	}
	for range 5 {
		again, _ := p.SummarizeOnce(context.Background(), text, band.Target(600, 0.1), true)
		if again != first {
			t.Fatalf("output changed between runs:\n%q\n%q", first, again)
		}
	}
}

func TestSummarizeOnce_ShortInputUnchanged(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	text := "Only a couple of sentences here. They fit easily."
	got, err := p.SummarizeOnce(context.Background(), text, band.Intermediate(), false)
	if err != nil {
		t.Fatalf("SummarizeOnce: %v", err)
	}
	if got != text {
		t.Errorf("got %q, want input unchanged", got)
	}
}

func TestSummarizeOnce_Errors(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t)
	if _, err := p.SummarizeOnce(context.Background(), "  ", band.Intermediate(), false); !provider.IsFatal(err) {
		t.Errorf("empty input err = %v, want fatal", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.SummarizeOnce(ctx, article(10), band.Intermediate(), false); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled err = %v, want context.Canceled", err)
	}
}

func TestSummarizeOnce_LongLeadSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"single sentence", strings.TrimSpace(strings.Repeat("lorem ", 500)) + "."},
		{"short tail", strings.TrimSpace(strings.Repeat("lorem ", 500)) + ". Short tail sentence here."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestProvider(t)
			b := band.Target(500, 0.10)
			minWords, maxWords := b.Bound().Words()

			got, err := p.SummarizeOnce(context.Background(), tt.text, b, false)
			if err != nil {
				t.Fatalf("SummarizeOnce: %v", err)
			}
			n := len(strings.Fields(got))
			if n > maxWords || n < minWords {
				t.Errorf("summary has %d words, want within [%d,%d]", n, minWords, maxWords)
			}
			if !strings.HasPrefix(got, "lorem lorem") {
				t.Errorf("summary = %q, want the lead sentence cut to fit", got)
			}
		})
	}
}
