package local

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"
)

// PageRank parameters.
const (
	damping       = 0.85
	maxIterations = 100
	tolerance     = 1e-4
)

// Redundancy penalty applied to candidates that overlap a selected sentence.
const (
	redundancyThreshold = 0.15
	minPenalty          = 0.1
)

// sentence is one scoring unit.
type sentence struct {
	id        int
	text      string
	wordCount int
	tokens    int
	freq      map[string]int
	unique    []string // sorted

	tf    float64
	graph float64
	score float64
}

func newSentences(texts []string) []sentence {
	out := make([]sentence, len(texts))
	for i, t := range texts {
		toks := tokenize(t)
		freq := make(map[string]int, len(toks))
		for _, tok := range toks {
			freq[tok]++
		}
		unique := make([]string, 0, len(freq))
		for tok := range freq {
			unique = append(unique, tok)
		}
		slices.Sort(unique)

		out[i] = sentence{
			id:        i,
			text:      t,
			wordCount: len(strings.Fields(t)),
			tokens:    len(toks),
			freq:      freq,
			unique:    unique,
		}
	}
	return out
}

// tokenize lowercases s and splits it on anything that is not a letter or
// a digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// scoreTF sets the normalized term-frequency score of every sentence:
// log1p of the document frequency of each term, weighted by its local
// frequency and divided by the sentence length.
func scoreTF(sents []sentence) {
	global := make(map[string]int)
	for _, s := range sents {
		for tok, n := range s.freq {
			global[tok] += n
		}
	}

	sum := 0.0
	for i := range sents {
		s := &sents[i]
		if s.tokens == 0 {
			continue
		}
		total := 0.0
		for _, tok := range s.unique {
			total += math.Log1p(float64(global[tok])) * float64(s.freq[tok])
		}
		s.tf = total / float64(s.tokens)
		sum += s.tf
	}
	if sum > 0 {
		for i := range sents {
			sents[i].tf /= sum
		}
	}
}

// scoreGraph sets the normalized weighted PageRank score of every sentence
// over the Jaccard similarity graph.
func scoreGraph(sents []sentence) {
	n := len(sents)
	adj := make([][]float64, n)
	for i := range adj {
		adj[i] = make([]float64, n)
		adj[i][i] = 1
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			if sim := jaccard(sents[i].unique, sents[j].unique); sim > 0 {
				adj[i][j] = sim
				adj[j][i] = sim
			}
		}
	}

	scores := pageRank(adj)
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	for i := range sents {
		if sum > 0 {
			sents[i].graph = scores[i] / sum
		}
	}
}

func pageRank(adj [][]float64) []float64 {
	n := len(adj)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}

	outSums := make([]float64, n)
	for i := range n {
		for j := range n {
			outSums[i] += adj[i][j]
		}
	}

	base := (1 - damping) / float64(n)
	for range maxIterations {
		next := make([]float64, n)
		change := 0.0
		for i := range n {
			link := 0.0
			for j := range n {
				if i == j {
					continue
				}
				if w := adj[j][i]; w > 0 && outSums[j] > 0 {
					link += scores[j] * (w / outSums[j])
				}
			}
			next[i] = base + damping*link
			change += math.Abs(next[i] - scores[i])
		}
		scores = next
		if change < tolerance {
			break
		}
	}
	return scores
}

// positionPrior favors the lead and the middle of the document with a
// cosine curve in [0.5, 1], normalized to sum to 1.
func positionPrior(n int) []float64 {
	out := make([]float64, n)
	sum := 0.0
	for i := range n {
		pos := float64(i) / float64(n)
		out[i] = 0.5 + 0.5*math.Abs(math.Cos(pos*2*math.Pi))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// jaccard returns |a ∩ b| / |a ∪ b| for two sorted, deduplicated slices.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch c := strings.Compare(a[i], b[j]); {
		case c == 0:
			inter++
			i++
			j++
		case c < 0:
			i++
		default:
			j++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// byScore orders sentences by descending score, earlier sentences first on
// ties.
func byScore(a, b sentence) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// rank scores sents in place with the given weights.
func rank(sents []sentence, w Weights) {
	scoreTF(sents)
	scoreGraph(sents)
	prior := positionPrior(len(sents))
	for i := range sents {
		sents[i].score = w.TF*sents[i].tf + w.Graph*sents[i].graph + w.Position*prior[i]
	}
}

// selectSentences picks sentences until at least minWords words are chosen,
// skipping any that would push the total past maxWords. The lead sentence is
// kept when it fits; when it alone exceeds the ceiling and the floor is not
// met otherwise, its first words fill the remaining budget. Candidates
// similar to a chosen sentence are penalized. The result is in document
// order.
func selectSentences(sents []sentence, minWords, maxWords int) []sentence {
	if len(sents) == 0 || maxWords <= 0 {
		return nil
	}

	var chosen []sentence
	words := 0
	lead := sents[0]
	if lead.wordCount <= maxWords {
		chosen = append(chosen, lead)
		words = lead.wordCount
	}

	rest := slices.Clone(sents[1:])
	slices.SortFunc(rest, byScore)

	for len(rest) > 0 && words < minWords {
		pick := rest[0]
		rest = rest[1:]
		if words+pick.wordCount > maxWords {
			continue
		}
		chosen = append(chosen, pick)
		words += pick.wordCount

		for i := range rest {
			if sim := jaccard(pick.unique, rest[i].unique); sim > redundancyThreshold {
				rest[i].score *= max(minPenalty, 1-2*sim)
			}
		}
		slices.SortFunc(rest, byScore)
	}

	if lead.wordCount > maxWords && words < minWords {
		chosen = append(chosen, truncateWords(lead, maxWords-words))
	}

	slices.SortFunc(chosen, func(a, b sentence) int { return cmp.Compare(a.id, b.id) })
	return chosen
}

// truncateWords keeps the first n words of s.
func truncateWords(s sentence, n int) sentence {
	fields := strings.Fields(s.text)
	if n < len(fields) {
		fields = fields[:n]
	}
	s.text = strings.Join(fields, " ")
	s.wordCount = len(fields)
	return s
}
