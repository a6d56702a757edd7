// Package band plans output length windows, in model-token units, for a
// single summarization call.
package band

import (
	"fmt"
	"math"
)

// Planner constants for BART-like tokenizers on English text.
const (
	MinRatio     = 0.05
	MaxRatio     = 0.30
	DefaultRatio = 0.10

	// TokensPerWord is the word-to-token multiplier used by Target.
	TokensPerWord = 1.35

	// Floor and Ceiling bound every planned band.
	Floor   = 48
	Ceiling = 256

	minTargetWords = 50
	minSpread      = 12

	// capabilityMinFloor is the lowest minimum a backend accepts after Bound.
	capabilityMinFloor = 24
)

// Band is an inclusive [Min, Max] output length window in model tokens.
type Band struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Target maps the caller's compression ratio and the input word count to
// the final-pass band. The ratio is clamped to [MinRatio, MaxRatio]; the
// result always satisfies Floor <= Min < Max <= Ceiling.
func Target(totalWords int, ratio float64) Band {
	ratio = ClampRatio(ratio)
	if totalWords < 0 {
		totalWords = 0
	}

	targetWords := max(minTargetWords, int(math.RoundToEven(float64(totalWords)*ratio)))
	tokens := int(math.RoundToEven(float64(targetWords) * TokensPerWord))
	tokens = min(max(tokens, Floor), Ceiling)

	lo := max(Floor, int(float64(tokens)*0.9))
	hi := min(Ceiling, max(int(float64(tokens)*1.1), lo+minSpread))
	return Band{Min: lo, Max: hi}
}

// Intermediate returns the loose band used for per-chunk summaries in
// multi-pass mode. Coverage matters more than compression there.
func Intermediate() Band {
	return Band{Min: 80, Max: 140}
}

// ClampRatio restricts ratio to [MinRatio, MaxRatio]. NaN maps to DefaultRatio.
func ClampRatio(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return DefaultRatio
	}
	return math.Max(MinRatio, math.Min(ratio, MaxRatio))
}

// Bound clamps b to what a summarization backend accepts: Max in
// [Floor, Ceiling] and Min at least 24 and at least 12 below Max.
func (b Band) Bound() Band {
	hi := min(max(b.Max, Floor), Ceiling)
	lo := max(capabilityMinFloor, min(b.Min, hi-minSpread))
	return Band{Min: lo, Max: hi}
}

// Midpoint returns the center of the band.
func (b Band) Midpoint() float64 {
	return float64(b.Min+b.Max) / 2
}

// Words converts the band to an approximate word range using TokensPerWord.
func (b Band) Words() (lo, hi int) {
	lo = int(math.Round(float64(b.Min) / TokensPerWord))
	hi = int(math.Round(float64(b.Max) / TokensPerWord))
	return lo, hi
}

// String implements fmt.Stringer.
func (b Band) String() string {
	return fmt.Sprintf("[%d,%d]", b.Min, b.Max)
}
