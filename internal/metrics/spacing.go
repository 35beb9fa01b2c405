package metrics

import (
	"math"

	"github.com/talgya/phin/internal/phi"
)

// SpacingBaselineAlpha is the slow EMA weight for the trend baseline:
// tens of seconds at 1 kHz.
const SpacingBaselineAlpha = 0.0001

// SpacingIndex scores how close adjacent-layer frequency ratios sit to the
// golden ratio. 1.0 means perfectly φ-spaced; deviations of 0.5 or more in
// mean ratio error pin the score at 0. A slow exponential baseline tracks
// the trend for drift detection.
type SpacingIndex struct {
	score    float64
	baseline float64
	primed   bool
}

// NewSpacingIndex returns an index with no history.
func NewSpacingIndex() *SpacingIndex {
	return &SpacingIndex{}
}

// Update recomputes the instantaneous score from the ordered layer
// frequencies and folds it into the baseline. Frequencies must be ascending;
// fewer than two layers score 0.
func (si *SpacingIndex) Update(freqs []float64) float64 {
	if len(freqs) < 2 {
		si.score = 0
		return 0
	}

	var dev float64
	pairs := 0
	for i := 1; i < len(freqs); i++ {
		if freqs[i-1] <= 0 {
			continue
		}
		ratio := freqs[i] / freqs[i-1]
		dev += math.Abs(ratio - phi.Phi)
		pairs++
	}
	if pairs == 0 {
		si.score = 0
		return 0
	}
	dev /= float64(pairs)

	s := 1 - dev/0.5
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	si.score = s

	if !si.primed {
		si.baseline = s
		si.primed = true
	} else {
		si.baseline += SpacingBaselineAlpha * (s - si.baseline)
	}
	return s
}

// Score returns the most recent instantaneous score.
func (si *SpacingIndex) Score() float64 {
	return si.score
}

// Baseline returns the slow trend average.
func (si *SpacingIndex) Baseline() float64 {
	return si.baseline
}

// Trend returns score − baseline: positive when spacing is improving
// against its recent history.
func (si *SpacingIndex) Trend() float64 {
	return si.score - si.baseline
}

// Reset clears score and baseline.
func (si *SpacingIndex) Reset() {
	si.score = 0
	si.baseline = 0
	si.primed = false
}
