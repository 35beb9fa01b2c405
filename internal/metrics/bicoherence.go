package metrics

import (
	"math"

	"github.com/talgya/phin/internal/osc"
)

// BicoherenceAlpha is the per-tick EMA weight: ~100 ms horizon at 1 kHz.
const BicoherenceAlpha = 0.01

// Bicoherence tracks quadratic phase coupling across three related signals
// at f1, f2 and f1+f2. Each tick it forms the bispectral phase sum
// φ1 + φ2 − φ12 and exponentially averages |cos(·)|; a stable phase
// relationship holds the score high, uncorrelated phases wash it out.
type Bicoherence struct {
	score float64
}

// NewBicoherence returns a monitor with a zeroed average.
func NewBicoherence() *Bicoherence {
	return &Bicoherence{}
}

// Update folds one tick of the three snapshots into the running score.
func (b *Bicoherence) Update(f1, f2, f12 osc.Snapshot) {
	sum := f1.Phase() + f2.Phase() - f12.Phase()
	b.score += BicoherenceAlpha * (math.Abs(math.Cos(sum)) - b.score)
}

// Score reports the coupling-strength scalar in [0, 1].
func (b *Bicoherence) Score() float64 {
	return b.score
}

// Reset zeroes the running average.
func (b *Bicoherence) Reset() {
	b.score = 0
}
