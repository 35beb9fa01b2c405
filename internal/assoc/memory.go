// Package assoc is the associative phase-memory collaborator: it reads the
// per-oscillator amplitude/phase outputs, reduces them to a coarse binary
// activity pattern, Hebbian-updates a small weight matrix, and returns a
// bounded signed phase-bias term for each oscillator. Lateral inhibition
// keeps the stored patterns sparse.
// See design doc Section 6.3.
package assoc

import (
	"math"

	"github.com/talgya/phin/internal/osc"
)

// Config shapes the memory.
type Config struct {
	Units        int     // number of tracked oscillators
	AmpThreshold float64 // activity threshold on the amplitude estimate
	LearnRate    float64 // Hebbian increment per tick
	WeightDecay  float64 // passive decay per tick
	MaxBias      float64 // bound on the returned phase bias
	Winners      int     // lateral-inhibition breadth: max active units
}

// DefaultConfig returns the tuned memory for the 15 cortical oscillators.
func DefaultConfig(units int) Config {
	return Config{
		Units:        units,
		AmpThreshold: 0.8,
		LearnRate:    0.002,
		WeightDecay:  0.0001,
		MaxBias:      0.05,
		Winners:      5,
	}
}

// Memory holds the weight matrix and the last formed pattern.
type Memory struct {
	cfg     Config
	weights [][]float64
	pattern []bool
	bias    []float64
}

// NewMemory creates a zeroed memory.
func NewMemory(cfg Config) *Memory {
	w := make([][]float64, cfg.Units)
	for i := range w {
		w[i] = make([]float64, cfg.Units)
	}
	return &Memory{
		cfg:     cfg,
		weights: w,
		pattern: make([]bool, cfg.Units),
		bias:    make([]float64, cfg.Units),
	}
}

// Update forms the activity pattern from the committed snapshots, applies
// the Hebbian rule, and recomputes the per-oscillator phase bias. The bias
// pulls each active unit toward the circular mean phase of the units it is
// associated with — pattern completion through phase, not amplitude.
func (m *Memory) Update(states []osc.Snapshot) {
	n := m.cfg.Units
	if len(states) < n {
		n = len(states)
	}

	// Coarse pattern: amplitude over threshold, thinned by lateral
	// inhibition to the top Winners units.
	active := 0
	for i := 0; i < n; i++ {
		m.pattern[i] = states[i].Amp > m.cfg.AmpThreshold
		if m.pattern[i] {
			active++
		}
	}
	if active > m.cfg.Winners {
		m.inhibit(states, n)
	}

	// Hebbian update with passive decay: units active together bind.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			w := m.weights[i][j]
			if m.pattern[i] && m.pattern[j] {
				w += m.cfg.LearnRate * (1 - w)
			} else {
				w -= m.cfg.WeightDecay * w
			}
			m.weights[i][j] = w
		}
	}

	// Recall: signed phase bias toward the weighted mean of associated
	// phases, bounded so memory can nudge but never drive an oscillator.
	for i := 0; i < n; i++ {
		var sx, sy, wsum float64
		for j := 0; j < n; j++ {
			if i == j || m.weights[i][j] <= 0 {
				continue
			}
			ph := states[j].Phase()
			sx += m.weights[i][j] * math.Cos(ph)
			sy += m.weights[i][j] * math.Sin(ph)
			wsum += m.weights[i][j]
		}
		if wsum < 1e-9 {
			m.bias[i] = 0
			continue
		}
		target := math.Atan2(sy, sx)
		diff := wrapPi(target - states[i].Phase())
		b := m.cfg.MaxBias * diff / math.Pi
		m.bias[i] = b
	}
}

// inhibit keeps only the Winners highest-amplitude active units.
func (m *Memory) inhibit(states []osc.Snapshot, n int) {
	for count := activeCount(m.pattern, n); count > m.cfg.Winners; count-- {
		weakest := -1
		weakestAmp := math.Inf(1)
		for i := 0; i < n; i++ {
			if m.pattern[i] && states[i].Amp < weakestAmp {
				weakest = i
				weakestAmp = states[i].Amp
			}
		}
		if weakest < 0 {
			return
		}
		m.pattern[weakest] = false
	}
}

func activeCount(pattern []bool, n int) int {
	c := 0
	for i := 0; i < n; i++ {
		if pattern[i] {
			c++
		}
	}
	return c
}

// wrapPi folds an angle into (−π, π].
func wrapPi(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Bias returns the phase-bias term for oscillator i, in
// [−MaxBias, MaxBias].
func (m *Memory) Bias(i int) float64 {
	if i < 0 || i >= len(m.bias) {
		return 0
	}
	return m.bias[i]
}

// Pattern returns the current coarse activity pattern.
func (m *Memory) Pattern() []bool {
	out := make([]bool, len(m.pattern))
	copy(out, m.pattern)
	return out
}

// Reset zeroes weights, pattern and biases.
func (m *Memory) Reset() {
	for i := range m.weights {
		for j := range m.weights[i] {
			m.weights[i][j] = 0
		}
		m.pattern[i] = false
		m.bias[i] = 0
	}
}
