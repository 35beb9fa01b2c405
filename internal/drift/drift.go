// Package drift manages the slow random walks and fast jitter applied to
// every managed frequency. A seeker walks 3–5× faster than its paired
// reference; that rate asymmetry alone opens transient windows of close
// alignment between the two — it is the alignment mechanism, not a side
// effect, so there is no explicit synchronization logic here.
// See design doc Section 4.2.
package drift

import (
	"github.com/talgya/phin/internal/entropy"
)

// Walk cadences at the 1 kHz tick rate. Seekers step every 3 s of tick time,
// references every 12 s — a 4× asymmetry.
const (
	SeekerStepTicks    = 3000
	ReferenceStepTicks = 12000
)

// Config shapes one managed frequency's drift.
type Config struct {
	Center    float64 // walk center (exponent or Hz, caller's choice of units)
	HalfSpan  float64 // reflecting boundaries at Center ± HalfSpan
	StepSize  float64 // walk increment scale per step
	StepTicks int     // ticks between walk steps
	Jitter    float64 // triangular per-tick jitter span
	BiasGain  float64 // scale on the landscape-force bias (0 disables)
}

// SeekerConfig returns the drift shape for a self-organizing seeker exponent.
func SeekerConfig(center float64) Config {
	return Config{
		Center:    center,
		HalfSpan:  0.35,
		StepSize:  0.01,
		StepTicks: SeekerStepTicks,
		Jitter:    0.004,
		BiasGain:  0.02,
	}
}

// ReferenceConfig returns the drift shape for a paired reference exponent.
func ReferenceConfig(center float64) Config {
	return Config{
		Center:    center,
		HalfSpan:  0.15,
		StepSize:  0.005,
		StepTicks: ReferenceStepTicks,
		Jitter:    0.002,
		BiasGain:  0,
	}
}

// Walker is one bounded random walk plus per-tick jitter. Deterministic
// given its entropy source.
type Walker struct {
	cfg    Config
	rng    *entropy.Source
	walk   float64 // slow walk position
	jitter float64 // current per-tick jitter, recomputed every tick
	age    uint64  // ticks since creation or reset

	// Regime-dependent multipliers on step size and jitter span.
	walkScale   float64
	jitterScale float64
}

// NewWalker creates a walker at its configured center.
func NewWalker(cfg Config, rng *entropy.Source) *Walker {
	return &Walker{cfg: cfg, rng: rng, walk: cfg.Center, walkScale: 1, jitterScale: 1}
}

// SetScales applies the regime's drift multipliers. Takes effect on the
// next tick.
func (w *Walker) SetScales(walk, jitter float64) {
	w.walkScale = walk
	w.jitterScale = jitter
}

// Reset returns the walk to its center with zero jitter. The entropy source
// is not rewound; determinism is anchored at engine construction.
func (w *Walker) Reset() {
	w.walk = w.cfg.Center
	w.jitter = 0
	w.age = 0
}

// Tick advances one tick. bias is the landscape total force at the current
// position (pass 0 when self-organization is disabled); it nudges the walk
// toward stable exponents on each walk step. Returns the effective value:
// walk position plus jitter.
func (w *Walker) Tick(bias float64) float64 {
	w.age++

	// Slow walk: a small pseudorandom increment every StepTicks, with the
	// optional force-derived bias folded in. Reflecting boundaries.
	if w.cfg.StepTicks > 0 && w.age%uint64(w.cfg.StepTicks) == 0 {
		step := w.walkScale*w.cfg.StepSize*w.rng.Signed() + w.cfg.BiasGain*bias
		w.walk = reflect(w.walk+step, w.cfg.Center-w.cfg.HalfSpan, w.cfg.Center+w.cfg.HalfSpan)
	}

	// Fast jitter: triangular, recomputed every tick for spectral broadening.
	w.jitter = w.jitterScale * w.cfg.Jitter * w.rng.Triangular()

	return w.walk + w.jitter
}

// Value returns the current effective value without advancing.
func (w *Walker) Value() float64 {
	return w.walk + w.jitter
}

// WalkPosition returns the slow walk position without jitter.
func (w *Walker) WalkPosition() float64 {
	return w.walk
}

// reflect folds v back into [lo, hi].
func reflect(v, lo, hi float64) float64 {
	for v < lo || v > hi {
		if v < lo {
			v = lo + (lo - v)
		}
		if v > hi {
			v = hi - (v - hi)
		}
	}
	return v
}

// Pair couples a seeker walker with its reference. The seeker carries the
// landscape bias; the reference drifts freely at the slower cadence.
type Pair struct {
	Seeker    *Walker
	Reference *Walker
}

// NewPair builds a seeker/reference pair from a shared parent source.
// Sub-sources are derived per walker so the two streams stay decorrelated.
func NewPair(seekerCfg, refCfg Config, rng *entropy.Source) *Pair {
	return &Pair{
		Seeker:    NewWalker(seekerCfg, rng.Derive(1)),
		Reference: NewWalker(refCfg, rng.Derive(2)),
	}
}

// Tick advances both walkers. The bias applies to the seeker only.
func (p *Pair) Tick(bias float64) (seeker, reference float64) {
	return p.Seeker.Tick(bias), p.Reference.Tick(0)
}

// SetScales applies the regime drift multipliers to both walkers.
func (p *Pair) SetScales(walk, jitter float64) {
	p.Seeker.SetScales(walk, jitter)
	p.Reference.SetScales(walk, jitter)
}

// Reset recenters both walkers.
func (p *Pair) Reset() {
	p.Seeker.Reset()
	p.Reference.Reset()
}

// Alignment returns how closely the seeker's excursion currently matches
// its reference's, in [0, 1]. The two walk around different ladder centers,
// so alignment compares center-relative deviations: 1 when both sit at the
// same offset from their centers, 0 at or beyond the combined half-spans.
func (p *Pair) Alignment() float64 {
	sep := (p.Seeker.Value() - p.Seeker.cfg.Center) - (p.Reference.Value() - p.Reference.cfg.Center)
	if sep < 0 {
		sep = -sep
	}
	limit := p.Seeker.cfg.HalfSpan + p.Reference.cfg.HalfSpan
	if limit <= 0 || sep >= limit {
		return 0
	}
	return 1 - sep/limit
}
