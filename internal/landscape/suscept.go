package landscape

import "math"

// Susceptibility is the precomputed coupling-susceptibility lookup χ(r) over
// the frequency-ratio range [1.0, 4.0). Low-order rational ratios (1:1, 2:1,
// 3:1) map to high χ — strong, unstable coupling. Half-integer and
// golden-ratio-adjacent ratios map to low χ — weak, stable coupling.
// Initialized once, immutable thereafter.
type Susceptibility struct {
	bins [SusceptBins]float64
}

// SusceptBins is the lookup resolution.
const SusceptBins = 256

// Susceptibility ratio range.
const (
	SusceptMin = 1.0
	SusceptMax = 4.0
)

// susceptWidth is the Lorentzian half-width of each integer-ratio peak.
const susceptWidth = 0.15

// integer-ratio peak weights: lower-order ratios couple harder.
var susceptPeaks = []struct {
	ratio  float64
	weight float64
}{
	{1.0, 1.00},
	{2.0, 0.90},
	{3.0, 0.80},
	{4.0, 0.70},
}

// NewSusceptibility builds the table. Pure function of the constants above.
func NewSusceptibility() *Susceptibility {
	t := &Susceptibility{}
	w2 := susceptWidth * susceptWidth

	maxVal := 0.0
	for i := 0; i < SusceptBins; i++ {
		r := SusceptMin + (SusceptMax-SusceptMin)*(float64(i)+0.5)/SusceptBins
		v := 0.0
		for _, p := range susceptPeaks {
			d := r - p.ratio
			v += p.weight * w2 / (d*d + w2)
		}
		t.bins[i] = v
		if v > maxVal {
			maxVal = v
		}
	}

	// Normalize so the 1:1 peak reads 1.0.
	for i := range t.bins {
		t.bins[i] /= maxVal
	}
	return t
}

// Lookup returns χ for a frequency ratio, clamping to the table range.
// Ratios below 1 are inverted first so callers can pass either ordering.
func (t *Susceptibility) Lookup(ratio float64) float64 {
	if ratio <= 0 {
		return t.bins[SusceptBins-1]
	}
	if ratio < 1 {
		ratio = 1 / ratio
	}
	if ratio >= SusceptMax {
		ratio = math.Nextafter(SusceptMax, 0)
	}
	i := int((ratio - SusceptMin) / (SusceptMax - SusceptMin) * SusceptBins)
	if i < 0 {
		i = 0
	}
	if i >= SusceptBins {
		i = SusceptBins - 1
	}
	return t.bins[i]
}
