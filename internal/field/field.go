// Package field synthesizes the 5-channel external periodic field and the
// scalar sensory sample. In deployment the field would be sensed; this
// synthesizer is the closed-loop testbench equivalent, with slow simplex
// noise standing in for the geophysical drift of each channel's center
// frequency and amplitude.
// See design doc Section 6.2.
package field

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/phin/internal/osc"
)

// Channels is the external field width.
const Channels = 5

// Channel centers in Hz and relative amplitudes. Higher channels carry less
// power, matching the observed spectra.
var (
	centersHz  = [Channels]float64{7.83, 14.3, 20.8, 27.3, 33.8}
	amplitudes = [Channels]float64{1.0, 0.8, 0.35, 0.2, 0.15}
)

// Drift shaping: fractional frequency excursion and amplitude modulation
// depth, both driven by independent slow noise lanes.
const (
	freqDriftDepth = 0.04
	ampDriftDepth  = 0.30
	driftTimeScale = 0.02 // noise-space units per second
)

// Sample is one tick's field output.
type Sample struct {
	Channels [Channels]float64 // instantaneous channel values
	Freqs    [Channels]float64 // drifted center frequencies, Hz
	Sensory  float64           // scalar sensory sample
}

// Synth generates the field. Deterministic given its seed.
type Synth struct {
	noise  opensimplex.Noise
	phases [Channels]float64
	tick   uint64
}

// NewSynth creates a field synthesizer from a seed.
func NewSynth(seed int64) *Synth {
	return &Synth{noise: opensimplex.New(seed)}
}

// Tick advances one tick and returns the field sample. Each channel is a
// unit phasor at its drifted frequency scaled by its drifted amplitude; the
// sensory scalar is the amplitude-weighted channel sum compressed to a
// bounded range.
func (s *Synth) Tick() Sample {
	t := float64(s.tick) * osc.Dt
	s.tick++

	var out Sample
	var sum float64
	for i := 0; i < Channels; i++ {
		lane := float64(i) * 10

		// Slow drift of center frequency and amplitude.
		fDrift := s.noise.Eval2(t*driftTimeScale, lane)
		aDrift := s.noise.Eval2(t*driftTimeScale, lane+5)

		f := centersHz[i] * (1 + freqDriftDepth*fDrift)
		a := amplitudes[i] * (1 + ampDriftDepth*aDrift)

		s.phases[i] += 2 * math.Pi * f * osc.Dt
		if s.phases[i] > 2*math.Pi {
			s.phases[i] -= 2 * math.Pi
		}

		out.Channels[i] = a * math.Sin(s.phases[i])
		out.Freqs[i] = f
		sum += out.Channels[i]
	}

	out.Sensory = math.Tanh(sum / 2)
	return out
}

// Reset restarts all channel phases. The noise field is a pure function of
// time and seed, so drift resumes identically for the same tick sequence.
func (s *Synth) Reset() {
	s.phases = [Channels]float64{}
	s.tick = 0
}

// Centers returns the undrifted channel centers in Hz.
func Centers() [Channels]float64 {
	return centersHz
}
