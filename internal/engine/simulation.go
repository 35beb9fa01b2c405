// Simulation ties the subsystems together and runs the fixed-order pipeline
// once per tick: field → drift → oscillators → landscape → metrics → mode
// and ignition controllers → memory → mixer. A tick fully completes before
// the next tick's inputs are sampled, so every consumer observes internally
// consistent committed state.
package engine

import (
	"math"
	"sync"

	"github.com/talgya/phin/internal/assoc"
	"github.com/talgya/phin/internal/coupling"
	"github.com/talgya/phin/internal/drift"
	"github.com/talgya/phin/internal/entropy"
	"github.com/talgya/phin/internal/field"
	"github.com/talgya/phin/internal/ignite"
	"github.com/talgya/phin/internal/landscape"
	"github.com/talgya/phin/internal/metrics"
	"github.com/talgya/phin/internal/mixer"
	"github.com/talgya/phin/internal/osc"
	"github.com/talgya/phin/internal/phi"
	"github.com/talgya/phin/internal/regime"
)

// Population shape: three cortical columns of five layers each, one
// thalamic pacer, five field-tracking channels.
const (
	Columns = 3
	Layers  = 5
)

// Column indices.
const (
	Sensory = iota
	Association
	Motor
)

// ColumnName returns the column label.
func ColumnName(col int) string {
	switch col {
	case Sensory:
		return "sensory"
	case Association:
		return "association"
	case Motor:
		return "motor"
	default:
		return "unknown"
	}
}

// Coupling constants.
const (
	// thetaSensoryCouple injects the scalar sensory sample into the pacer.
	thetaSensoryCouple = 0.3
	// fieldCoupleBase is the always-on field coupling; fieldCoupleGain is
	// the additional coupling admitted at full ignition gain.
	fieldCoupleBase = 0.2
	fieldCoupleGain = 3.0
	// sensoryFieldCouple feeds the sensory column's L6 from the sensory
	// sample; motorBoundaryCouple feeds the motor column's L6 from the
	// boundary channel.
	sensoryFieldCouple  = 0.4
	motorBoundaryCouple = 0.2
	// betaQuietThreshold: mean beta-layer amplitude below this asserts the
	// "low competing activity" gate.
	betaQuietThreshold = 1.3
	// fieldMixWeight scales each field-tracking x into the mixer sum.
	fieldMixWeight = 0.3
)

// columnDetune is a small deliberate per-column frequency offset so the
// three columns decorrelate instead of mirroring each other.
var columnDetune = [Columns]float64{0, 0.004, -0.004}

// OscState is one oscillator's published output.
type OscState struct {
	X, Y float64
	Amp  float64
}

// Snapshot is the committed engine output for one tick. Published whole;
// readers never see a partially updated tick.
type Snapshot struct {
	Tick uint64

	Regime regime.Regime

	Theta    OscState
	ThetaExp float64

	Cortical [Columns][Layers]OscState
	FieldOsc [field.Channels]OscState
	Field    field.Sample

	LayerExp   [Layers]float64
	LayerPos   [Layers]landscape.Position
	LayerForce [Layers]float64

	R           float64
	Boundary    metrics.BoundarySignal
	Bicoherence float64
	Spacing     float64
	SpacingBase float64
	Chi         float64

	Mode  coupling.Mode
	Blend coupling.Gains

	IgnitionPhase  ignite.Phase
	Gain           float64
	PLV            float64
	IgnitionActive bool
	LowActivity    bool
	Coherence      float64
	Agreement      float64

	Output float64
}

// Simulation owns all engine state. The tick pipeline is the single writer;
// external control (regime select, reset, overrides) is staged through
// setters and sampled at tick boundaries.
type Simulation struct {
	Field    *field.Synth
	Land     landscape.Config
	Suscept  *landscape.Susceptibility
	Regimes  *regime.Selector
	Mode     *coupling.Controller
	Ignition *ignite.Controller
	Memory   *assoc.Memory
	Out      *mixer.Mixer
	Bico     *metrics.Bicoherence
	Spacing  *metrics.SpacingIndex

	theta      *osc.Oscillator
	thetaDrift *drift.Walker
	cortical   [Columns][Layers]*osc.Oscillator
	layerDrift [Layers]*drift.Pair
	fieldOsc   [field.Channels]*osc.Oscillator

	// Landscape feedback computed this tick, consumed by next tick's drift.
	layerForce [Layers]landscape.Forces
	layerPos   [Layers]landscape.Position
	layerExp   [Layers]float64
	thetaExp   float64

	// Prior-tick boundary channel, feeds the motor column forcing.
	boundary metrics.BoundarySignal

	// Staged external control, sampled at tick boundaries.
	ctrl struct {
		sync.Mutex
		resetPending  bool
		harmonicFlag  bool
		coherenceOvr  *float64
		lowActOvr     *bool
		regimeSel     *regime.Regime
		regimeTransit int
	}

	mu   sync.RWMutex
	snap Snapshot

	// OnSnapshot, when set, receives every committed snapshot (trace hook).
	OnSnapshot func(Snapshot)
}

// NewSimulation builds the engine from a seed and starting regime. The same
// seed always yields the same trajectory.
func NewSimulation(seed uint64, start regime.Regime) *Simulation {
	root := entropy.NewSource(seed)

	s := &Simulation{
		Field:    field.NewSynth(int64(seed)),
		Land:     landscape.DefaultConfig(),
		Suscept:  landscape.NewSusceptibility(),
		Regimes:  regime.NewSelector(start),
		Mode:     coupling.NewController(coupling.DefaultConfig()),
		Ignition: ignite.NewController(),
		Memory:   assoc.NewMemory(assoc.DefaultConfig(Columns * Layers)),
		Out:      mixer.New(),
		Bico:     metrics.NewBicoherence(),
		Spacing:  metrics.NewSpacingIndex(),
	}

	s.theta = osc.New()
	s.thetaDrift = drift.NewWalker(drift.ReferenceConfig(phi.ExpTheta), root.Derive(1))
	s.thetaExp = phi.ExpTheta

	for l := 0; l < Layers; l++ {
		center := phi.LayerExponents[l]
		s.layerDrift[l] = drift.NewPair(
			drift.SeekerConfig(center),
			drift.ReferenceConfig(center),
			root.Derive(uint64(10+l)),
		)
		s.layerExp[l] = center
		s.layerPos[l] = s.Land.Classify(center)
		for c := 0; c < Columns; c++ {
			s.cortical[c][l] = osc.New()
		}
	}

	for i := range s.fieldOsc {
		s.fieldOsc[i] = osc.New()
	}

	return s
}

// Step runs one tick of the pipeline.
func (s *Simulation) Step(tick uint64) {
	harmonicFlag, regimeChange := s.drainControl()

	if regimeChange != nil {
		s.Regimes.Select(*regimeChange.sel, regimeChange.transit)
	}

	p := s.Regimes.Step()

	// 1. External field sample.
	fs := s.Field.Tick()

	// 2. Drift. The bias is last tick's landscape total force: the landscape
	// feeds back into the walks one tick behind, never within the same tick.
	s.thetaDrift.SetScales(p.WalkScale, p.JitterScale)
	s.thetaExp = s.thetaDrift.Tick(0)
	for l := 0; l < Layers; l++ {
		s.layerDrift[l].SetScales(p.WalkScale, p.JitterScale)
		seeker, _ := s.layerDrift[l].Tick(s.layerForce[l].Total)
		s.layerExp[l] = seeker
	}

	// 3. Oscillator updates. Each lane owns its state; cross-lane reads
	// below use only the snapshots committed after this pass.
	thetaFreq := phi.Frequency(s.thetaExp)
	s.theta.Step(osc.Params{
		Growth:      p.GrowthTheta,
		AngularStep: osc.AngularStep(thetaFreq),
	}, thetaSensoryCouple*fs.Sensory)

	layerFreq := [Layers]float64{}
	for l := 0; l < Layers; l++ {
		layerFreq[l] = phi.Frequency(s.layerExp[l])
	}

	for c := 0; c < Columns; c++ {
		for l := 0; l < Layers; l++ {
			forcing := 0.0
			if c == Sensory && l == 0 {
				forcing = sensoryFieldCouple * fs.Sensory
			}
			if c == Motor && l == 0 {
				forcing = motorBoundaryCouple * s.boundary.X
			}
			o := s.cortical[c][l]
			o.Step(osc.Params{
				Growth:      p.GrowthCortical,
				AngularStep: osc.AngularStep(layerFreq[l] * (1 + columnDetune[c])),
			}, forcing)

			// Associative memory injects its phase bias here: a bounded
			// rotation, never an amplitude change.
			rotate(o, s.Memory.Bias(c*Layers+l))
		}
	}

	fieldGain := fieldCoupleBase + fieldCoupleGain*s.Ignition.Gain()
	for i := range s.fieldOsc {
		s.fieldOsc[i].Step(osc.Params{
			Growth:      p.GrowthField,
			AngularStep: osc.AngularStep(fs.Freqs[i]),
		}, fieldGain*fs.Channels[i])
	}

	// 4. Landscape recomputation for the committed exponents.
	for l := 0; l < Layers; l++ {
		s.layerForce[l] = s.Land.Force(s.layerExp[l])
		s.layerPos[l] = s.Land.Classify(s.layerExp[l])
	}

	// 5. Population metrics over committed snapshots.
	thetaSnap := s.theta.Snapshot()
	orderStates := []osc.Snapshot{thetaSnap}
	for l := 0; l < Layers; l++ {
		orderStates = append(orderStates, s.cortical[Association][l].Snapshot())
	}
	r := metrics.OrderParameter(orderStates)

	l6 := s.cortical[Sensory][0].Snapshot()
	l5a := s.cortical[Sensory][1].Snapshot()
	s.boundary = metrics.MixBoundary(thetaSnap, l6)
	chi := s.Suscept.Lookup(layerFreq[0] / thetaFreq)
	s.Bico.Update(thetaSnap, l6, l5a)
	spacing := s.Spacing.Update([]float64{thetaFreq, layerFreq[0], layerFreq[1], layerFreq[2]})

	// 6. Coupling-mode controller. Boundary power is weighted by the pair's
	// coupling susceptibility: harmonic entry comes easier when the pair
	// sits at a strong-coupling ratio.
	s.Mode.Update(r, s.boundary.Power*chi, harmonicFlag)

	// 7. Ignition controller.
	lowActivity := s.betaQuiet()
	agreement := s.alignmentAgreement()
	stability := s.meanStability()
	coherence := 0.6*r + 0.4*s.Bico.Score()
	if ovr := s.coherenceOverride(); ovr != nil {
		coherence = *ovr
	}
	s.Ignition.Update(ignite.Inputs{
		Coherence:   coherence,
		Base:        p.CoherenceThreshold,
		Agreement:   agreement,
		Stability:   stability,
		LowActivity: lowActivity,
	}, p.Timing)

	// 8. Associative memory update on the committed cortical snapshots.
	cortSnaps := make([]osc.Snapshot, 0, Columns*Layers)
	for c := 0; c < Columns; c++ {
		for l := 0; l < Layers; l++ {
			cortSnaps = append(cortSnaps, s.cortical[c][l].Snapshot())
		}
	}
	s.Memory.Update(cortSnaps)

	// 9. Output mixing.
	sensoryXs := make([]float64, Layers)
	for l := 0; l < Layers; l++ {
		sensoryXs[l] = s.cortical[Sensory][l].X
	}
	var fieldSum float64
	for i := range s.fieldOsc {
		fieldSum += fieldMixWeight * s.fieldOsc[i].X
	}
	out := s.Out.Mix(s.theta.X, sensoryXs, fieldSum, s.Ignition.Gain(), s.Mode.Gains())

	// 10. Publish.
	snap := s.buildSnapshot(tick, fs, r, chi, spacing, coherence, agreement, lowActivity, out)
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}
}

type regimeChange struct {
	sel     *regime.Regime
	transit int
}

// drainControl samples the staged external control at the tick boundary and
// applies any pending reset before the tick's inputs are read.
func (s *Simulation) drainControl() (harmonicFlag bool, rc *regimeChange) {
	s.ctrl.Lock()
	reset := s.ctrl.resetPending
	s.ctrl.resetPending = false
	harmonicFlag = s.ctrl.harmonicFlag
	if s.ctrl.regimeSel != nil {
		rc = &regimeChange{sel: s.ctrl.regimeSel, transit: s.ctrl.regimeTransit}
		s.ctrl.regimeSel = nil
	}
	s.ctrl.Unlock()

	if reset {
		s.applyReset()
	}
	return harmonicFlag, rc
}

// applyReset reinitializes every entity to its defined initial state. The
// entropy sources are not rewound; reset is a state reset, not a replay.
func (s *Simulation) applyReset() {
	s.theta.Reset()
	s.thetaDrift.Reset()
	s.thetaExp = phi.ExpTheta
	for l := 0; l < Layers; l++ {
		s.layerDrift[l].Reset()
		s.layerExp[l] = phi.LayerExponents[l]
		s.layerForce[l] = landscape.Forces{}
		s.layerPos[l] = s.Land.Classify(s.layerExp[l])
		for c := 0; c < Columns; c++ {
			s.cortical[c][l].Reset()
		}
	}
	for i := range s.fieldOsc {
		s.fieldOsc[i].Reset()
	}
	s.Field.Reset()
	s.Mode.Reset()
	s.Ignition.Reset()
	s.Memory.Reset()
	s.Bico.Reset()
	s.Spacing.Reset()
	s.Out.Reset()
	s.Regimes.Reset(s.Regimes.Current())
	s.boundary = metrics.BoundarySignal{}
}

// betaQuiet asserts the low-competing-activity gate when the beta layers
// (L5a, L5b) across all columns idle below threshold.
func (s *Simulation) betaQuiet() bool {
	if ovr := s.lowActivityOverride(); ovr != nil {
		return *ovr
	}
	var sum float64
	for c := 0; c < Columns; c++ {
		sum += s.cortical[c][1].Amp + s.cortical[c][2].Amp
	}
	return sum/(2*Columns) < betaQuietThreshold
}

// alignmentAgreement averages the seeker/reference alignment across layers:
// how well the frequency-alignment detectors currently agree.
func (s *Simulation) alignmentAgreement() float64 {
	var sum float64
	for l := 0; l < Layers; l++ {
		sum += s.layerDrift[l].Alignment()
	}
	return sum / Layers
}

// meanStability averages the position-classifier stability across layers.
func (s *Simulation) meanStability() float64 {
	var sum float64
	for l := 0; l < Layers; l++ {
		sum += s.layerPos[l].Stability
	}
	return sum / Layers
}

func (s *Simulation) buildSnapshot(tick uint64, fs field.Sample, r, chi, spacing, coherence, agreement float64, lowActivity bool, out float64) Snapshot {
	snap := Snapshot{
		Tick:           tick,
		Regime:         s.Regimes.Current(),
		Theta:          oscState(s.theta),
		ThetaExp:       s.thetaExp,
		Field:          fs,
		R:              r,
		Boundary:       s.boundary,
		Bicoherence:    s.Bico.Score(),
		Spacing:        spacing,
		SpacingBase:    s.Spacing.Baseline(),
		Chi:            chi,
		Mode:           s.Mode.Mode(),
		Blend:          s.Mode.Gains(),
		IgnitionPhase:  s.Ignition.Phase(),
		Gain:           s.Ignition.Gain(),
		PLV:            s.Ignition.PLV(),
		IgnitionActive: s.Ignition.Active(),
		LowActivity:    lowActivity,
		Coherence:      coherence,
		Agreement:      agreement,
		Output:         out,
	}
	for c := 0; c < Columns; c++ {
		for l := 0; l < Layers; l++ {
			snap.Cortical[c][l] = oscState(s.cortical[c][l])
		}
	}
	for i := range s.fieldOsc {
		snap.FieldOsc[i] = oscState(s.fieldOsc[i])
	}
	snap.LayerExp = s.layerExp
	snap.LayerPos = s.layerPos
	for l := 0; l < Layers; l++ {
		snap.LayerForce[l] = s.layerForce[l].Total
	}
	return snap
}

func oscState(o *osc.Oscillator) OscState {
	return OscState{X: o.X, Y: o.Y, Amp: o.Amp}
}

// rotate applies a phase rotation to an oscillator in place. Radius and
// amplitude class are preserved; only phase moves.
func rotate(o *osc.Oscillator, angle float64) {
	if angle == 0 {
		return
	}
	c, sn := math.Cos(angle), math.Sin(angle)
	x := o.X*c - o.Y*sn
	y := o.X*sn + o.Y*c
	o.X = x
	o.Y = y
	o.Amp = math.Abs(x) + math.Abs(y)
}

// Snapshot returns the most recently committed snapshot.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reset schedules a global synchronous reset, applied at the next tick
// boundary.
func (s *Simulation) Reset() {
	s.ctrl.Lock()
	s.ctrl.resetPending = true
	s.ctrl.Unlock()
}

// SelectRegime stages a regime switch, applied at the next tick boundary.
// transitionTicks > 0 interpolates parameters over that many ticks.
func (s *Simulation) SelectRegime(r regime.Regime, transitionTicks int) {
	s.ctrl.Lock()
	sel := r
	s.ctrl.regimeSel = &sel
	s.ctrl.regimeTransit = transitionTicks
	s.ctrl.Unlock()
}

// SetHarmonicFlag sets the external harmonic-mode request flag.
func (s *Simulation) SetHarmonicFlag(v bool) {
	s.ctrl.Lock()
	s.ctrl.harmonicFlag = v
	s.ctrl.Unlock()
}

// SetCoherenceOverride pins the externally supplied coherence signal; nil
// restores the internal detectors.
func (s *Simulation) SetCoherenceOverride(v *float64) {
	s.ctrl.Lock()
	s.ctrl.coherenceOvr = v
	s.ctrl.Unlock()
}

// SetLowActivityOverride pins the low-competing-activity gate; nil restores
// the internal beta-quiet detector.
func (s *Simulation) SetLowActivityOverride(v *bool) {
	s.ctrl.Lock()
	s.ctrl.lowActOvr = v
	s.ctrl.Unlock()
}

func (s *Simulation) coherenceOverride() *float64 {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	return s.ctrl.coherenceOvr
}

func (s *Simulation) lowActivityOverride() *bool {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	return s.ctrl.lowActOvr
}
