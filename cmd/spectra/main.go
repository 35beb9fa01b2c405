// Command spectra computes the power spectral density of a recorded trace's
// mixer output and ranks spectral peaks against the φⁿ ladder.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"os"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/talgya/phin/internal/engine"
	"github.com/talgya/phin/internal/phi"
	"github.com/talgya/phin/internal/trace"
)

// segment length for Welch averaging: 1024 samples ≈ 1 s at the base rate.
const segLen = 1024

func main() {
	var (
		tracePath = flag.String("trace", "trace.db", "trace database to analyze")
		runID     = flag.String("run", "", "run ID (default: latest run)")
		topN      = flag.Int("top", 10, "number of peaks to report")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	conn, err := trace.OpenReader(*tracePath)
	if err != nil {
		slog.Error("open trace", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	id := *runID
	if id == "" {
		id, err = trace.LatestRun(conn)
		if err != nil {
			slog.Error("resolve run", "error", err)
			os.Exit(1)
		}
	}

	samples, err := trace.LoadOutput(conn, id)
	if err != nil {
		slog.Error("load output", "error", err)
		os.Exit(1)
	}
	if len(samples) < segLen {
		slog.Error("trace too short", "samples", len(samples), "need", segLen)
		os.Exit(1)
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = s.Output
	}

	psd := welch(signal)

	// Frequency axis for the one-sided spectrum.
	freqs := make([]float64, len(psd))
	floats.Span(freqs, 0, float64(engine.RealTimeHz)/2)

	peaks := findPeaks(freqs, psd, *topN)

	fmt.Printf("Run %s — %d samples\n\n", id, len(samples))
	fmt.Printf("%-6s %-12s %-14s %-20s\n", "Rank", "Freq (Hz)", "Power", "Nearest ladder")
	for i, p := range peaks {
		name, ladderFreq := nearestLadder(p.freq)
		fmt.Printf("%-6d %-12.2f %-14.3e %s (%.2f Hz, Δ%.2f)\n",
			i+1, p.freq, p.power, name, ladderFreq, math.Abs(p.freq-ladderFreq))
	}
}

// welch averages Hann-windowed periodograms over 50%-overlapped segments.
func welch(signal []float64) []float64 {
	window := make([]float64, segLen)
	var windowPower float64
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(segLen-1)))
		windowPower += window[i] * window[i]
	}

	half := segLen/2 + 1
	psd := make([]float64, half)
	segments := 0

	buf := make([]float64, segLen)
	for start := 0; start+segLen <= len(signal); start += segLen / 2 {
		seg := signal[start : start+segLen]
		mean := floats.Sum(seg) / segLen
		for i := range buf {
			buf[i] = (seg[i] - mean) * window[i]
		}

		spectrum := fft.FFTReal(buf)
		for i := 0; i < half; i++ {
			mag := cmplx.Abs(spectrum[i])
			psd[i] += mag * mag / windowPower
		}
		segments++
	}

	for i := range psd {
		psd[i] /= float64(segments)
	}
	return psd
}

type peak struct {
	freq  float64
	power float64
}

// findPeaks returns the topN local maxima by power.
func findPeaks(freqs, psd []float64, topN int) []peak {
	var peaks []peak
	for i := 1; i < len(psd)-1; i++ {
		if psd[i] > psd[i-1] && psd[i] >= psd[i+1] {
			peaks = append(peaks, peak{freq: freqs[i], power: psd[i]})
		}
	}
	sort.Slice(peaks, func(a, b int) bool { return peaks[a].power > peaks[b].power })
	if len(peaks) > topN {
		peaks = peaks[:topN]
	}
	return peaks
}

// ladder lists the named φⁿ positions the peak table resolves against.
var ladder = []struct {
	name string
	n    float64
}{
	{"theta", phi.ExpTheta},
	{"l6", phi.ExpL6},
	{"l5a", phi.ExpL5a},
	{"l5b", phi.ExpL5b},
	{"l4", phi.ExpL4},
	{"l23", phi.ExpL23},
}

func nearestLadder(freq float64) (string, float64) {
	bestName := ladder[0].name
	bestFreq := phi.Frequency(ladder[0].n)
	for _, l := range ladder[1:] {
		f := phi.Frequency(l.n)
		if math.Abs(freq-f) < math.Abs(freq-bestFreq) {
			bestName = l.name
			bestFreq = f
		}
	}
	return bestName, bestFreq
}
