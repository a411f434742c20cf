// SPDX-License-Identifier: MIT
package analysis

import "math"

// peakPower is the exponent applied to magnitudes before parabolic
// interpolation. Plain parabolic interpolation of a Hann-windowed peak
// carries a bias of up to ~0.015 bin (several cents at guitar
// fundamentals); raising magnitudes to this power first makes the main
// lobe near-parabolic and shrinks the bias below a thousandth of a bin.
const peakPower = 0.2308

// Estimate is a fundamental-frequency estimate extracted from one
// spectrum. Strength is the normalized peak magnitude.
type Estimate struct {
	Freq     float64
	Strength float64
}

// PeakExtractor locates the fundamental of a plucked string in a
// magnitude spectrum. The search is restricted to a configured frequency
// band so harmonics and sub-audio noise cannot win the peak search.
type PeakExtractor struct {
	minFreq     float64
	maxFreq     float64
	minStrength float64
}

// NewPeakExtractor creates an extractor searching [minFreq, maxFreq] Hz.
// Peaks weaker than minStrength (normalized magnitude) are rejected.
func NewPeakExtractor(minFreq, maxFreq, minStrength float64) *PeakExtractor {
	return &PeakExtractor{
		minFreq:     minFreq,
		maxFreq:     maxFreq,
		minStrength: minStrength,
	}
}

// Extract returns the interpolated fundamental estimate, or ok=false when
// no qualifying peak exists (silence, noise floor, out-of-band content).
// Pure function of its input: the spectrum is never modified.
func (e *PeakExtractor) Extract(spec Spectrum) (Estimate, bool) {
	mags := spec.Magnitudes
	if len(mags) == 0 || spec.BinWidth <= 0 {
		return Estimate{}, false
	}

	lo := int(math.Ceil(e.minFreq / spec.BinWidth))
	if lo < 1 { // skip the DC bin
		lo = 1
	}
	hi := int(math.Floor(e.maxFreq / spec.BinWidth))
	if hi > len(mags)-1 {
		hi = len(mags) - 1
	}
	if lo > hi {
		return Estimate{}, false
	}

	peakBin := lo
	peakMag := mags[lo]
	for bin := lo + 1; bin <= hi; bin++ {
		if mags[bin] > peakMag {
			peakMag = mags[bin]
			peakBin = bin
		}
	}

	if peakMag < e.minStrength {
		return Estimate{}, false
	}

	freq := (float64(peakBin) + e.interpolate(mags, peakBin)) * spec.BinWidth

	return Estimate{Freq: freq, Strength: peakMag}, true
}

// interpolate refines the peak position by fitting a parabola through the
// power-scaled magnitudes of the peak bin and its two neighbors. Returns
// the sub-bin offset in [-0.5, 0.5]; band-edge peaks get no refinement.
func (e *PeakExtractor) interpolate(mags []float64, peakBin int) float64 {
	if peakBin < 1 || peakBin > len(mags)-2 {
		return 0
	}

	left := math.Pow(mags[peakBin-1], peakPower)
	center := math.Pow(mags[peakBin], peakPower)
	right := math.Pow(mags[peakBin+1], peakPower)

	denom := left - 2*center + right
	if denom == 0 {
		return 0
	}

	delta := 0.5 * (left - right) / denom
	if delta < -0.5 {
		delta = -0.5
	} else if delta > 0.5 {
		delta = 0.5
	}
	return delta
}
