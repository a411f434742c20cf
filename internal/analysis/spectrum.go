// SPDX-License-Identifier: MIT
/*
Package analysis implements the spectral half of the tuning pipeline:
windowed FFT magnitude estimation and fundamental-frequency extraction
with sub-bin peak interpolation.

Both stages are deterministic: analyzing the same frame twice yields
bit-identical spectra, and extraction is a pure function of its input.
The analyzer pre-allocates its input, window and FFT buffers; only the
returned magnitude slice is allocated per call, since spectra are
immutable per cycle and must not be overwritten by the next frame.
*/
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"tuner/pkg/bitint"
)

// Spectrum is the magnitude spectrum of one analysis frame. Bin k covers
// frequency k * BinWidth. Magnitudes are normalized by the window's
// coherent gain so a full-scale sine reads approximately its amplitude.
type Spectrum struct {
	Magnitudes []float64
	BinWidth   float64
}

// WindowFunc selects the tapering function applied before the FFT.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	Nuttall
	Lanczos
	BartlettHann
)

// Pre-allocated buffers for FFT calculations.
type workspace struct {
	input     []float64    // Windowed input signal
	fftOutput []complex128 // FFT complex results
	window    []float64    // Window coefficients
}

// SpectrumAnalyzer turns fixed-size analysis frames into magnitude
// spectra. It holds no state between calls beyond reusable buffers, so
// frames can be re-analyzed deterministically in tests.
type SpectrumAnalyzer struct {
	fftCalculator *fourier.FFT
	frameSize     int
	sampleRate    float64
	scale         float64 // 2 / sum(window), coherent-gain normalization
	workspace     workspace
}

// NewSpectrumAnalyzer creates an analyzer for frames of frameSize samples
// at the given sample rate. frameSize must be a power of 2.
func NewSpectrumAnalyzer(frameSize int, sampleRate float64, windowType WindowFunc) (*SpectrumAnalyzer, error) {
	if !bitint.IsPowerOfTwo(frameSize) {
		return nil, fmt.Errorf("frame size must be a power of 2, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	windowCoeffs := make([]float64, frameSize)
	applyWindow(windowCoeffs, windowType)

	var windowSum float64
	for _, w := range windowCoeffs {
		windowSum += w
	}

	return &SpectrumAnalyzer{
		fftCalculator: fourier.NewFFT(frameSize),
		frameSize:     frameSize,
		sampleRate:    sampleRate,
		scale:         2 / windowSum,
		workspace: workspace{
			input:     make([]float64, frameSize),
			fftOutput: make([]complex128, frameSize/2+1),
			window:    windowCoeffs,
		},
	}, nil
}

// Analyze applies the window function, performs the FFT and returns the
// normalized magnitude spectrum. Frames shorter than the frame size are
// zero-padded. The returned slice is freshly allocated each call.
func (a *SpectrumAnalyzer) Analyze(frame []float64) Spectrum {
	frameLen := len(frame)
	for i := 0; i < a.frameSize; i++ {
		if i < frameLen {
			a.workspace.input[i] = frame[i] * a.workspace.window[i]
		} else {
			a.workspace.input[i] = 0
		}
	}

	a.fftCalculator.Coefficients(a.workspace.fftOutput, a.workspace.input)

	magnitudes := make([]float64, len(a.workspace.fftOutput))
	for i, c := range a.workspace.fftOutput {
		magnitudes[i] = cmplx.Abs(c) * a.scale
	}

	return Spectrum{
		Magnitudes: magnitudes,
		BinWidth:   a.sampleRate / float64(a.frameSize),
	}
}

// FrameSize returns the configured frame size in samples.
func (a *SpectrumAnalyzer) FrameSize() int {
	return a.frameSize
}

// SampleRate returns the configured sample rate in Hz.
func (a *SpectrumAnalyzer) SampleRate() float64 {
	return a.sampleRate
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns Hann and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	case "bartletthann":
		return BartlettHann, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// applyWindow fills coeffs with the selected window function. The slice
// is set to 1.0 first because the gonum window functions multiply in
// place. Unknown types fall back to Hann.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	default:
		window.Hann(coeffs)
	}
}
