// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"
)

const (
	testFrameSize  = 4096
	testSampleRate = 44100.0
)

// sineFrame generates a frame of a pure sine at the given frequency.
func sineFrame(size int, sampleRate, freq, amp float64) []float64 {
	frame := make([]float64, size)
	for i := range frame {
		frame[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return frame
}

func newTestAnalyzer(t testing.TB) *SpectrumAnalyzer {
	t.Helper()
	a, err := NewSpectrumAnalyzer(testFrameSize, testSampleRate, Hann)
	if err != nil {
		t.Fatalf("NewSpectrumAnalyzer: %v", err)
	}
	return a
}

func TestNewSpectrumAnalyzerRejectsBadArgs(t *testing.T) {
	if _, err := NewSpectrumAnalyzer(4000, testSampleRate, Hann); err == nil {
		t.Error("expected error for non-power-of-2 frame size")
	}
	if _, err := NewSpectrumAnalyzer(testFrameSize, 0, Hann); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestAnalyzeSinePeakBin(t *testing.T) {
	analyzer := newTestAnalyzer(t)
	frame := sineFrame(testFrameSize, testSampleRate, 110.0, 0.8)

	spec := analyzer.Analyze(frame)

	if len(spec.Magnitudes) != testFrameSize/2+1 {
		t.Fatalf("expected %d bins, got %d", testFrameSize/2+1, len(spec.Magnitudes))
	}

	wantBinWidth := testSampleRate / testFrameSize
	if math.Abs(spec.BinWidth-wantBinWidth) > 1e-12 {
		t.Errorf("bin width: got %f, want %f", spec.BinWidth, wantBinWidth)
	}

	// 110 Hz sits at bin 10.217, so bin 10 carries the peak.
	peakBin := 0
	for i, m := range spec.Magnitudes {
		if m > spec.Magnitudes[peakBin] {
			peakBin = i
		}
	}
	if peakBin != 10 {
		t.Errorf("peak bin: got %d, want 10", peakBin)
	}

	// Normalization: a 0.8-amplitude sine should read near 0.8 at the peak.
	if spec.Magnitudes[peakBin] < 0.5 || spec.Magnitudes[peakBin] > 0.85 {
		t.Errorf("normalized peak magnitude %f outside expected range", spec.Magnitudes[peakBin])
	}
}

func TestAnalyzeSilence(t *testing.T) {
	analyzer := newTestAnalyzer(t)
	spec := analyzer.Analyze(make([]float64, testFrameSize))

	for i, m := range spec.Magnitudes {
		if m > 1e-12 {
			t.Fatalf("bin %d magnitude %g for all-zero input", i, m)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	analyzer := newTestAnalyzer(t)
	frame := sineFrame(testFrameSize, testSampleRate, 196.0, 0.7)

	first := analyzer.Analyze(frame)
	second := analyzer.Analyze(frame)

	for i := range first.Magnitudes {
		if math.Float64bits(first.Magnitudes[i]) != math.Float64bits(second.Magnitudes[i]) {
			t.Fatalf("bin %d differs between identical analyses", i)
		}
	}
}

func TestAnalyzeShortFrameZeroPadded(t *testing.T) {
	analyzer := newTestAnalyzer(t)
	short := sineFrame(testFrameSize/2, testSampleRate, 110.0, 0.8)

	spec := analyzer.Analyze(short)
	if len(spec.Magnitudes) != testFrameSize/2+1 {
		t.Fatalf("expected full-size spectrum for short input")
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"Hann", Hann, false},
		{"hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{"nuttall", Nuttall, false},
		{"triangle", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkAnalyze(b *testing.B) {
	analyzer := newTestAnalyzer(b)
	frame := sineFrame(testFrameSize, testSampleRate, 110.0, 0.8)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		analyzer.Analyze(frame)
	}
}
