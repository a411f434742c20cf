// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"
)

func TestPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float32
	}{
		{"empty", nil, 0},
		{"silence", make([]float32, 16), 0},
		{"positive", []float32{0.1, 0.5, 0.3}, 0.5},
		{"negative dominates", []float32{0.2, -0.9, 0.4}, 0.9},
		{"full scale", []float32{-1, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Peak(tt.samples); got != tt.want {
				t.Errorf("Peak = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}

	// Constant 0.5 has RMS 0.5.
	block := make([]float32, 128)
	for i := range block {
		block[i] = 0.5
	}
	if got := RMS(block); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMS of constant 0.5 = %v", got)
	}

	// A full-cycle sine of amplitude A has RMS A/sqrt(2).
	for i := range block {
		block[i] = float32(0.8 * math.Sin(2*math.Pi*float64(i)/float64(len(block))))
	}
	want := 0.8 / math.Sqrt2
	if got := RMS(block); math.Abs(got-want) > 1e-3 {
		t.Errorf("RMS of sine = %v, want %v", got, want)
	}
}

func TestMeterPublishes(t *testing.T) {
	var m Meter

	if m.Peak() != 0 || m.RMS() != 0 {
		t.Fatal("fresh meter should read zero")
	}

	m.Update([]float32{0.25, -0.75, 0.5})
	if got := m.Peak(); got != 0.75 {
		t.Errorf("Peak = %v, want 0.75", got)
	}
	if got := m.RMS(); got <= 0 || got >= 0.75 {
		t.Errorf("RMS = %v, want in (0, 0.75)", got)
	}
}
