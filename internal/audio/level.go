// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

// Peak returns the largest absolute sample value in the block.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// RMS returns the root-mean-square level of the block, 0 for an empty
// block.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Meter tracks the most recent input level. Updated by the pipeline
// worker per block; read concurrently by the UI and the transports.
type Meter struct {
	peak atomic.Uint32 // math.Float32bits
	rms  atomic.Uint64 // math.Float64bits
}

// Update measures the block and publishes the result.
func (m *Meter) Update(samples []float32) {
	m.peak.Store(math.Float32bits(Peak(samples)))
	m.rms.Store(math.Float64bits(RMS(samples)))
}

// Peak returns the last published peak amplitude in [0, 1].
func (m *Meter) Peak() float32 {
	return math.Float32frombits(m.peak.Load())
}

// RMS returns the last published RMS level in [0, 1].
func (m *Meter) RMS() float64 {
	return math.Float64frombits(m.rms.Load())
}
