// SPDX-License-Identifier: MIT
package tuner

// Ring accumulates incoming sample blocks into fixed-size analysis
// frames with overlap. Capacity N, hop H: no frame is produced until N
// samples have arrived (priming); after that a frame of the most recent
// N samples is produced every H samples of input.
//
// Not safe for concurrent use; the session owns it and mutates it only
// from the pipeline goroutine.
type Ring struct {
	buf        []float64 // circular storage, capacity N
	frame      []float64 // reused frame output
	pos        int       // next write index
	filled     int       // samples stored, saturates at N
	sinceFrame int       // samples consumed since the last emitted frame
	hop        int
}

// NewRing creates a ring for frames of size samples with the given hop.
// Size and hop are validated by the session's configuration before the
// ring is constructed.
func NewRing(size, hop int) *Ring {
	return &Ring{
		buf:   make([]float64, size),
		frame: make([]float64, size),
		hop:   hop,
	}
}

// Push appends a block of samples and returns the newest analysis frame
// when one is due. The returned slice is reused by subsequent calls;
// callers must copy it if they retain it past the next Push. Empty
// blocks are no-ops.
func (r *Ring) Push(samples []float32) ([]float64, bool) {
	if len(samples) == 0 {
		return nil, false
	}

	size := len(r.buf)
	for _, s := range samples {
		r.buf[r.pos] = float64(s)
		r.pos++
		if r.pos == size {
			r.pos = 0
		}
	}
	if r.filled < size {
		r.filled += len(samples)
		if r.filled > size {
			r.filled = size
		}
	}
	r.sinceFrame += len(samples)

	if r.filled < size || r.sinceFrame < r.hop {
		return nil, false
	}
	r.sinceFrame = 0

	// Unroll the ring so frame[0] is the oldest of the newest N samples.
	head := size - r.pos
	copy(r.frame[:head], r.buf[r.pos:])
	copy(r.frame[head:], r.buf[:r.pos])
	return r.frame, true
}

// Primed reports whether a full frame of samples has been accumulated.
func (r *Ring) Primed() bool {
	return r.filled == len(r.buf)
}

// Reset discards all buffered samples, returning the ring to its
// unprimed state.
func (r *Ring) Reset() {
	r.pos = 0
	r.filled = 0
	r.sinceFrame = 0
}
