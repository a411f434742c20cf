// SPDX-License-Identifier: MIT
package tuner

// Smoother damps jitter in successive readings with an exponential
// moving average over roughly span cycles (alpha = 2/(span+1)). The
// first reading after a reset seeds the average directly, so a steady
// signal converges immediately instead of ramping up from zero.
//
// Status is always recomputed from the smoothed cents value so
// classification flips promptly with the trend. A NoSignal reading
// clears the accumulator and passes through unchanged: silence must not
// bias the numeric trend, and the next real reading must not be damped
// by pre-silence history.
type Smoother struct {
	alpha     float64
	cents     float64
	freq      float64
	seeded    bool
	evaluator *Evaluator
}

// NewSmoother creates a smoother spanning approximately span readings.
func NewSmoother(span int, evaluator *Evaluator) *Smoother {
	return &Smoother{
		alpha:     2 / (float64(span) + 1),
		evaluator: evaluator,
	}
}

// Apply folds a new reading into the running average and returns the
// smoothed reading.
func (s *Smoother) Apply(r Reading) Reading {
	if r.Status == StatusNoSignal {
		s.Reset()
		return r
	}

	if !s.seeded {
		s.cents = r.Cents
		s.freq = r.Freq
		s.seeded = true
	} else {
		s.cents += s.alpha * (r.Cents - s.cents)
		s.freq += s.alpha * (r.Freq - s.freq)
	}

	return Reading{
		Cents:  s.cents,
		Freq:   s.freq,
		Status: s.evaluator.Classify(s.cents),
	}
}

// Reset clears the accumulated history.
func (s *Smoother) Reset() {
	s.cents = 0
	s.freq = 0
	s.seeded = false
}
