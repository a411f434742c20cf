// SPDX-License-Identifier: MIT
package tuner

import (
	"math"

	"tuner/internal/analysis"
)

// Status is the qualitative tuning classification of a reading.
type Status int

const (
	StatusNoSignal Status = iota
	StatusInTune
	StatusClose
	StatusSharp
	StatusFlat
)

func (s Status) String() string {
	switch s {
	case StatusNoSignal:
		return "no-signal"
	case StatusInTune:
		return "in-tune"
	case StatusClose:
		return "close"
	case StatusSharp:
		return "sharp"
	case StatusFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Reading is the value handed to the UI each cycle: signed cents offset
// from the target, the estimated frequency, and the classification.
// Cents and Freq are zero when Status is StatusNoSignal.
type Reading struct {
	Cents  float64
	Freq   float64
	Status Status
}

// Evaluator maps a pitch estimate and a target note to a tuning reading.
// Thresholds are fixed at construction from configuration.
type Evaluator struct {
	inTuneCents float64
	closeCents  float64
}

// NewEvaluator creates an evaluator with the given classification
// thresholds in cents (inTune <= close, validated by configuration).
func NewEvaluator(inTuneCents, closeCents float64) *Evaluator {
	return &Evaluator{
		inTuneCents: inTuneCents,
		closeCents:  closeCents,
	}
}

// Evaluate computes the signed cents offset of the estimate from the
// target's reference frequency. An absent estimate (ok=false) yields a
// NoSignal reading, never an error.
//
// cents = 1200 * log2(estimated / target)
func (ev *Evaluator) Evaluate(est analysis.Estimate, ok bool, target Note) Reading {
	if !ok {
		return Reading{Status: StatusNoSignal}
	}

	cents := 1200 * math.Log2(est.Freq/target.Frequency())
	return Reading{
		Cents:  cents,
		Freq:   est.Freq,
		Status: ev.Classify(cents),
	}
}

// Classify maps a cents offset to a status by threshold. Exported so the
// smoother can re-classify from smoothed cents rather than voting on
// stale statuses.
func (ev *Evaluator) Classify(cents float64) Status {
	abs := math.Abs(cents)
	switch {
	case abs <= ev.inTuneCents:
		return StatusInTune
	case abs <= ev.closeCents:
		return StatusClose
	case cents > 0:
		return StatusSharp
	default:
		return StatusFlat
	}
}
