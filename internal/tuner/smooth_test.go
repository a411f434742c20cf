// SPDX-License-Identifier: MIT
package tuner

import (
	"math"
	"testing"
)

func TestSmootherSeedsImmediately(t *testing.T) {
	s := NewSmoother(5, newTestEvaluator())

	in := Reading{Cents: 3.2, Freq: 110.2, Status: StatusInTune}
	out := s.Apply(in)

	if out.Cents != in.Cents || out.Freq != in.Freq {
		t.Errorf("first reading should pass through unchanged, got %+v", out)
	}
}

func TestSmootherConvergesOnConstantStream(t *testing.T) {
	s := NewSmoother(5, newTestEvaluator())

	in := Reading{Cents: -8.5, Freq: 195.0, Status: StatusClose}
	var out Reading
	for i := 0; i < 5; i++ {
		out = s.Apply(in)
	}

	if math.Abs(out.Cents-in.Cents) > 1e-12 {
		t.Errorf("constant stream did not converge: got %.6f, want %.6f", out.Cents, in.Cents)
	}
	if out.Status != StatusClose {
		t.Errorf("status = %v, want close", out.Status)
	}
}

func TestSmootherDampsJitter(t *testing.T) {
	s := NewSmoother(5, newTestEvaluator())

	s.Apply(Reading{Cents: 0, Freq: 110, Status: StatusInTune})
	out := s.Apply(Reading{Cents: 30, Freq: 112, Status: StatusSharp})

	// One outlier moves the average by alpha = 1/3 of the jump.
	if math.Abs(out.Cents-10) > 1e-9 {
		t.Errorf("smoothed cents = %.4f, want 10", out.Cents)
	}
	// Status comes from the smoothed value, not the raw spike.
	if out.Status != StatusClose {
		t.Errorf("status = %v, want close", out.Status)
	}
}

func TestSmootherNoSignalResets(t *testing.T) {
	s := NewSmoother(5, newTestEvaluator())

	for i := 0; i < 4; i++ {
		s.Apply(Reading{Cents: 18, Freq: 111, Status: StatusClose})
	}

	out := s.Apply(Reading{Status: StatusNoSignal})
	if out.Status != StatusNoSignal || out.Cents != 0 {
		t.Errorf("no-signal should pass through untouched, got %+v", out)
	}

	// The next real reading must not be damped by pre-silence history.
	next := s.Apply(Reading{Cents: -2, Freq: 109.8, Status: StatusInTune})
	if next.Cents != -2 {
		t.Errorf("post-silence reading damped: got %.4f, want -2", next.Cents)
	}
	if next.Status != StatusInTune {
		t.Errorf("status = %v, want in-tune", next.Status)
	}
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother(5, newTestEvaluator())
	s.Apply(Reading{Cents: 25, Freq: 113, Status: StatusSharp})
	s.Reset()

	out := s.Apply(Reading{Cents: 1, Freq: 110, Status: StatusInTune})
	if out.Cents != 1 {
		t.Errorf("reading after reset damped: got %.4f, want 1", out.Cents)
	}
}
