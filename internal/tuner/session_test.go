// SPDX-License-Identifier: MIT
package tuner

import (
	"math"
	"testing"

	"tuner/internal/config"
)

const blockSize = 512

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(config.NewConfig())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// feedSine streams a continuous sine through the session in blockSize
// chunks and returns the last reading produced.
func feedSine(t *testing.T, s *Session, freq float64, blocks int) (Reading, bool) {
	t.Helper()
	rate := s.SampleRate()
	var (
		last Reading
		got  bool
	)
	for b := 0; b < blocks; b++ {
		samples := make([]float32, blockSize)
		for i := range samples {
			n := b*blockSize + i
			samples[i] = float32(0.8 * math.Sin(2*math.Pi*freq*float64(n)/float64(rate)))
		}
		if r, ok := s.Sample(Block{Rate: rate, Samples: samples}); ok {
			last = r
			got = true
		}
	}
	return last, got
}

func TestSessionRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Tuner.HopSize = cfg.Tuner.FrameSize
	if _, err := NewSession(cfg); err == nil {
		t.Error("expected rejection of hop >= frame size")
	}

	cfg = config.NewConfig()
	cfg.Audio.SampleRate = -1
	if _, err := NewSession(cfg); err == nil {
		t.Error("expected rejection of negative sample rate")
	}

	cfg = config.NewConfig()
	cfg.Tuner.Window = "triangle"
	if _, err := NewSession(cfg); err == nil {
		t.Error("expected rejection of unknown window")
	}

	cfg = config.NewConfig()
	cfg.Tuner.Note = "C4"
	if _, err := NewSession(cfg); err == nil {
		t.Error("expected rejection of unknown initial note")
	}
}

func TestSessionPriming(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	// 7 blocks of 512 = 3584 samples < 4096: still priming.
	rate := s.SampleRate()
	for i := 0; i < 7; i++ {
		if _, ok := s.Sample(Block{Rate: rate, Samples: make([]float32, blockSize)}); ok {
			t.Fatal("reading produced while priming")
		}
	}
	if _, ok := s.Latest(); ok {
		t.Fatal("latest reading published while priming")
	}

	// The 8th block completes the frame.
	if _, ok := s.Sample(Block{Rate: rate, Samples: make([]float32, blockSize)}); !ok {
		t.Fatal("expected a reading once the frame is primed")
	}
}

func TestSessionNoTargetNoReading(t *testing.T) {
	s := newTestSession(t)

	if _, got := feedSine(t, s, 110.0, 16); got {
		t.Fatal("readings produced without a target note")
	}

	// Samples buffered while untargeted still count: the first block
	// after selecting a target completes a hop and yields a reading.
	s.SetTarget(A2)
	if _, got := feedSine(t, s, 110.0, 2); !got {
		t.Fatal("expected a reading shortly after target selection")
	}
}

func TestSessionSilenceYieldsNoSignal(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	rate := s.SampleRate()
	var last Reading
	got := false
	for i := 0; i < 10; i++ {
		if r, ok := s.Sample(Block{Rate: rate, Samples: make([]float32, blockSize)}); ok {
			last = r
			got = true
		}
	}
	if !got {
		t.Fatal("expected readings for silent input after priming")
	}
	if last.Status != StatusNoSignal {
		t.Errorf("status = %v, want no-signal", last.Status)
	}
	if last.Cents != 0 {
		t.Errorf("cents = %v, want 0 for silence", last.Cents)
	}
}

func TestSessionInTuneA2(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	r, got := feedSine(t, s, 110.0, 24)
	if !got {
		t.Fatal("expected readings")
	}
	if math.Abs(r.Cents) > 2 {
		t.Errorf("cents = %.3f, want within ±2", r.Cents)
	}
	if r.Status != StatusInTune {
		t.Errorf("status = %v, want in-tune", r.Status)
	}
}

func TestSessionSharpE2EdgeCase(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(E2)

	// 82.5 Hz against E2 (82.41 Hz) is ~1.9 cents sharp: positive but
	// inside the in-tune window.
	r, got := feedSine(t, s, 82.5, 24)
	if !got {
		t.Fatal("expected readings")
	}
	if r.Cents <= 0.5 || r.Cents >= 3.5 {
		t.Errorf("cents = %.3f, want ~1.9", r.Cents)
	}
	if r.Status != StatusInTune {
		t.Errorf("status = %v, want in-tune", r.Status)
	}
}

func TestSessionFlatDetection(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	// 105 Hz is ~80 cents flat of A2.
	r, got := feedSine(t, s, 105.0, 24)
	if !got {
		t.Fatal("expected readings")
	}
	if r.Cents >= 0 {
		t.Errorf("cents = %.3f, want negative", r.Cents)
	}
	if r.Status != StatusFlat {
		t.Errorf("status = %v, want flat", r.Status)
	}
}

func TestSessionRateMismatchDropped(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	for i := 0; i < 10; i++ {
		if _, ok := s.Sample(Block{Rate: 48000, Samples: make([]float32, blockSize)}); ok {
			t.Fatal("mismatched-rate block produced a reading")
		}
	}
}

func TestSessionEmptyBlockNoOp(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	if _, ok := s.Sample(Block{Rate: s.SampleRate()}); ok {
		t.Fatal("empty block produced a reading")
	}
}

func TestSessionLatestMatchesReturned(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)

	r, got := feedSine(t, s, 110.0, 16)
	if !got {
		t.Fatal("expected readings")
	}
	latest, ok := s.Latest()
	if !ok {
		t.Fatal("expected a published reading")
	}
	if latest != r {
		t.Errorf("Latest() = %+v, want %+v", latest, r)
	}
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(t)
	s.SetTarget(A2)
	feedSine(t, s, 110.0, 16)

	s.Reset()
	if _, ok := s.Latest(); ok {
		t.Error("latest reading survived reset")
	}

	// Must re-prime from scratch.
	rate := s.SampleRate()
	for i := 0; i < 7; i++ {
		if _, ok := s.Sample(Block{Rate: rate, Samples: make([]float32, blockSize)}); ok {
			t.Fatal("reading produced before re-priming")
		}
	}

	// Target selection survives reset.
	if note, set := s.Target(); !set || note != A2 {
		t.Error("target note lost across reset")
	}
}
