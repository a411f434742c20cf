// SPDX-License-Identifier: MIT
package tuner

import (
	"fmt"
	"sync"
	"sync/atomic"

	"tuner/internal/analysis"
	"tuner/internal/config"
	applog "tuner/internal/log"
)

// Block is one batch of samples from the capture device. Samples are in
// [-1, 1]; Rate must match the session's configured sample rate.
type Block struct {
	Rate    int
	Samples []float32
}

// Session owns one tuning pipeline: ring buffer, spectral analyzer, peak
// extractor, evaluator and smoother, wired in that order. All
// configuration is fixed and validated at construction; per-block
// processing is total — every valid block yields either no reading
// (priming, no target) or a well-formed reading, including NoSignal.
//
// Sample runs on the pipeline worker; SetTarget and Reset may be
// called concurrently from the UI. Latest is lock-free for readers.
type Session struct {
	mu        sync.Mutex
	ring      *Ring
	analyzer  *analysis.SpectrumAnalyzer
	extractor *analysis.PeakExtractor
	evaluator *Evaluator
	smoother  *Smoother

	sampleRate int
	target     Note
	targetSet  bool

	latest atomic.Pointer[Reading]
}

// NewSession constructs a session from validated configuration. Invalid
// configuration is rejected here with a descriptive error; nothing is
// silently clamped.
func NewSession(cfg *config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session configuration rejected: %w", err)
	}

	windowType, err := analysis.ParseWindowFunc(cfg.Tuner.Window)
	if err != nil {
		return nil, fmt.Errorf("session configuration rejected: %w", err)
	}

	analyzer, err := analysis.NewSpectrumAnalyzer(cfg.Tuner.FrameSize, cfg.Audio.SampleRate, windowType)
	if err != nil {
		return nil, fmt.Errorf("session configuration rejected: %w", err)
	}

	evaluator := NewEvaluator(cfg.Tuner.InTuneCents, cfg.Tuner.CloseCents)

	s := &Session{
		ring:       NewRing(cfg.Tuner.FrameSize, cfg.Tuner.HopSize),
		analyzer:   analyzer,
		extractor:  analysis.NewPeakExtractor(cfg.Tuner.MinFreq, cfg.Tuner.MaxFreq, cfg.Tuner.MinPeakStrength),
		evaluator:  evaluator,
		smoother:   NewSmoother(cfg.Tuner.SmoothingCycles, evaluator),
		sampleRate: int(cfg.Audio.SampleRate),
	}

	if cfg.Tuner.Note != "" {
		note, err := ParseNote(cfg.Tuner.Note)
		if err != nil {
			return nil, fmt.Errorf("session configuration rejected: %w", err)
		}
		s.SetTarget(note)
	}

	return s, nil
}

// SetTarget selects the note the session tunes against. Smoothing
// history is cleared since accumulated cents were relative to the
// previous target.
func (s *Session) SetTarget(note Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = note
	s.targetSet = true
	s.smoother.Reset()
	applog.Debugf("session: target note set to %s (%.2f Hz)", note, note.Frequency())
}

// Target returns the selected note, if any.
func (s *Session) Target() (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.targetSet
}

// Sample pushes one block through the pipeline. It returns ok=false
// while the ring is priming, while no target is selected, or when the
// block does not complete a hop; otherwise it returns the latest
// smoothed reading. Blocks with a mismatched sample rate are dropped —
// changing rate requires a new session.
func (s *Session) Sample(block Block) (Reading, bool) {
	if len(block.Samples) == 0 {
		return Reading{}, false
	}
	if block.Rate != s.sampleRate {
		applog.Debugf("session: dropping block with rate %d (session rate %d)", block.Rate, s.sampleRate)
		return Reading{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frame, ready := s.ring.Push(block.Samples)
	if !ready || !s.targetSet {
		return Reading{}, false
	}

	spectrum := s.analyzer.Analyze(frame)
	estimate, found := s.extractor.Extract(spectrum)
	reading := s.smoother.Apply(s.evaluator.Evaluate(estimate, found, s.target))

	published := reading
	s.latest.Store(&published)
	return reading, true
}

// Latest returns the most recently published reading. Safe to call from
// any goroutine; the UI reads this instead of touching session state.
func (s *Session) Latest() (Reading, bool) {
	if r := s.latest.Load(); r != nil {
		return *r, true
	}
	return Reading{}, false
}

// SampleRate returns the session's fixed sample rate in Hz.
func (s *Session) SampleRate() int {
	return s.sampleRate
}

// FrameSize returns the analysis frame size in samples.
func (s *Session) FrameSize() int {
	return s.analyzer.FrameSize()
}

// Reset discards buffered samples, smoothing history and the published
// reading. The target note selection is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.Reset()
	s.smoother.Reset()
	s.latest.Store(nil)
	applog.Debugf("session: reset")
}
