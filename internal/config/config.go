// SPDX-License-Identifier: MIT
package config

import (
	"fmt"

	"tuner/pkg/bitint"
)

// Defaults and limits for the tuning engine. The analysis defaults give a
// frequency resolution of 44100/4096 ≈ 10.8 Hz per bin and a reading
// every 1024 samples (~23 ms) once the frame is primed.
const (
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultChannels        = 1           // Mono capture
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Capture block size (latency)
	DefaultLowLatency      = false       // Standard latency mode

	DefaultFrameSize       = 4096   // Analysis frame N (power of 2)
	DefaultHopSize         = 1024   // Sliding-window hop H
	DefaultMinFreq         = 70.0   // Search band low edge (Hz), below E2
	DefaultMaxFreq         = 350.0  // Search band high edge (Hz), above E4
	DefaultMinPeakStrength = 0.02   // Peak floor, normalized magnitude
	DefaultInTuneCents     = 5.0    // |cents| <= this is in tune
	DefaultCloseCents      = 20.0   // |cents| <= this is close
	DefaultSmoothingCycles = 5      // EMA span K in readings
	DefaultWindow          = "Hann" // Analysis window function

	MinDeviceID   = -1     // -1 selects the system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
)

// Config is the main application configuration, loaded from YAML with
// environment overrides.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	Tuner     TunerConfig     `yaml:"tuner"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture device settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Hz, constant for the session's lifetime
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Capture block size in frames
	Channels        int     `yaml:"channels"`          // 1 = mono, 2 = stereo (first channel analyzed)
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device
}

// TunerConfig holds the analysis pipeline parameters. All of these are
// validated at session construction; invalid values are rejected, never
// clamped, since clamping would corrupt frequency-resolution assumptions.
type TunerConfig struct {
	FrameSize       int     `yaml:"frame_size"`        // Analysis frame N, power of 2
	HopSize         int     `yaml:"hop_size"`          // Hop H, 0 < H < N
	MinFreq         float64 `yaml:"min_freq"`          // Fundamental search band low edge (Hz)
	MaxFreq         float64 `yaml:"max_freq"`          // Fundamental search band high edge (Hz)
	MinPeakStrength float64 `yaml:"min_peak_strength"` // Normalized magnitude floor for a valid peak
	InTuneCents     float64 `yaml:"in_tune_cents"`     // In-tune classification threshold
	CloseCents      float64 `yaml:"close_cents"`       // Close classification threshold
	SmoothingCycles int     `yaml:"smoothing_cycles"`  // EMA span K, readings
	Window          string  `yaml:"window"`            // Window function name (e.g. "Hann")
	Note            string  `yaml:"note"`              // Initial target note ("" = wait for selection)
}

// RecordingConfig holds settings for optional raw-capture WAV recording.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // "" auto-generates a timestamped name
	BitDepth   int    `yaml:"bit_depth"`   // 16 or 24
}

// TransportConfig holds settings for publishing readings to UI clients.
type TransportConfig struct {
	WebSocketEnabled  bool   `yaml:"websocket_enabled"`
	WebSocketPort     string `yaml:"websocket_port"` // e.g. "8080", serves /readings
	UDPEnabled        bool   `yaml:"udp_enabled"`
	UDPTargetAddress  string `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090"
	UDPSendIntervalMs int    `yaml:"udp_send_interval_ms"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			LowLatency:      DefaultLowLatency,
		},
		Tuner: TunerConfig{
			FrameSize:       DefaultFrameSize,
			HopSize:         DefaultHopSize,
			MinFreq:         DefaultMinFreq,
			MaxFreq:         DefaultMaxFreq,
			MinPeakStrength: DefaultMinPeakStrength,
			InTuneCents:     DefaultInTuneCents,
			CloseCents:      DefaultCloseCents,
			SmoothingCycles: DefaultSmoothingCycles,
			Window:          DefaultWindow,
			Note:            "",
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
			BitDepth:   16,
		},
		Transport: TransportConfig{
			WebSocketEnabled:  false,
			WebSocketPort:     "8080",
			UDPEnabled:        false,
			UDPTargetAddress:  "127.0.0.1:9090",
			UDPSendIntervalMs: 33, // ~30 Hz
		},
	}
}

// Validate rejects configurations the pipeline cannot honor. Errors are
// descriptive; nothing is silently adjusted.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.1f out of range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("audio.frames_per_buffer must be positive, got %d", c.Audio.FramesPerBuffer)
	}

	t := &c.Tuner
	if !bitint.IsPowerOfTwo(t.FrameSize) {
		return fmt.Errorf("tuner.frame_size must be a power of 2, got %d", t.FrameSize)
	}
	if t.HopSize <= 0 || t.HopSize >= t.FrameSize {
		return fmt.Errorf("tuner.hop_size must satisfy 0 < hop < frame_size, got hop=%d frame=%d",
			t.HopSize, t.FrameSize)
	}
	nyquist := c.Audio.SampleRate / 2
	if t.MinFreq <= 0 || t.MaxFreq <= t.MinFreq {
		return fmt.Errorf("tuner search band [%.1f, %.1f] Hz is inverted or non-positive",
			t.MinFreq, t.MaxFreq)
	}
	if t.MaxFreq > nyquist {
		return fmt.Errorf("tuner.max_freq %.1f Hz exceeds Nyquist %.1f Hz", t.MaxFreq, nyquist)
	}
	if t.MinPeakStrength < 0 {
		return fmt.Errorf("tuner.min_peak_strength must be non-negative, got %g", t.MinPeakStrength)
	}
	if t.InTuneCents < 0 || t.CloseCents < t.InTuneCents {
		return fmt.Errorf("tuner cents thresholds must satisfy 0 <= in_tune <= close, got %.1f/%.1f",
			t.InTuneCents, t.CloseCents)
	}
	if t.SmoothingCycles < 1 {
		return fmt.Errorf("tuner.smoothing_cycles must be >= 1, got %d", t.SmoothingCycles)
	}

	if c.Recording.Enabled {
		if c.Recording.BitDepth != 16 && c.Recording.BitDepth != 24 {
			return fmt.Errorf("recording.bit_depth must be 16 or 24, got %d", c.Recording.BitDepth)
		}
	}

	return nil
}
