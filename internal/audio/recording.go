// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// StartRecording begins writing the raw capture to a WAV file. An
// empty filename auto-generates a timestamped name in the working
// directory. Bit depth comes from the recording configuration.
func (e *Engine) StartRecording(filename string) error {
	if e.isRecording.Load() {
		return fmt.Errorf("already recording")
	}

	bitDepth := e.cfg.Recording.BitDepth
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported recording bit depth %d", bitDepth)
	}

	if filename == "" {
		filename = fmt.Sprintf("tuner-%s.wav", time.Now().Format("20060102-150405"))
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create recording file: %w", err)
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.cfg.Audio.SampleRate),
		bitDepth, e.cfg.Audio.Channels, 1)
	e.recScale = float64(int(1)<<(bitDepth-1)) - 1

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.cfg.Audio.Channels,
			SampleRate:  int(e.cfg.Audio.SampleRate),
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, e.cfg.Audio.FramesPerBuffer*e.cfg.Audio.Channels),
	}

	e.isRecording.Store(true)
	return nil
}

// writeRecording converts one interleaved capture block to integer
// samples and appends it to the WAV file. Runs on the capture callback;
// uses the pre-allocated sample buffer only.
func (e *Engine) writeRecording(in []float32) {
	if len(in) > cap(e.sampleBuf.Data) {
		in = in[:cap(e.sampleBuf.Data)]
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]
	for i, sample := range in {
		v := float64(sample)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		e.sampleBuf.Data[i] = int(v * e.recScale)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		// Drop recording rather than disturb capture.
		e.isRecording.Store(false)
	}
}

// StopRecording finalizes the WAV header and closes the file. A no-op
// when not recording.
func (e *Engine) StopRecording() error {
	if !e.isRecording.Load() {
		return nil
	}
	e.isRecording.Store(false)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return fmt.Errorf("finalize WAV file: %w", err)
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return fmt.Errorf("close recording file: %w", err)
		}
		e.outputFile = nil
	}

	return nil
}
