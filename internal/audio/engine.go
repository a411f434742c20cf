// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tuner"
)

// queueDepth is how many capture blocks may be pending before the
// oldest is dropped. At 512 frames / 44.1kHz this is ~370ms of slack.
const queueDepth = 32

// Engine connects the PortAudio input stream to the tuning session.
// The capture callback copies samples into the block queue and returns;
// a single worker goroutine drains the queue, runs the pipeline and
// publishes readings to the registered transports.
type Engine struct {
	cfg     *config.Config
	session *tuner.Session
	queue   *BlockQueue
	meter   *Meter

	transports []transport.Transport

	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	monoBuf []float32 // first-channel extraction workspace (callback only)

	// Recording state. The flag is atomic because StartRecording and
	// StopRecording run on the control goroutine while the callback
	// checks it per block.
	isRecording atomic.Bool
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer
	recScale    float64

	workerWG sync.WaitGroup
	started  bool
}

// NewEngine resolves the input device and pre-allocates all capture
// buffers. The session must have been built from the same config.
func NewEngine(cfg *config.Config, session *tuner.Session) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		session:     session,
		queue:       NewBlockQueue(queueDepth, cfg.Audio.FramesPerBuffer),
		meter:       &Meter{},
		inputDevice: inputDevice,
		monoBuf:     make([]float32, cfg.Audio.FramesPerBuffer),
	}

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("engine: input device %q, %d ch @ %.0f Hz, %d frames/buffer",
		inputDevice.Name, cfg.Audio.Channels, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer)

	return e, nil
}

// AddTransport registers a sink for readings. Must be called before
// StartInputStream.
func (e *Engine) AddTransport(t transport.Transport) {
	e.transports = append(e.transports, t)
}

// Session returns the tuning session driven by this engine.
func (e *Engine) Session() *tuner.Session {
	return e.session
}

// Meter returns the input level meter.
func (e *Engine) Meter() *Meter {
	return e.meter
}

// Dropped reports how many capture blocks have been discarded because
// the pipeline worker fell behind.
func (e *Engine) Dropped() uint64 {
	return e.queue.Dropped()
}

// StartInputStream opens the capture stream and starts the pipeline
// worker. An engine streams at most once; build a new one to restart.
func (e *Engine) StartInputStream() error {
	if e.started {
		return fmt.Errorf("engine already started")
	}
	e.started = true

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.cfg.Audio.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.cfg.Audio.FramesPerBuffer,
		SampleRate:      e.cfg.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	e.inputStream = stream

	e.workerWG.Add(1)
	go e.runWorker()

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		e.queue.Close()
		e.workerWG.Wait()
		return fmt.Errorf("start input stream: %w", err)
	}

	return nil
}

// StopInputStream stops capture, drains the queue and waits for the
// worker to exit.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return fmt.Errorf("stop input stream: %w", err)
		}
		if err := e.inputStream.Close(); err != nil {
			return fmt.Errorf("close input stream: %w", err)
		}
		e.inputStream = nil
	}

	e.queue.Close()
	e.workerWG.Wait()

	if dropped := e.queue.Dropped(); dropped > 0 {
		applog.Warnf("engine: %d capture blocks dropped during session", dropped)
	}
	return nil
}

// processInputStream is the PortAudio capture callback.
// Performance critical: pre-allocated buffers only, no blocking calls.
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mono := in
	if e.cfg.Audio.Channels > 1 {
		// Analyze the first channel only.
		frames := len(in) / e.cfg.Audio.Channels
		if frames > len(e.monoBuf) {
			frames = len(e.monoBuf)
		}
		for i := range frames {
			e.monoBuf[i] = in[i*e.cfg.Audio.Channels]
		}
		mono = e.monoBuf[:frames]
	}
	e.queue.Enqueue(mono)

	if e.isRecording.Load() && e.wavEncoder != nil {
		e.writeRecording(in)
	}
}

// runWorker drains the block queue and feeds the session. Readings go
// to every registered transport.
func (e *Engine) runWorker() {
	defer e.workerWG.Done()

	rate := int(e.cfg.Audio.SampleRate)
	for {
		buf, ok := e.queue.Dequeue()
		if !ok {
			return
		}

		e.meter.Update(buf)
		if reading, ok := e.session.Sample(tuner.Block{Rate: rate, Samples: buf}); ok {
			e.publish(reading)
		}
		e.queue.Recycle(buf)
	}
}

func (e *Engine) publish(r tuner.Reading) {
	if len(e.transports) == 0 {
		return
	}

	note := ""
	if target, set := e.session.Target(); set {
		note = target.String()
	}
	payload := transport.Payload{
		Note:      note,
		Freq:      r.Freq,
		Cents:     r.Cents,
		Status:    r.Status.String(),
		Level:     float64(e.meter.Peak()),
		Timestamp: time.Now().UnixNano(),
	}
	for _, t := range e.transports {
		if err := t.Send(payload); err != nil {
			applog.Debugf("engine: transport send: %v", err)
		}
	}
}

// Snapshot implements udp.Source from the latest published reading.
func (e *Engine) Snapshot() (udp.Snapshot, bool) {
	r, ok := e.session.Latest()
	if !ok {
		return udp.Snapshot{}, false
	}
	return udp.Snapshot{
		Cents:  float32(r.Cents),
		Freq:   float32(r.Freq),
		Level:  e.meter.Peak(),
		Status: uint8(r.Status),
	}, true
}

// Close stops recording, capture and all transports, in that order.
func (e *Engine) Close() error {
	if e.isRecording.Load() {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	for _, t := range e.transports {
		if err := t.Close(); err != nil {
			applog.Warnf("engine: closing transport: %v", err)
		}
	}
	return nil
}

var _ udp.Source = (*Engine)(nil)
