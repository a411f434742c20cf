// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"tuner/cmd"
	"tuner/internal/audio"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tui"
	"tuner/internal/tuner"
	"tuner/pkg/build"
)

// main is divided into three phases:
//
// 1. Startup (cold path):
//   - Initialize build information and PortAudio
//   - Parse command line arguments into configuration
//   - Execute one-off commands (device listing)
//
// 2. Concurrent (hot path):
//   - Start the capture engine and pipeline worker
//   - Start recording and transports if enabled
//   - Run the terminal UI, or block headless
//
// 3. Shutdown (cold path):
//   - Stop recording, capture and transports
func main() {
	build.Initialize()

	// One thread for the capture callback and worker, one for UI/IO.
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer audio.Terminate()

	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if opts.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	cfg := opts.Config
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	session, err := tuner.NewSession(cfg)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	engine, err := audio.NewEngine(cfg, session)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if cfg.Transport.WebSocketEnabled {
		engine.AddTransport(transport.NewWebSocketTransport(cfg.Transport.WebSocketPort))
	}
	if opts.NoTUI {
		engine.AddTransport(transport.NewLoggingTransport())
	}

	var publisher *udp.Publisher
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		interval := time.Duration(cfg.Transport.UDPSendIntervalMs) * time.Millisecond
		publisher, err = udp.NewPublisher(interval, sender, engine)
		if err != nil {
			applog.Fatalf("%v", err)
		}
	}

	if err := engine.StartInputStream(); err != nil {
		applog.Fatalf("%v", err)
	}
	if publisher != nil {
		publisher.Start()
	}

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Fatalf("%v", err)
		}
	}

	if opts.NoTUI {
		runHeadless()
	} else if err := tui.StartMeterUI(session, engine.Meter()); err != nil {
		applog.Errorf("terminal UI: %v", err)
	}

	if cfg.Recording.Enabled {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("stopping recording: %v", err)
		} else {
			fmt.Println("Recording saved.")
		}
	}
	if publisher != nil {
		if err := publisher.Stop(); err != nil {
			applog.Errorf("stopping UDP publisher: %v", err)
		}
	}
	if err := engine.Close(); err != nil {
		applog.Errorf("closing audio engine: %v", err)
	}
}

// runHeadless blocks until SIGINT or SIGTERM.
func runHeadless() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	applog.Infof("running headless, Ctrl+C to stop")
	<-done
}
