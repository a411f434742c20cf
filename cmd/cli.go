// SPDX-License-Identifier: MIT

// Package cmd parses command line arguments into a validated runtime
// configuration. Precedence: flags override environment variables,
// which override the YAML config file, which overrides defaults.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"tuner/internal/config"
	"tuner/pkg/build"
)

// Options is the parsed invocation: the effective configuration plus
// which mode the binary should run in.
type Options struct {
	Config  *config.Config
	Command string // "" runs the tuner, "list" prints devices
	NoTUI   bool   // run headless, readings go to transports only
}

func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{}

	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time guitar tuner",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// The config file loads first so flags can override it, but flag
	// registration needs defaults now. Register against a scratch
	// config, then copy only the flags the user actually set.
	flagCfg := config.NewConfig()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML config file (default: tuner.yaml, config.yaml)")

	// Audio device configuration
	rootCmd.PersistentFlags().IntVarP(&flagCfg.Audio.InputDevice, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flagCfg.Audio.Channels, "channels", "c", config.DefaultChannels,
		"Number of capture channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&flagCfg.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&flagCfg.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Capture block size in frames (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&flagCfg.Audio.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Request low latency from the input device")

	// Analysis configuration
	rootCmd.PersistentFlags().IntVar(&flagCfg.Tuner.FrameSize, "frame-size", config.DefaultFrameSize,
		"Analysis frame size in samples (power of 2)")
	rootCmd.PersistentFlags().IntVar(&flagCfg.Tuner.HopSize, "hop-size", config.DefaultHopSize,
		"Samples between consecutive readings")
	rootCmd.PersistentFlags().StringVarP(&flagCfg.Tuner.Note, "note", "n", "",
		"Initial target note (E2, A2, D3, G3, B3, E4)")
	rootCmd.PersistentFlags().StringVar(&flagCfg.Tuner.Window, "window", config.DefaultWindow,
		"Analysis window function")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&flagCfg.Recording.Enabled, "record", "r", false,
		"Record raw capture to a WAV file while tuning")
	rootCmd.PersistentFlags().StringVarP(&flagCfg.Recording.OutputFile, "output", "o", "",
		"Recording file name (default: tuner-YYYYMMDD-HHMMSS.wav)")

	// Transport configuration
	rootCmd.PersistentFlags().BoolVar(&flagCfg.Transport.WebSocketEnabled, "ws", false,
		"Serve readings over WebSocket at /readings")
	rootCmd.PersistentFlags().StringVar(&flagCfg.Transport.WebSocketPort, "ws-port", "8080",
		"WebSocket server port")
	rootCmd.PersistentFlags().BoolVar(&flagCfg.Transport.UDPEnabled, "udp", false,
		"Stream binary readings over UDP")
	rootCmd.PersistentFlags().StringVarP(&flagCfg.Transport.UDPTargetAddress, "udp-target", "u", "127.0.0.1:9090",
		"UDP target address")

	rootCmd.PersistentFlags().BoolVar(&opts.NoTUI, "headless", false,
		"Run without the terminal UI")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cfg, flagCfg, rootCmd)

	if verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.Config = cfg
	return opts, nil
}

// applyFlagOverrides copies a flag value into the configuration only
// when the user set it explicitly, preserving file and environment
// values otherwise.
func applyFlagOverrides(cfg, flagCfg *config.Config, rootCmd *cobra.Command) {
	set := func(name string) bool {
		return rootCmd.PersistentFlags().Changed(name)
	}

	if set("device") {
		cfg.Audio.InputDevice = flagCfg.Audio.InputDevice
	}
	if set("channels") {
		cfg.Audio.Channels = flagCfg.Audio.Channels
	}
	if set("sample-rate") {
		cfg.Audio.SampleRate = flagCfg.Audio.SampleRate
	}
	if set("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = flagCfg.Audio.FramesPerBuffer
	}
	if set("low-latency") {
		cfg.Audio.LowLatency = flagCfg.Audio.LowLatency
	}
	if set("frame-size") {
		cfg.Tuner.FrameSize = flagCfg.Tuner.FrameSize
	}
	if set("hop-size") {
		cfg.Tuner.HopSize = flagCfg.Tuner.HopSize
	}
	if set("note") {
		cfg.Tuner.Note = flagCfg.Tuner.Note
	}
	if set("window") {
		cfg.Tuner.Window = flagCfg.Tuner.Window
	}
	if set("record") {
		cfg.Recording.Enabled = flagCfg.Recording.Enabled
	}
	if set("output") {
		cfg.Recording.OutputFile = flagCfg.Recording.OutputFile
	}
	if set("ws") {
		cfg.Transport.WebSocketEnabled = flagCfg.Transport.WebSocketEnabled
	}
	if set("ws-port") {
		cfg.Transport.WebSocketPort = flagCfg.Transport.WebSocketPort
	}
	if set("udp") {
		cfg.Transport.UDPEnabled = flagCfg.Transport.UDPEnabled
	}
	if set("udp-target") {
		cfg.Transport.UDPTargetAddress = flagCfg.Transport.UDPTargetAddress
	}
}
