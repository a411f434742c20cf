// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
)

// Initialize sets up the PortAudio subsystem. Must be called before
// any audio operations and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem. Defer immediately
// after a successful Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminate PortAudio: %w", err)
	}
	return nil
}

// InputDevice resolves a device index to its PortAudio device info.
// config.MinDeviceID (-1) selects the system default input device.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate audio devices: %w", err)
	}

	if deviceID == config.MinDeviceID {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("resolve default input device: %w", err)
		}
		return device, nil
	}

	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	if devices[deviceID].MaxInputChannels == 0 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", deviceID, devices[deviceID].Name)
	}
	return devices[deviceID], nil
}

// ListDevices prints all audio devices with their capabilities. Input
// devices are highlighted since only those are usable for tuning.
func ListDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("enumerate audio devices: %w", err)
	}
	defaultInput, _ := portaudio.DefaultInputDevice()

	heading := color.New(color.Bold)
	input := color.New(color.FgCyan, color.Bold)
	marker := color.New(color.FgGreen)

	heading.Println("\nAvailable Audio Devices")
	fmt.Println()

	for i, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}

		if device.MaxInputChannels > 0 {
			input.Printf("[%d] %s (%s)", i, device.Name, deviceType)
			if defaultInput != nil && device.Name == defaultInput.Name {
				marker.Printf("  [default]")
			}
			fmt.Println()
		} else {
			fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType)
		}
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Println()
	}

	return nil
}
