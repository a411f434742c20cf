// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file. If path is empty, it
// searches default locations ("tuner.yaml", "config.yaml"); if no file is
// found, built-in defaults are used. Environment overrides are applied
// after loading, and the result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"tuner.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies TUNER_* environment variables on top of the
// loaded configuration. Unparseable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("TUNER_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("TUNER_NOTE"); ok {
		cfg.Tuner.Note = val
	}
	if val, ok := os.LookupEnv("TUNER_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
}
