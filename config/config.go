// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config holds the handshake library's few runtime tunables:
// the I/O deadline applied around each effect dispatch, the log level,
// and the metrics listen address. None of it is protocol state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a handshake client.
type Config struct {
	Handshake *HandshakeConfig `yaml:"handshake" json:"handshake"`
	Logging   *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics   *MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// HandshakeConfig controls the timing around the negotiation; there is
// no retry setting. The handshake engine itself never times out (per the
// protocol's state machine); deadlines are a driver/transport concern.
type HandshakeConfig struct {
	// IODeadline bounds each individual DataRead/DataWrite effect.
	// Zero means no deadline.
	IODeadline time.Duration `yaml:"io_deadline" json:"io_deadline"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Output string `yaml:"output" json:"output"` // "stdout", "stderr", or a file path
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file (tried YAML and JSON): %w", err)
		}
	}

	SubstituteEnvVarsInConfig(cfg)
	setDefaults(cfg)
	return cfg, nil
}

// Default returns a Config populated with default values.
func Default() *Config {
	cfg := &Config{
		Handshake: &HandshakeConfig{},
		Logging:   &LoggingConfig{},
		Metrics:   &MetricsConfig{},
	}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Handshake == nil {
		cfg.Handshake = &HandshakeConfig{}
	}
	if cfg.Handshake.IODeadline == 0 {
		cfg.Handshake.IODeadline = 30 * time.Second
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
