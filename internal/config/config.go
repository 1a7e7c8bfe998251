// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config holds the configuration of the ccs811 daemon.
package config

import (
	"os"
	"time"

	"github.com/GermanBionicSystems/ccs811/ccs811"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration, usually read from a YAML file.
type Config struct {
	// Bus is the i2creg name of the bus. Empty selects the first bus.
	Bus string `yaml:"bus"`
	// Address of the sensor, 0x5a or 0x5b.
	Address uint16 `yaml:"address"`
	// Interval between polls of the sensor.
	Interval time.Duration `yaml:"interval"`
	// Listen is the address of the metrics HTTP server.
	Listen   string      `yaml:"listen"`
	LogLevel string      `yaml:"log_level"`
	Gauge    GaugeConfig `yaml:"gauge"`
}

// GaugeConfig configures the terminal gauge.
type GaugeConfig struct {
	Enabled bool `yaml:"enabled"`
	LEDs    int  `yaml:"leds"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Address:  ccs811.DefaultAddress,
		Interval: 5 * time.Second,
		Listen:   ":9811",
		LogLevel: "info",
		Gauge: GaugeConfig{
			LEDs: 40,
		},
	}
}

// Load reads the configuration from a YAML file. Missing values take their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Address == 0 {
		c.Address = d.Address
	}
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Gauge.LEDs == 0 {
		c.Gauge.LEDs = d.Gauge.LEDs
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Address != ccs811.DefaultAddress && c.Address != ccs811.AlternateAddress {
		return errors.Errorf("address 0x%02x: must be 0x%02x or 0x%02x", c.Address, ccs811.DefaultAddress, ccs811.AlternateAddress)
	}
	// Polling faster than the driver's read delay only yields cached values.
	if c.Interval < time.Second {
		return errors.Errorf("interval %s: must be at least 1s", c.Interval)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if c.Gauge.LEDs <= 0 {
		return errors.Errorf("gauge.leds %d: must be positive", c.Gauge.LEDs)
	}
	return nil
}
