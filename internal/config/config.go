// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Listen        string         `yaml:"listen"`
	CommandCode   int            `yaml:"command_code"`
	CommandDevice string         `yaml:"command_device"`
	Devices       []DeviceConfig `yaml:"devices"`
	Delivery      DeliveryConfig `yaml:"delivery"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name             string `yaml:"name"`
	Endpoint         string `yaml:"endpoint"`
	UnitID           uint8  `yaml:"unit_id"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	SampleIntervalMs int    `yaml:"sample_interval_ms"`
}

// ---- DELIVERY ----

type DeliveryConfig struct {
	Device     string `yaml:"device"`
	Endpoint   string `yaml:"endpoint"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	IntervalMs int    `yaml:"interval_ms"`
	TimeoutMs  int    `yaml:"timeout_ms"`

	// FailureMarker is the lowercase body substring that flags a degraded
	// 2xx response. Unset means use the built-in default; an explicit empty
	// string disables content sniffing.
	FailureMarker *string `yaml:"failure_marker"`

	FallbackPath string `yaml:"fallback_path"`
}

// Enabled reports whether a remote sink is configured at all.
func (d DeliveryConfig) Enabled() bool {
	return d.Endpoint != ""
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &cfg, nil
}
