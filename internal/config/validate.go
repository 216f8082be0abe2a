// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	b := cfg.Bridge

	if len(b.Devices) == 0 {
		return fmt.Errorf("config: at least one device is required")
	}

	names := make(map[string]struct{}, len(b.Devices))
	for _, d := range b.Devices {
		if d.Name == "" {
			return fmt.Errorf("config: device name required")
		}
		if d.Endpoint == "" {
			return fmt.Errorf("config: device %q: endpoint required", d.Name)
		}
		if _, dup := names[d.Name]; dup {
			return fmt.Errorf("config: duplicate device name %q", d.Name)
		}
		names[d.Name] = struct{}{}

		if d.TimeoutMs < 0 || d.SampleIntervalMs < 0 {
			return fmt.Errorf("config: device %q: negative interval", d.Name)
		}
	}

	if b.CommandCode < 0 {
		return fmt.Errorf("config: command_code must not be negative")
	}
	if b.CommandDevice != "" {
		if _, ok := names[b.CommandDevice]; !ok {
			return fmt.Errorf("config: command_device %q is not a configured device", b.CommandDevice)
		}
	}

	// Delivery is opt-in: an unset endpoint disables the pipeline.
	if !b.Delivery.Enabled() {
		return nil
	}

	if b.Delivery.Device != "" {
		if _, ok := names[b.Delivery.Device]; !ok {
			return fmt.Errorf("config: delivery device %q is not a configured device", b.Delivery.Device)
		}
	}
	if b.Delivery.FallbackPath == "" {
		return fmt.Errorf("config: delivery fallback_path required")
	}
	if b.Delivery.IntervalMs < 0 || b.Delivery.TimeoutMs < 0 {
		return fmt.Errorf("config: delivery: negative interval")
	}

	return nil
}
