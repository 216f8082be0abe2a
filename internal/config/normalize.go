// internal/config/normalize.go
package config

import "strings"

// Default values for everything the reference deployment leaves unset.
const (
	DefaultListen           = ":8081"
	DefaultTimeoutMs        = 2000
	DefaultSampleIntervalMs = 5000

	DefaultDeliveryIntervalMs = 300000
	DefaultDeliveryTimeoutMs  = 10000

	// DefaultFailureMarker is the body substring one specific downstream
	// sink emits inside an otherwise successful response.
	DefaultFailureMarker = "connection error:"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	b := &cfg.Bridge

	if b.Listen == "" {
		b.Listen = DefaultListen
	}

	for i := range b.Devices {
		d := &b.Devices[i]
		if d.TimeoutMs == 0 {
			d.TimeoutMs = DefaultTimeoutMs
		}
		if d.SampleIntervalMs == 0 {
			d.SampleIntervalMs = DefaultSampleIntervalMs
		}
	}

	// Commands bind to the first device unless told otherwise.
	if b.CommandDevice == "" {
		b.CommandDevice = b.Devices[0].Name
	}

	if !b.Delivery.Enabled() {
		return
	}

	d := &b.Delivery
	if d.Device == "" {
		d.Device = b.Devices[0].Name
	}
	if d.IntervalMs == 0 {
		d.IntervalMs = DefaultDeliveryIntervalMs
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultDeliveryTimeoutMs
	}
	if d.FailureMarker == nil {
		marker := DefaultFailureMarker
		d.FailureMarker = &marker
	} else {
		lowered := strings.ToLower(*d.FailureMarker)
		d.FailureMarker = &lowered
	}
}
