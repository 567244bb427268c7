package config

import (
	"fmt"

	"github.com/DrJosh9000/tm1650"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
// Length is not range checked here; Normalize clamps it.
func Validate(cfg *Config) error {
	d := cfg.Display

	// ------------------------------------------------------------
	// WIRING
	// ------------------------------------------------------------

	if d.I2C {
		if d.ClkPin != "" || d.DioPin != "" {
			return fmt.Errorf("display: i2c is set, clk_pin and dio_pin must be empty")
		}
		if d.I2CSpeedKHz < 0 {
			return fmt.Errorf("display: i2c_speed_khz must not be negative")
		}
	} else {
		if d.ClkPin == "" || d.DioPin == "" {
			return fmt.Errorf("display: clk_pin and dio_pin are required unless i2c is set")
		}
		if d.ClkPin == d.DioPin {
			return fmt.Errorf("display: clk_pin and dio_pin are both %q", d.ClkPin)
		}
	}

	// ------------------------------------------------------------
	// DISPLAY SETTINGS
	// ------------------------------------------------------------

	if d.Intensity != nil && (*d.Intensity < 0 || *d.Intensity > tm1650.MaxIntensity) {
		return fmt.Errorf("display: intensity %d out of range 0-%d", *d.Intensity, tm1650.MaxIntensity)
	}

	switch d.Mode {
	case "", "8seg", "7seg":
	default:
		return fmt.Errorf("display: mode %q must be 8seg or 7seg", d.Mode)
	}

	if len(d.SegmentMap) > 8 {
		return fmt.Errorf("display: segment_map %q is longer than 8 characters", d.SegmentMap)
	}

	if d.UpdateIntervalMs < 0 || d.ScanIntervalMs < 0 || d.BitDelayUs < 0 {
		return fmt.Errorf("display: intervals and bit_delay_us must not be negative")
	}

	// ------------------------------------------------------------
	// KEYS
	// ------------------------------------------------------------

	names := make(map[string]bool)
	codes := make(map[int]string)

	for _, k := range cfg.Keys {
		if k.Name == "" {
			return fmt.Errorf("keys: key with code %#02x has no name", k.Code)
		}
		if names[k.Name] {
			return fmt.Errorf("keys: duplicate key name %q", k.Name)
		}
		names[k.Name] = true

		if k.Code < 0 || k.Code > 0xFF || tm1650.NormalizeKey(byte(k.Code)) == 0 {
			return fmt.Errorf("keys: %q: code %#02x is not a key press code", k.Name, k.Code)
		}
		if prev, exists := codes[k.Code]; exists {
			return fmt.Errorf("keys: %q and %q both use code %#02x", prev, k.Name, k.Code)
		}
		codes[k.Code] = k.Name
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}

	return nil
}
