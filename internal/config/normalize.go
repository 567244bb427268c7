package config

import "github.com/DrJosh9000/tm1650"

// Normalize fills in defaults and clamps the display length.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	d := &cfg.Display

	// The display length is fixed here, never at refresh time.
	switch {
	case d.Length == 0:
		d.Length = DefaultLength
	case d.Length < 1:
		d.Length = 1
	case d.Length > tm1650.MaxDigits:
		d.Length = tm1650.MaxDigits
	}

	if d.Intensity == nil {
		i := DefaultIntensity
		d.Intensity = &i
	}
	if d.Power == nil {
		on := true
		d.Power = &on
	}
	if d.Mode == "" {
		d.Mode = "8seg"
	}

	if d.UpdateIntervalMs == 0 {
		d.UpdateIntervalMs = int(DefaultUpdateInterval.Milliseconds())
	}
	if d.ScanIntervalMs == 0 {
		d.ScanIntervalMs = int(DefaultScanInterval.Milliseconds())
	}
	if d.BitDelayUs == 0 {
		d.BitDelayUs = int(tm1650.DefaultBitDelay.Microseconds())
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
