// Package config loads the YAML configuration of the tm1650 command.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Display DisplayConfig `yaml:"display"`
	Keys    []KeyConfig   `yaml:"keys"`
	Log     LogConfig     `yaml:"log"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	// Bit-banged wiring: periph.io pin names.
	ClkPin string `yaml:"clk_pin"`
	DioPin string `yaml:"dio_pin"`

	// I2C wiring, used instead of the pins when I2C is set. An empty I2CBus
	// opens the first bus found.
	I2C         bool   `yaml:"i2c"`
	I2CBus      string `yaml:"i2c_bus"`
	I2CSpeedKHz int    `yaml:"i2c_speed_khz"`

	Length     int    `yaml:"length"`
	Intensity  *int   `yaml:"intensity"`
	Power      *bool  `yaml:"power"`
	Mode       string `yaml:"mode"` // "8seg" or "7seg"
	SegmentMap string `yaml:"segment_map"`
	Inverted   bool   `yaml:"inverted"`
	PushPull   bool   `yaml:"push_pull"`
	BitDelayUs int    `yaml:"bit_delay_us"`

	UpdateIntervalMs int `yaml:"update_interval_ms"`
	ScanIntervalMs   int `yaml:"scan_interval_ms"`

	// Content: a time layout (Go reference time) wins over fixed text.
	TimeLayout string `yaml:"time_layout"`
	Text       string `yaml:"text"`
}

// ---- KEYS ----

type KeyConfig struct {
	Name string `yaml:"name"`
	Code int    `yaml:"code"`
}

// ---- LOG ----

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

const (
	DefaultLength         = 4
	DefaultIntensity      = 7
	DefaultUpdateInterval = time.Second
	DefaultScanInterval   = 100 * time.Millisecond
)

// Load reads and decodes the file at path. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (d DisplayConfig) UpdateInterval() time.Duration {
	return time.Duration(d.UpdateIntervalMs) * time.Millisecond
}

func (d DisplayConfig) ScanInterval() time.Duration {
	return time.Duration(d.ScanIntervalMs) * time.Millisecond
}

func (d DisplayConfig) BitDelay() time.Duration {
	return time.Duration(d.BitDelayUs) * time.Microsecond
}
