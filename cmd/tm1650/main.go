// Command tm1650 shows the time or a fixed text on a TM1650 display and logs
// key presses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/DrJosh9000/tm1650"
	"github.com/DrJosh9000/tm1650/internal/config"
)

func main() {
	cfgPath := flag.String("config", "tm1650.yaml", "Path to the YAML configuration")
	selftest := flag.Bool("selftest", false, "Cycle hex digits instead of showing the configured content")
	flag.Parse()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}
	config.Normalize(cfg)

	logger := newLogger(cfg.Log)

	if _, err := host.Init(); err != nil {
		logger.Fatal().Err(err).Msg("periph host init failed")
	}

	// --------------------
	// Device
	// --------------------

	d, closeDev, err := open(cfg.Display, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening display failed")
	}
	defer closeDev()
	d.SetWriter(writer(cfg.Display))
	d.DumpConfig()

	keys := keypad(d, cfg.Keys, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *selftest {
		if err := d.CycleDigits(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("self test failed")
		}
		if err := d.Halt(); err != nil {
			logger.Error().Err(err).Msg("turning display off failed")
		}
		return
	}

	if err := run(ctx, d, keys, cfg.Display.UpdateInterval(), cfg.Display.ScanInterval()); err != nil {
		logger.Error().Err(err).Msg("turning display off failed")
	}
	d.DumpConfig()
}

func newLogger(c config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// open connects to the display over I2C or on two GPIO pins. The returned
// func releases the bus.
func open(c config.DisplayConfig, logger *zerolog.Logger) (*tm1650.Dev, func(), error) {
	opts := options(c, logger)

	if c.I2C {
		b, err := i2creg.Open(c.I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("i2c bus %q: %w", c.I2CBus, err)
		}
		if c.I2CSpeedKHz > 0 {
			if err := b.SetSpeed(physic.Frequency(c.I2CSpeedKHz) * physic.KiloHertz); err != nil {
				b.Close()
				return nil, nil, fmt.Errorf("i2c bus %q: %w", c.I2CBus, err)
			}
		}
		d, err := tm1650.NewI2C(b, opts)
		if err != nil {
			b.Close()
			return nil, nil, err
		}
		return d, func() { b.Close() }, nil
	}

	clk := gpioreg.ByName(c.ClkPin)
	if clk == nil {
		return nil, nil, fmt.Errorf("no pin named %q", c.ClkPin)
	}
	dio := gpioreg.ByName(c.DioPin)
	if dio == nil {
		return nil, nil, fmt.Errorf("no pin named %q", c.DioPin)
	}
	d, err := tm1650.New(clk, dio, opts)
	if err != nil {
		return nil, nil, err
	}
	return d, func() {}, nil
}
