package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"github.com/DrJosh9000/tm1650"
	"github.com/DrJosh9000/tm1650/internal/config"
)

// options maps a normalized display config onto driver options.
func options(c config.DisplayConfig, logger *zerolog.Logger) *tm1650.Opts {
	opts := &tm1650.Opts{
		Length:     c.Length,
		Intensity:  uint8(*c.Intensity),
		Power:      *c.Power,
		Mode:       tm1650.Mode8Segment,
		Inverted:   c.Inverted,
		SegmentMap: c.SegmentMap,
		BitDelay:   c.BitDelay(),
		Pull:       gpio.PullNoChange,
		PushPull:   c.PushPull,
		Logger:     logger,
	}
	if c.Mode == "7seg" {
		opts.Mode = tm1650.Mode7Segment
	}
	return opts
}

// writer draws the configured content: the current time when a layout is
// set, otherwise the fixed text.
func writer(c config.DisplayConfig) tm1650.Writer {
	if c.TimeLayout != "" {
		layout := c.TimeLayout
		return func(f *tm1650.Frame) {
			f.PrintTime(layout, time.Now())
		}
	}
	text := c.Text
	return func(f *tm1650.Frame) {
		f.Print(text)
	}
}

// keypad registers the configured keys. It returns nil when there are none,
// so no key scans are made.
func keypad(d *tm1650.Dev, keys []config.KeyConfig, logger zerolog.Logger) *tm1650.Keypad {
	if len(keys) == 0 {
		return nil
	}
	p := tm1650.NewKeypad(d)
	for _, k := range keys {
		last := false
		p.Add(k.Name, byte(k.Code), func(k *tm1650.Key, pressed bool) {
			if pressed != last {
				logger.Info().Str("key", k.Name).Bool("pressed", pressed).Msg("key")
				last = pressed
			}
		})
	}
	return p
}

// run refreshes the display every update and scans keys every scan until
// ctx is done, then turns the display off. Failed refreshes and scans are
// logged by the driver and retried on the next tick.
func run(ctx context.Context, d *tm1650.Dev, keys *tm1650.Keypad, update, scan time.Duration) error {
	ut := time.NewTicker(update)
	defer ut.Stop()

	var scanC <-chan time.Time
	if keys != nil {
		st := time.NewTicker(scan)
		defer st.Stop()
		scanC = st.C
	}

	_ = d.Update()
	for {
		select {
		case <-ctx.Done():
			return d.Halt()
		case <-ut.C:
			_ = d.Update()
		case <-scanC:
			_, _ = keys.Scan()
		}
	}
}
