// Package tm1650 drives TM1650 LED display and keypad controllers, either by
// bit-banging the chip's two-wire protocol on a pair of GPIO pins or through
// an I²C controller (using periph.io).
package tm1650 // import "github.com/DrJosh9000/tm1650"

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

const (
	// MaxDigits is the largest display length accepted.
	MaxDigits = 16
	// MaxIntensity is the brightest setting.
	MaxIntensity = 7
)

// Command bytes. These are the chip's I²C addresses shifted left, with the
// read flag in bit 0.
const (
	cmdControl byte = 0x24 << 1     // followed by the settings byte
	cmdKeyRead byte = 0x24<<1 | 0x1 // followed by one byte from the chip
	cmdDigit   byte = 0x34 << 1     // + 2*position, followed by segments
)

var (
	// ErrNoAck is returned when the chip did not acknowledge a byte.
	ErrNoAck = errors.New("tm1650: no acknowledge")
	// ErrTooLong is returned when text does not fit on the display.
	ErrTooLong = errors.New("tm1650: string is too long for the display")
	// ErrPosition is returned for a digit position outside the display.
	ErrPosition = errors.New("tm1650: digit position out of range")
)

// Mode selects 8-segment (with decimal point) or 7-segment operation.
type Mode uint8

const (
	// Mode8Segment drives all eight segment lines, including the dot.
	Mode8Segment Mode = 0
	// Mode7Segment ignores the dot segment.
	Mode7Segment Mode = 1
)

func (m Mode) String() string {
	if m == Mode7Segment {
		return "7-segment"
	}
	return "8-segment"
}

// Writer fills in the frame before each refresh. It runs with the device
// locked and must not call methods on the Dev.
type Writer func(f *Frame)

// Opts holds the configuration of a Dev.
type Opts struct {
	Length     int    // digits, clamped to 1..MaxDigits
	Intensity  uint8  // 0..MaxIntensity; 0 turns the display off
	Power      bool
	Mode       Mode
	Inverted   bool   // digits are wired right to left
	SegmentMap string // see ParseSegmentMap

	// Bit-bang transport only.
	BitDelay time.Duration // zero means DefaultBitDelay
	Pull     gpio.Pull     // pull used while a line is released
	PushPull bool          // drive lines high instead of releasing them

	Logger *zerolog.Logger // nil means no logging
}

// DefaultOpts suits the common 4-digit modules.
var DefaultOpts = Opts{
	Length:    4,
	Intensity: MaxIntensity,
	Power:     true,
	Mode:      Mode8Segment,
	BitDelay:  DefaultBitDelay,
	Pull:      gpio.PullNoChange,
}

// Settings is a snapshot of the display configuration.
type Settings struct {
	Intensity  uint8
	Power      bool
	Mode       Mode
	Length     int
	Inverted   bool
	SegmentMap SegmentMap
}

// Dev is a TM1650 display. It is safe for concurrent use; each refresh and
// each key scan holds the bus for its whole duration.
type Dev struct {
	mu sync.Mutex
	t  transport

	intensity uint8
	power     bool
	mode      Mode
	inverted  bool
	writer    Writer
	frame     Frame
	failed    bool

	log zerolog.Logger
}

// New returns a Dev that bit-bangs the protocol on clk and dio. The pins
// should have pull-ups, unless opts.PushPull is set. A nil opts uses
// DefaultOpts.
func New(clk, dio gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	b := newBus(clk, dio, opts)
	if err := b.idle(); err != nil {
		return nil, fmt.Errorf("tm1650: %w", err)
	}
	return newDev(b, opts), nil
}

// NewI2C returns a Dev on an I²C bus. The chip answers on several fixed
// addresses, so it cannot share the bus with devices at 0x24 or 0x34-0x37.
// A nil opts uses DefaultOpts.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	return newDev(&i2cBus{bus: b}, opts), nil
}

func newDev(t transport, opts *Opts) *Dev {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	d := &Dev{
		t:     t,
		power: opts.Power,
		log:   log,
	}
	d.setMode(opts.Mode)
	d.inverted = opts.Inverted
	d.frame.log = log
	d.setIntensity(opts.Intensity)
	d.setLength(opts.Length)
	d.frame.segments = ParseSegmentMap(opts.SegmentMap)
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("TM1650{%s}", d.t)
}

// SetIntensity sets the brightness, 0 (off) to MaxIntensity. Larger values
// are clamped. It takes effect on the next refresh.
func (d *Dev) SetIntensity(i uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setIntensity(i)
}

func (d *Dev) setIntensity(i uint8) {
	if i > MaxIntensity {
		d.log.Warn().Uint8("intensity", i).Msg("intensity clamped")
		i = MaxIntensity
	}
	d.intensity = i
}

// SetPower turns the display on or off from the next refresh.
func (d *Dev) SetPower(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.power = on
}

// SetMode selects 7- or 8-segment operation from the next refresh. Only the
// low bit of m is used.
func (d *Dev) SetMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setMode(m)
}

func (d *Dev) setMode(m Mode) {
	if m > Mode7Segment {
		d.log.Warn().Uint8("mode", uint8(m)).Stringer("using", m&1).Msg("unknown mode masked")
	}
	d.mode = m & 1
}

// SetLength sets the number of digits, clamped to 1..MaxDigits.
func (d *Dev) SetLength(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLength(n)
}

func (d *Dev) setLength(n int) {
	c := n
	if c < 1 {
		c = 1
	}
	if c > MaxDigits {
		c = MaxDigits
	}
	if c != n {
		d.log.Warn().Int("length", n).Int("clamped", c).Msg("display length clamped")
	}
	d.frame.length = c
}

// SetInverted reverses the digit order on the wire.
func (d *Dev) SetInverted(inv bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inverted = inv
}

// SetSegmentMap changes the segment wiring; see ParseSegmentMap. Text
// printed afterwards uses the new map.
func (d *Dev) SetSegmentMap(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.segments = ParseSegmentMap(s)
}

// SetWriter sets the function that draws each frame in Update. A nil w
// leaves the frame blank.
func (d *Dev) SetWriter(w Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writer = w
}

// Settings returns the current configuration.
func (d *Dev) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Settings{
		Intensity:  d.intensity,
		Power:      d.power,
		Mode:       d.mode,
		Length:     d.frame.length,
		Inverted:   d.inverted,
		SegmentMap: d.frame.segments,
	}
}

// Failed reports whether any transaction has failed since the Dev was
// created.
func (d *Dev) Failed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// DumpConfig logs the configuration.
func (d *Dev) DumpConfig() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log.Info().
		Uint8("intensity", d.intensity).
		Stringer("mode", d.mode).
		Bool("power", d.power).
		Int("length", d.frame.length).
		Bool("inverted", d.inverted).
		Stringer("segment_map", d.frame.segments).
		Stringer("bus", d.t).
		Msg("TM1650")
	if d.failed {
		d.log.Error().Msg("communication with TM1650 failed")
	}
}

// PrintAt prints s at digit pos; see Frame.PrintAt. The text is sent on the
// next Display, or replaced by the Writer on the next Update.
func (d *Dev) PrintAt(pos int, s string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame.PrintAt(pos, s)
}

// Print prints s from the leftmost digit.
func (d *Dev) Print(s string) (int, error) {
	return d.PrintAt(0, s)
}

// PrintfAt prints formatted text at digit pos.
func (d *Dev) PrintfAt(pos int, format string, a ...interface{}) (int, error) {
	return d.PrintAt(pos, fmt.Sprintf(format, a...))
}

// Printf prints formatted text from the leftmost digit.
func (d *Dev) Printf(format string, a ...interface{}) (int, error) {
	return d.PrintfAt(0, format, a...)
}

// PrintTimeAt prints t formatted with layout (see time.Time.Format) at
// digit pos.
func (d *Dev) PrintTimeAt(pos int, layout string, t time.Time) (int, error) {
	return d.PrintAt(pos, t.Format(layout))
}

// PrintTime prints t formatted with layout from the leftmost digit.
func (d *Dev) PrintTime(layout string, t time.Time) (int, error) {
	return d.PrintTimeAt(0, layout, t)
}

// Clear blanks the frame. The display changes on the next Display.
func (d *Dev) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.Clear()
}

// Update clears the frame, runs the Writer and sends the result.
func (d *Dev) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.Clear()
	if d.writer != nil {
		d.writer(&d.frame)
	}
	return d.display()
}

// Display sends the settings and the current frame.
func (d *Dev) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.display()
}

// settings packs the control byte: intensity in bits 4-6, 7-segment mode
// in bit 3, display on in bit 0.
func (d *Dev) settings() byte {
	b := d.intensity<<4 | byte(d.mode&1)<<3
	if d.power && d.intensity != 0 {
		b |= 1
	}
	return b
}

func (d *Dev) display() error {
	d.log.Trace().Hex("digits", d.frame.Bytes()).Msg("display")

	var errs []error
	if err := d.t.write(cmdControl, d.settings()); err != nil {
		errs = append(errs, err)
	}
	n := d.frame.length
	for p := 0; p < n; p++ {
		g := d.frame.buf[p]
		if d.inverted {
			g = d.frame.buf[n-1-p]
		}
		if err := d.t.write(cmdDigit+byte(p)<<1, g); err != nil {
			errs = append(errs, err)
		}
	}
	return d.fail(errors.Join(errs...))
}

// fail records err, if any, as a communication failure.
func (d *Dev) fail(err error) error {
	if err != nil {
		d.failed = true
		d.log.Error().Err(err).Msg("communication with TM1650 failed")
	}
	return err
}

// Halt turns the display off. The next refresh turns it back on if power is
// set.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fail(d.t.write(cmdControl, d.settings()&^1))
}

// CycleDigits animates a simple test pattern consisting of hex digits,
// until ctx is done.
func (d *Dev) CycleDigits(ctx context.Context) error {
	const hex = "0123456789ABCDEF"
	off := 0
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for {
		d.mu.Lock()
		d.frame.Clear()
		for i := 0; i < d.frame.length; i++ {
			g, _ := Glyph(rune(hex[(off+i)%len(hex)]))
			d.frame.buf[i] = d.frame.segments.Apply(g)
		}
		err := d.display()
		d.mu.Unlock()
		if err != nil {
			return err
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		off++
		off %= len(hex)
	}
}

var _ conn.Resource = &Dev{}
