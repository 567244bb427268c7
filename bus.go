package tm1650

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultBitDelay is the time allowed between two line transitions. It is
// far above the TM1650 setup and hold times, so the bus runs at a few kHz.
const DefaultBitDelay = 100 * time.Microsecond

// transport carries the two kinds of transaction the TM1650 understands: a
// command followed by one data byte, and a command followed by one byte read
// back from the chip.
type transport interface {
	fmt.Stringer
	write(cmd, data byte) error
	read(cmd byte) (byte, error)
}

// line is one side of the two-wire bus. The TM1650 lines are open drain, so
// a logical high is normally produced by releasing the pin and letting the
// pull-up do the work.
type line struct {
	pin gpio.PinIO
	bus *bus
}

func (l *line) low()  { l.bus.check(l.pin.Out(gpio.Low)) }
func (l *line) high() { l.bus.check(l.pin.Out(gpio.High)) }

// release switches the pin to an input so the other side (or the pull-up)
// decides the level.
func (l *line) release() { l.bus.check(l.pin.In(l.bus.pull, gpio.NoEdge)) }

// set drives the line low or lets it go high. On push-pull wiring high is
// driven rather than released.
func (l *line) set(v gpio.Level) {
	switch {
	case v == gpio.Low:
		l.low()
	case l.bus.pushPull:
		l.high()
	default:
		l.release()
	}
}

// read samples the line. Only meaningful while the pin is released.
func (l *line) read() gpio.Level { return l.pin.Read() }

// bus bit-bangs the TM1650 two-wire protocol over a pair of GPIO pins.
// Bytes go out MSB first. The methods are not safe for concurrent use; Dev
// serializes whole transactions.
type bus struct {
	clk, dio line

	delay    time.Duration
	pull     gpio.Pull
	pushPull bool

	// err is the first pin error seen in the current transaction.
	err error
}

func newBus(clk, dio gpio.PinIO, opts *Opts) *bus {
	b := &bus{
		delay:    opts.BitDelay,
		pull:     opts.Pull,
		pushPull: opts.PushPull,
	}
	if b.delay == 0 {
		b.delay = DefaultBitDelay
	}
	b.clk = line{pin: clk, bus: b}
	b.dio = line{pin: dio, bus: b}
	return b
}

func (b *bus) String() string {
	return fmt.Sprintf("clk=%s dio=%s", b.clk.pin, b.dio.pin)
}

func (b *bus) check(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// idle lets both lines float high.
func (b *bus) idle() error {
	b.err = nil
	b.clk.set(gpio.High)
	b.dio.set(gpio.High)
	return b.err
}

// bitDelay busy-waits for short delays; the scheduler cannot be trusted to
// wake a sleeping goroutine within 100µs.
func (b *bus) bitDelay() {
	if b.delay >= time.Millisecond {
		time.Sleep(b.delay)
		return
	}
	for t := time.Now(); time.Since(t) < b.delay; {
	}
}

// start pulls data low while the clock is still high, then takes the clock.
func (b *bus) start() {
	b.dio.low()
	b.bitDelay()
	b.clk.low()
	b.bitDelay()
}

// stop lets the clock rise and then the data line, leaving the bus idle.
func (b *bus) stop() {
	b.dio.low()
	b.bitDelay()
	b.clk.set(gpio.High)
	b.bitDelay()
	b.dio.set(gpio.High)
	b.bitDelay()
}

// sendByte shifts v out MSB first and clocks one acknowledge bit, which the
// chip signals by holding data low. On return the clock is driven low and
// data is held low after an ack, or released after a nack.
func (b *bus) sendByte(v byte) bool {
	for i := 7; i >= 0; i-- {
		b.clk.low()
		b.bitDelay()
		b.dio.set(gpio.Level(v&(1<<i) != 0))
		b.bitDelay()
		b.clk.set(gpio.High)
		b.bitDelay()
	}

	b.clk.low()
	b.dio.release()
	b.bitDelay()
	b.clk.set(gpio.High)
	b.bitDelay()
	ack := b.dio.read() == gpio.Low
	if ack {
		b.dio.low()
	}
	b.bitDelay()
	b.clk.low()
	b.bitDelay()
	return ack
}

// readByte clocks in one byte MSB first and answers with an acknowledge
// pulse. Data is left released.
func (b *bus) readByte() byte {
	b.clk.low()
	b.dio.release()

	var v byte
	for i := 0; i < 8; i++ {
		b.clk.set(gpio.High)
		b.bitDelay()
		v <<= 1
		if b.dio.read() == gpio.High {
			v |= 1
		}
		b.clk.low()
		b.bitDelay()
	}

	b.dio.low()
	b.clk.set(gpio.High)
	b.bitDelay()
	b.clk.low()
	b.bitDelay()
	b.dio.release()
	return v
}

func (b *bus) write(cmd, data byte) error {
	b.err = nil
	b.start()
	cmdAck := b.sendByte(cmd)
	dataAck := b.sendByte(data)
	b.stop()

	if b.err != nil {
		return fmt.Errorf("tm1650: command %#02x: %w", cmd, b.err)
	}
	if !cmdAck || !dataAck {
		return fmt.Errorf("%w: command %#02x", ErrNoAck, cmd)
	}
	return nil
}

func (b *bus) read(cmd byte) (byte, error) {
	b.err = nil
	b.start()
	ack := b.sendByte(cmd)
	v := b.readByte()
	b.stop()

	if b.err != nil {
		return 0, fmt.Errorf("tm1650: command %#02x: %w", cmd, b.err)
	}
	if !ack {
		return 0, fmt.Errorf("%w: command %#02x", ErrNoAck, cmd)
	}
	return v, nil
}
