package tm1650

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
)

func testOpts() *Opts {
	o := DefaultOpts
	o.BitDelay = time.Nanosecond
	return &o
}

func newTestBus(t *testing.T, c *simChip, opts *Opts) *bus {
	t.Helper()
	d, err := New(c.clk, c.dio, opts)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	return d.t.(*bus)
}

func TestSendByteClocks(t *testing.T) {
	c := newSimChip()
	b := newTestBus(t, c, testOpts())

	b.start()
	if !b.sendByte(0x00) {
		t.Fatal("sendByte(0x00) = false, want ack")
	}
	if c.rising != 9 {
		t.Errorf("rising clock edges = %d, want 9", c.rising)
	}
}

func TestSendByteAckState(t *testing.T) {
	c := newSimChip()
	b := newTestBus(t, c, testOpts())

	b.start()
	if !b.sendByte(0xA5) {
		t.Fatal("sendByte = false, want ack")
	}
	if !c.clk.driven || c.clk.level != gpio.Low {
		t.Error("clock not driven low after ack")
	}
	if !c.dio.driven || c.dio.level != gpio.Low {
		t.Error("data not held low after ack")
	}
}

func TestSendByteNoAck(t *testing.T) {
	c := newSimChip()
	c.deaf = true
	b := newTestBus(t, c, testOpts())

	b.start()
	if b.sendByte(0xA5) {
		t.Fatal("sendByte = true, want no ack")
	}
	if !c.clk.driven || c.clk.level != gpio.Low {
		t.Error("clock not driven low after nack")
	}
	if c.dio.driven {
		t.Error("data driven after nack, want released")
	}
}

func TestWrite(t *testing.T) {
	for _, pushPull := range []bool{false, true} {
		c := newSimChip()
		opts := testOpts()
		opts.PushPull = pushPull
		b := newTestBus(t, c, opts)

		if err := b.write(0x48, 0xA5); err != nil {
			t.Fatalf("pushPull=%v: write err = %v", pushPull, err)
		}
		if err := b.write(0x6A, 0x01); err != nil {
			t.Fatalf("pushPull=%v: write err = %v", pushPull, err)
		}
		want := [][]byte{{0x48, 0xA5}, {0x6A, 0x01}}
		if !reflect.DeepEqual(c.frames, want) {
			t.Errorf("pushPull=%v: frames = %x, want %x", pushPull, c.frames, want)
		}
		if !c.idle() {
			t.Errorf("pushPull=%v: bus not idle after write", pushPull)
		}
	}
}

func TestWriteNoAck(t *testing.T) {
	c := newSimChip()
	c.deaf = true
	b := newTestBus(t, c, testOpts())

	err := b.write(0x48, 0x71)
	if !errors.Is(err, ErrNoAck) {
		t.Fatalf("write err = %v, want ErrNoAck", err)
	}
	// The transaction still runs to the end.
	if want := [][]byte{{0x48, 0x71}}; !reflect.DeepEqual(c.frames, want) {
		t.Errorf("frames = %x, want %x", c.frames, want)
	}
	if !c.idle() {
		t.Error("bus not idle after failed write")
	}
}

func TestRead(t *testing.T) {
	c := newSimChip()
	c.key = 0x5D
	b := newTestBus(t, c, testOpts())

	got, err := b.read(cmdKeyRead)
	if err != nil {
		t.Fatalf("read err = %v", err)
	}
	if got != 0x5D {
		t.Errorf("read = %#02x, want 0x5d", got)
	}
	if want := [][]byte{{cmdKeyRead}}; !reflect.DeepEqual(c.frames, want) {
		t.Errorf("frames = %x, want %x", c.frames, want)
	}
	if !c.idle() {
		t.Error("bus not idle after read")
	}
	if c.dio.driven {
		t.Error("data still driven after read")
	}
}

func TestPinError(t *testing.T) {
	c := newSimChip()
	b := newTestBus(t, c, testOpts())

	errPin := errors.New("pin gone")
	c.dio.fail = errPin
	err := b.write(0x48, 0x71)
	if !errors.Is(err, errPin) {
		t.Fatalf("write err = %v, want %v", err, errPin)
	}

	c.dio.fail = nil
	if err := b.write(0x48, 0x71); err != nil {
		t.Errorf("write after recovery err = %v", err)
	}
}

func TestNewPinError(t *testing.T) {
	c := newSimChip()
	c.clk.fail = errors.New("busy")
	if _, err := New(c.clk, c.dio, testOpts()); err == nil {
		t.Error("New() err = nil, want error")
	}
}
