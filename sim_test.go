package tm1650

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// simPin is one end of a simulated open-drain line.
type simPin struct {
	name   string
	chip   *simChip
	driven bool
	level  gpio.Level
	fail   error
}

func (p *simPin) String() string { return p.name }
func (p *simPin) Halt() error { return nil }
func (p *simPin) Name() string { return p.name }
func (p *simPin) Number() int { return -1 }
func (p *simPin) Function() string { return "" }

func (p *simPin) In(gpio.Pull, gpio.Edge) error {
	if p.fail != nil {
		return p.fail
	}
	p.driven = false
	p.chip.update()
	return nil
}

func (p *simPin) Read() gpio.Level { return p.chip.level(p) }
func (p *simPin) WaitForEdge(time.Duration) bool { return false }
func (p *simPin) Pull() gpio.Pull { return gpio.PullUp }
func (p *simPin) DefaultPull() gpio.Pull { return gpio.PullUp }
func (p *simPin) PWM(gpio.Duty, physic.Frequency) error { return errors.New("simPin: no PWM") }

func (p *simPin) Out(l gpio.Level) error {
	if p.fail != nil {
		return p.fail
	}
	p.driven = true
	p.level = l
	p.chip.update()
	return nil
}

var _ gpio.PinIO = &simPin{}

type simState int

const (
	simIdle   simState = iota
	simRecv            // clocking in a byte from the master
	simAck             // holding data low to acknowledge
	simTx              // clocking the key byte out to the master
	simTxAck           // waiting for the master's acknowledge
	simDone            // transaction over, waiting for STOP
)

// simChip decodes the bus the way a TM1650 would: it samples data on rising
// clock edges, acknowledges every byte, and answers the key read command
// with key.
type simChip struct {
	clk, dio *simPin

	deaf bool // never acknowledge
	key  byte

	pullLow          bool
	lastClk, lastDio gpio.Level

	state simState
	bits  int
	cur   byte
	txBit int
	frame []byte

	frames [][]byte // completed transactions
	rising int      // rising clock edges inside transactions
}

func newSimChip() *simChip {
	c := &simChip{lastClk: gpio.High, lastDio: gpio.High}
	c.clk = &simPin{name: "CLK", chip: c}
	c.dio = &simPin{name: "DIO", chip: c}
	return c
}

func (c *simChip) level(p *simPin) gpio.Level {
	if p.driven && p.level == gpio.Low {
		return gpio.Low
	}
	if p == c.dio && c.pullLow {
		return gpio.Low
	}
	return gpio.High
}

func (c *simChip) idle() bool {
	return c.level(c.clk) == gpio.High && c.level(c.dio) == gpio.High
}

func (c *simChip) update() {
	clk, dio := c.level(c.clk), c.level(c.dio)
	switch {
	case clk != c.lastClk:
		c.lastClk = clk
		if clk == gpio.High {
			c.rise(dio)
		} else {
			c.fall()
		}
	case dio != c.lastDio && clk == gpio.High:
		if dio == gpio.Low {
			c.state = simRecv
			c.bits, c.cur, c.frame = 0, 0, nil
		} else if c.state != simIdle {
			c.frames = append(c.frames, c.frame)
			c.state = simIdle
		}
	}
	c.lastDio = c.level(c.dio)
}

func (c *simChip) rise(dio gpio.Level) {
	if c.state == simIdle {
		return
	}
	c.rising++
	switch c.state {
	case simRecv:
		c.cur <<= 1
		if dio == gpio.High {
			c.cur |= 1
		}
		c.bits++
	case simTx:
		c.txBit++
	}
}

func (c *simChip) fall() {
	switch c.state {
	case simRecv:
		if c.bits < 8 {
			return
		}
		c.frame = append(c.frame, c.cur)
		c.bits, c.cur = 0, 0
		c.state = simAck
		c.pullLow = !c.deaf
	case simAck:
		c.pullLow = false
		c.state = simRecv
		if !c.deaf && len(c.frame) == 1 && c.frame[0] == cmdKeyRead {
			c.state = simTx
			c.txBit = 0
			c.pullLow = c.key&0x80 == 0
		}
	case simTx:
		if c.txBit < 8 {
			c.pullLow = c.key&(0x80>>c.txBit) == 0
			return
		}
		c.pullLow = false
		c.state = simTxAck
	case simTxAck:
		c.state = simDone
	}
}
