package tm1650

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// i2cBus drives the chip through a real I²C controller. The TM1650 command
// bytes are 8-bit I²C addresses: the top seven bits select the register and
// the low bit is the read flag, so a write(cmd, data) is a one byte write to
// address cmd>>1.
type i2cBus struct {
	bus i2c.Bus
}

func (t *i2cBus) String() string { return t.bus.String() }

func (t *i2cBus) write(cmd, data byte) error {
	if err := t.bus.Tx(uint16(cmd>>1), []byte{data}, nil); err != nil {
		return fmt.Errorf("tm1650: command %#02x: %w", cmd, err)
	}
	return nil
}

func (t *i2cBus) read(cmd byte) (byte, error) {
	var r [1]byte
	if err := t.bus.Tx(uint16(cmd>>1), nil, r[:]); err != nil {
		return 0, fmt.Errorf("tm1650: command %#02x: %w", cmd, err)
	}
	return r[0], nil
}
