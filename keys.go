package tm1650

import (
	"sync"
	"sync/atomic"
)

// KeyMask is set in every code the chip reports for a pressed key: bit 6
// flags a press and bit 2 is always one.
const KeyMask byte = 0b01000100

// maxKeyRow is the last segment line that can carry a key.
const maxKeyRow = 6

// KeyCode returns the code reported when the key between digit line dig
// (0-3) and segment line seg (0-6) is pressed.
func KeyCode(dig, seg int) byte {
	return KeyMask | byte(seg&7)<<3 | byte(dig&3)
}

// NormalizeKey returns raw if it encodes a key press, and 0 otherwise.
// Valid codes have KeyMask set, bit 7 clear and a segment line of at most 6,
// so they fall in 0x44-0x77.
func NormalizeKey(raw byte) byte {
	if raw&(KeyMask|0x80) != KeyMask || raw>>3&7 > maxKeyRow {
		return 0
	}
	return raw
}

// ReadKeys reads the key currently pressed. It returns 0 when no key is
// pressed or the read failed.
func (d *Dev) ReadKeys() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.t.read(cmdKeyRead)
	if err != nil {
		return 0, d.fail(err)
	}
	code := NormalizeKey(raw)
	d.log.Trace().Uint8("raw", raw).Uint8("code", code).Msg("keys")
	return code, nil
}

// Key is one key of a Keypad.
type Key struct {
	Name string
	Code byte

	pressed  atomic.Bool
	observer func(k *Key, pressed bool)
}

// Pressed reports the state seen by the last Scan. It may be called while
// another goroutine scans.
func (k *Key) Pressed() bool { return k.pressed.Load() }

// Keypad scans the keys wired to a Dev.
type Keypad struct {
	d *Dev

	mu   sync.Mutex
	keys []*Key
}

// NewKeypad returns a Keypad for d with no keys.
func NewKeypad(d *Dev) *Keypad {
	return &Keypad{d: d}
}

// Add registers a key with the given code (see KeyCode). observer, if not
// nil, is called after every Scan with the key's state, whether it changed
// or not. Observers run without the keypad locked, so they may call Keys or
// Add.
func (p *Keypad) Add(name string, code byte, observer func(k *Key, pressed bool)) *Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := &Key{Name: name, Code: code, observer: observer}
	p.keys = append(p.keys, k)
	return k
}

// Keys returns the registered keys in the order they were added.
func (p *Keypad) Keys() []*Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Key(nil), p.keys...)
}

// Scan reads the chip once and updates every key. When the read fails the
// keys keep their previous state and no observer is called.
func (p *Keypad) Scan() (byte, error) {
	code, err := p.d.ReadKeys()
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	keys := append([]*Key(nil), p.keys...)
	p.mu.Unlock()

	state := make([]bool, len(keys))
	for i, k := range keys {
		state[i] = code != 0 && code == k.Code
		k.pressed.Store(state[i])
	}
	for i, k := range keys {
		if k.observer != nil {
			k.observer(k, state[i])
		}
	}
	return code, nil
}
