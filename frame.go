package tm1650

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Frame is the digit buffer sent to the display on each refresh. Position 0
// is the leftmost digit.
type Frame struct {
	buf      [MaxDigits]byte
	length   int
	segments SegmentMap
	log      zerolog.Logger
}

// Len returns the number of digits.
func (f *Frame) Len() int { return f.length }

// Clear blanks every digit.
func (f *Frame) Clear() {
	f.buf = [MaxDigits]byte{}
}

// Bytes returns a copy of the segments for each digit, after remapping.
func (f *Frame) Bytes() []byte {
	b := make([]byte, f.length)
	copy(b, f.buf[:f.length])
	return b
}

// Set writes raw segments at pos. The segment map is not applied.
func (f *Frame) Set(pos int, segs byte) error {
	if pos < 0 || pos >= f.length {
		return fmt.Errorf("%w: position %d, length %d", ErrPosition, pos, f.length)
	}
	f.buf[pos] = segs
	return nil
}

// PrintAt writes s starting at digit pos and returns the number of digits
// written. A '.' following a character lights that digit's decimal point
// instead of taking a digit of its own. Characters without a glyph are
// logged and shown as UnknownGlyph. If s does not fit, the digits that fit
// are written and ErrTooLong is returned.
func (f *Frame) PrintAt(pos int, s string) (int, error) {
	rs := []rune(s)
	n := 0
	for i := 0; i < len(rs); i++ {
		g, ok := Glyph(rs[i])
		if !ok {
			f.log.Warn().Str("char", string(rs[i])).Msg("character has no TM1650 representation")
		}
		if i+1 < len(rs) && rs[i+1] == '.' {
			g |= DotSegment
			i++
		}

		p := pos + n
		if p < 0 || p >= f.length {
			f.log.Error().Str("text", s).Int("pos", pos).Int("length", f.length).Msg("string is too long for the display")
			return n, fmt.Errorf("%w: %q at position %d, length %d", ErrTooLong, s, pos, f.length)
		}
		f.buf[p] = f.segments.Apply(g)
		n++
	}
	return n, nil
}

// Print writes s from the leftmost digit.
func (f *Frame) Print(s string) (int, error) {
	return f.PrintAt(0, s)
}

// PrintfAt formats according to format and prints the result at pos.
func (f *Frame) PrintfAt(pos int, format string, a ...interface{}) (int, error) {
	return f.PrintAt(pos, fmt.Sprintf(format, a...))
}

// Printf formats according to format and prints the result from the
// leftmost digit.
func (f *Frame) Printf(format string, a ...interface{}) (int, error) {
	return f.PrintAt(0, fmt.Sprintf(format, a...))
}

// PrintTimeAt prints t formatted with layout (see time.Time.Format) at pos.
func (f *Frame) PrintTimeAt(pos int, layout string, t time.Time) (int, error) {
	return f.PrintAt(pos, t.Format(layout))
}

// PrintTime prints t formatted with layout from the leftmost digit.
func (f *Frame) PrintTime(layout string, t time.Time) (int, error) {
	return f.PrintAt(0, t.Format(layout))
}
