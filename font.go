package tm1650

import "strings"

const (
	// UnknownGlyph is used for characters the display cannot show.
	UnknownGlyph byte = 0b11111111
	// DotSegment is the decimal point.
	DotSegment byte = 0b10000000
)

// Glyph bits, MSB first: P C E D A F G B.
//
//	    A
//	   ---
//	F |   | B
//	   -G-
//	E |   | C
//	   ---
//	    D   P
const segmentOrder = "PCEDAFGB"

// asciiGlyphs covers ' ' (0x20) through '~' (0x7E).
var asciiGlyphs = [...]byte{
	//PCEDAFGB
	0b00000000,   // ' '
	0b11000001,   // '!'
	0b00000101,   // '"'
	UnknownGlyph, // '#'
	UnknownGlyph, // '$'
	0b00011010,   // '%'
	UnknownGlyph, // '&'
	0b00000100,   // '\''
	0b00111100,   // '('
	0b01011001,   // ')'
	0b00001000,   // '*'
	UnknownGlyph, // '+'
	0b01000000,   // ','
	0b00000010,   // '-'
	0b10000000,   // '.'
	UnknownGlyph, // '/'
	0b01111101,   // '0'
	0b01000001,   // '1'
	0b00111011,   // '2'
	0b01011011,   // '3'
	0b01000111,   // '4'
	0b01011110,   // '5'
	0b01111110,   // '6'
	0b01001001,   // '7'
	0b01111111,   // '8'
	0b01011111,   // '9'
	0b00011000,   // ':'
	0b01011000,   // ';'
	UnknownGlyph, // '<'
	UnknownGlyph, // '='
	UnknownGlyph, // '>'
	0b00101011,   // '?'
	0b00111111,   // '@'
	0b01101111,   // 'A'
	0b01110110,   // 'B'
	0b00111100,   // 'C'
	0b01110011,   // 'D'
	0b00111110,   // 'E'
	0b00101110,   // 'F'
	0b01111100,   // 'G'
	0b01100111,   // 'H'
	0b01000001,   // 'I'
	0b01110001,   // 'J'
	UnknownGlyph, // 'K'
	0b00110100,   // 'L'
	UnknownGlyph, // 'M'
	0b01100010,   // 'N'
	0b01111101,   // 'O'
	0b00101111,   // 'P'
	0b11111101,   // 'Q'
	0b00100010,   // 'R'
	0b01011110,   // 'S'
	0b00100110,   // 'T'
	0b01110101,   // 'U'
	0b01110101,   // 'V'
	0b01110111,   // 'W'
	UnknownGlyph, // 'X'
	0b00100111,   // 'Y'
	0b00111011,   // 'Z'
	0b00111100,   // '['
	UnknownGlyph, // '\\'
	0b01011001,   // ']'
	UnknownGlyph, // '^'
	0b00010000,   // '_'
	0b00000001,   // '`'
	0b01101111,   // 'a'
	0b01110110,   // 'b'
	0b00110010,   // 'c'
	0b01110011,   // 'd'
	0b00111110,   // 'e'
	0b00101110,   // 'f'
	0b01111100,   // 'g'
	0b01100110,   // 'h'
	0b01000000,   // 'i'
	0b01110001,   // 'j'
	UnknownGlyph, // 'k'
	0b00110100,   // 'l'
	UnknownGlyph, // 'm'
	0b01100010,   // 'n'
	0b01110010,   // 'o'
	0b00101111,   // 'p'
	UnknownGlyph, // 'q'
	0b00100010,   // 'r'
	0b01011110,   // 's'
	0b00100110,   // 't'
	0b01110000,   // 'u'
	0b01110000,   // 'v'
	UnknownGlyph, // 'w'
	UnknownGlyph, // 'x'
	0b00100111,   // 'y'
	UnknownGlyph, // 'z'
	0b01000011,   // '{'
	0b00100100,   // '|'
	0b00100110,   // '}'
	0b00001111,   // '~', drawn as a degree sign
}

// Glyph returns the segments for r. ok is false, and the glyph is
// UnknownGlyph, when r cannot be shown.
func Glyph(r rune) (g byte, ok bool) {
	if r < ' ' || r > '~' {
		return UnknownGlyph, false
	}
	g = asciiGlyphs[r-' ']
	return g, g != UnknownGlyph
}

// SegmentMap translates glyph bits to the bits a particular board is wired
// to. Entry i holds the output bits for glyph bit i.
type SegmentMap [8]byte

// IdentityMap leaves glyphs unchanged.
var IdentityMap = SegmentMap{1 << 0, 1 << 1, 1 << 2, 1 << 3, 1 << 4, 1 << 5, 1 << 6, 1 << 7}

// ParseSegmentMap builds a SegmentMap from a string of segment letters. The
// string lists, from glyph bit 7 down to glyph bit 0, the segment that bit
// should light, so "PCEDAFGB" is the identity. Letters A to G name a
// segment; any other character stands for the decimal point. Only the first
// 8 characters are used, and bits the string does not reach map to the
// decimal point. The empty string gives IdentityMap.
func ParseSegmentMap(s string) SegmentMap {
	if s == "" {
		return IdentityMap
	}
	if len(s) > len(SegmentMap{}) {
		s = s[:len(SegmentMap{})]
	}
	var m SegmentMap
	for i := range m {
		m[i] = DotSegment
	}
	for i := 0; i < len(s); i++ {
		c := s[len(s)-1-i]
		if c >= 'A' && c <= 'G' {
			m[i] = 1 << (7 - strings.IndexByte(segmentOrder, c))
		}
	}
	return m
}

// Apply remaps a glyph.
func (m SegmentMap) Apply(g byte) byte {
	var out byte
	for s := range m {
		if g&(1<<s) != 0 {
			out |= m[s]
		}
	}
	return out
}

// String returns the map in the form accepted by ParseSegmentMap. Entries
// that are not a single segment print as 'P'.
func (m SegmentMap) String() string {
	var sb strings.Builder
	for i := len(m) - 1; i >= 0; i-- {
		c := byte('P')
		for b := 0; b < 7; b++ {
			if m[i] == 1<<b {
				c = segmentOrder[7-b]
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
