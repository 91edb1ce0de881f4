// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrECI is returned for ECI assignment numbers out of range.
var ErrECI = errors.New("qr: invalid eci number")

// Extended Channel Interpretation assignment numbers.
const (
	Latin1ECI   = 3   // ISO 8859-1
	ShiftJISECI = 20  // Shift JIS
	UTF16BEECI  = 25  // UTF-16, big endian
	UTF8ECI     = 26  // UTF-8
	ASCIIECI    = 27  // ISO/IEC 646 IRV
	BinaryECI   = 899 // 8-bit binary data

	MaxECI = 999999
)

// ECI designators and their character encodings.  Unlisted numbers
// up to MaxECI are valid; their data is taken as bytes.
var eciEncodings = map[int]encoding.Encoding{
	0:  charmap.CodePage437,
	1:  charmap.ISO8859_1,
	2:  charmap.CodePage437,
	3:  charmap.ISO8859_1,
	4:  charmap.ISO8859_2,
	5:  charmap.ISO8859_3,
	6:  charmap.ISO8859_4,
	7:  charmap.ISO8859_5,
	8:  charmap.ISO8859_6,
	9:  charmap.ISO8859_7,
	10: charmap.ISO8859_8,
	11: charmap.ISO8859_9,
	12: charmap.ISO8859_10,
	13: charmap.Windows874, // ISO 8859-11 is a subset
	15: charmap.ISO8859_13,
	16: charmap.ISO8859_14,
	17: charmap.ISO8859_15,
	18: charmap.ISO8859_16,
	20: japanese.ShiftJIS,
	21: charmap.Windows1250,
	22: charmap.Windows1251,
	23: charmap.Windows1252,
	24: charmap.Windows1256,
	25: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	28: traditionalchinese.Big5,
	29: simplifiedchinese.GB18030,
	30: korean.EUCKR,
}

// A Charset converts characters to byte mode data for an ECI.
// It is not safe for concurrent use.
type Charset struct {
	ECI   int  // ECI assignment number, 0 for none
	Kanji bool // kanji mode may be used

	enc   *encoding.Encoder // nil for UTF-8 and bytes
	bytes bool              // characters below 256 as bytes
	ascii bool              // 7 bit only
	buf   [utf8.UTFMax]byte
}

// NewCharset returns a Charset for the ECI assignment number.  Number
// 0 means no ECI: byte mode data is UTF-8.  Kanji mode is permitted
// without ECI and with the Shift JIS ECI, unless noKanji is set.
func NewCharset(eci int, noKanji bool) (*Charset, error) {
	if eci < 0 || eci > MaxECI {
		return nil, ErrECI
	}
	c := &Charset{ECI: eci, Kanji: !noKanji && (eci == 0 || eci == ShiftJISECI)}
	switch e, ok := eciEncodings[eci]; {
	case eci == 0 || eci == UTF8ECI:
	case eci == ASCIIECI || eci == 170:
		c.ascii = true
	case ok:
		c.enc = e.NewEncoder()
	default:
		c.bytes = true
	}
	return c, nil
}

// Encode returns the byte mode encoding of r, or false if r is not
// representable.  The returned slice is valid until the next call.
func (c *Charset) Encode(r rune) ([]byte, bool) {
	switch {
	case c.ascii:
		if r >= 0x80 {
			return nil, false
		}
		c.buf[0] = byte(r)
		return c.buf[:1], true
	case c.bytes:
		if r >= 0x100 {
			return nil, false
		}
		c.buf[0] = byte(r)
		return c.buf[:1], true
	case c.enc == nil:
		if r == utf8.RuneError || !utf8.ValidRune(r) {
			return nil, false
		}
		return c.buf[:utf8.EncodeRune(c.buf[:], r)], true
	}
	n := utf8.EncodeRune(c.buf[:], r)
	out, err := c.enc.Bytes(c.buf[:n])
	if err != nil || len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Designator returns the ECI mode Segment for the assignment number.
func Designator(eci int) (Segment, error) {
	seg := Segment{Mode: ECI}
	switch {
	case eci < 0 || eci > MaxECI:
		return Segment{}, ErrECI
	case eci < 1<<7:
		seg.Text = string([]byte{byte(eci)})
	case eci < 1<<14:
		seg.Text = string([]byte{0x80 | byte(eci>>8), byte(eci)})
	default:
		seg.Text = string([]byte{0xc0 | byte(eci>>16), byte(eci >> 8), byte(eci)})
	}
	return seg, nil
}

// ParseECI returns the assignment number in an ECI designator.
func ParseECI(s string) (int, bool) {
	if s == "" || len(s) != max(1, int(s[0]>>6)) {
		return 0, false
	}
	switch len(s) {
	case 1:
		return int(s[0]), true
	case 2:
		return int(s[0]&0x3f)<<8 | int(s[1]), true
	}
	if s[0]&0xe0 != 0xc0 {
		return 0, false
	}
	n := int(s[0]&0x1f)<<16 | int(s[1])<<8 | int(s[2])
	return n, n <= MaxECI
}
