// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// A Mode is a QR segment encoding mode.
type Mode uint8

// Encoding modes.  The first four are the text modes chosen by Split.
const (
	Numeric      Mode = iota // digits 0-9
	Alphanumeric             // digits, upper case letters, " $%*+-./:"
	Byte                     // any bytes
	Kanji                    // Shift JIS double byte characters
	ECI                      // ECI designator, raw segment
	StructuredAppend         // structured append header, raw segment
)

// MaxSymbols is the maximum number of symbols in a structured append
// sequence.
const MaxSymbols = 16

// TextModes lists the modes Split chooses from.
var TextModes = []Mode{Numeric, Alphanumeric, Byte, Kanji}

// modeEncoder describes a segment encoding.
type modeEncoder struct {
	name      string
	indicator byte // 4 bit mode indicator for QR codes

	// countLength lists lengths of the character count field in four
	// Micro QR and three QR version size classes.  Zero means the
	// mode has no count field.
	countLength [7]byte

	// bits returns the encoded length in bits of count characters.
	bits func(count int) int

	// encode3, encode2 and encode1 return the encoding of the bytes
	// and its length in bits.  The encoder calls a non-nil encode{N}
	// repeatedly as long as N source bytes are available, in
	// descending order of N.  If all are nil, each byte is encoded as
	// 8 bits.
	encode3 func([3]byte) (uint32, int)
	encode2 func([2]byte) (uint32, int)
	encode1 func(byte) (uint32, int)
}

const alphamask uint64 = 0x07fffffe_07ffec31 // SPACE $% *+ -./ [0-9] : [A-Z]

// Alphanumeric encoding table, indexed by the low 6 bits of the
// character.  Used after validation.
// "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
var alpha = [64]byte{
	00, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, // 0x40
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 00, 00, 00, 00, 00, // 0x50
	36, 00, 00, 00, 37, 38, 00, 00, 00, 00, 39, 40, 00, 41, 42, 43, // 0x20
	00, 01, 02, 03, 04, 05, 06, 07, 010, 9, 44, 00, 00, 00, 00, 00, // 0x30
}

// IsNumeric reports whether r is encodable in numeric mode.
func IsNumeric(r rune) bool { return uint32(r-'0') < 10 }

// IsAlphanumeric reports whether r is encodable in alphanumeric mode.
func IsAlphanumeric(r rune) bool {
	return uint32(r-' ') < 64 && alphamask>>(uint32(r)-' ')&1 != 0
}

var modes = [...]modeEncoder{
	Numeric: {
		name:        "numeric",
		indicator:   1,
		countLength: [7]byte{3, 4, 5, 6, 10, 12, 14},
		bits:        func(n int) int { return (10*n + 2) / 3 },
		encode1: func(b byte) (uint32, int) {
			return uint32(b - '0'), 4
		},
		encode2: func(b [2]byte) (uint32, int) {
			return uint32(b[0]-'0')*10 + uint32(b[1]-'0'), 7
		},
		encode3: func(b [3]byte) (uint32, int) {
			return uint32(b[0]-'0')*100 + uint32(b[1]-'0')*10 +
				uint32(b[2]-'0'), 10
		},
	},
	Alphanumeric: {
		name:        "alphanumeric",
		indicator:   2,
		countLength: [7]byte{0, 3, 4, 5, 9, 11, 13},
		bits:        func(n int) int { return (11*n + 1) / 2 },
		encode1: func(b byte) (uint32, int) {
			return uint32(alpha[b&0x3f]), 6
		},
		encode2: func(b [2]byte) (uint32, int) {
			return uint32(alpha[b[0]&0x3f])*45 +
				uint32(alpha[b[1]&0x3f]), 11
		},
	},
	Byte: {
		name:        "byte",
		indicator:   4,
		countLength: [7]byte{0, 0, 4, 5, 8, 16, 16},
		bits:        func(n int) int { return n * 8 },
	},
	Kanji: {
		name:        "kanji",
		indicator:   8,
		countLength: [7]byte{0, 0, 3, 4, 8, 10, 12},
		bits:        func(n int) int { return n * 13 },
		encode2: func(b [2]byte) (uint32, int) {
			return uint32(b[0]&^0xc0)*0xc0 + uint32(b[1]) - 0x100,
				13
		},
	},
	ECI: {
		name:      "eci",
		indicator: 7,
		bits:      func(n int) int { return n * 8 },
	},
	StructuredAppend: {
		name:      "structured append",
		indicator: 3,
		bits:      func(n int) int { return n * 8 },
	},
}

func (m Mode) String() string {
	if int(m) < len(modes) {
		return modes[m].name
	}
	return strconv.Itoa(int(m))
}

// indicator returns the mode indicator and its length in bits for
// the size class, or false if the mode is not available in it.
func (m Mode) indicator(class int) (uint32, int, bool) {
	ind := uint32(modes[m].indicator)
	if class >= Class0 {
		return ind, 4, true
	}
	// Micro QR: numeric 0, alphanumeric 1, byte 2, kanji 3,
	// in class bits.
	ii := ind>>1 - ind>>3
	if ind&(ind-1) != 0 || ii >= 1<<class {
		return 0, 0, false
	}
	return ii, class, true
}

// Available reports whether m can be used in the size class.
func (m Mode) Available(class int) bool {
	_, _, ok := m.indicator(class)
	return ok
}

// HeaderBits returns the length of the segment header, mode
// indicator and character count, in the size class.
func (m Mode) HeaderBits(class int) int {
	_, n, _ := m.indicator(class)
	return n + int(modes[m].countLength[class])
}

// MaxCount returns the maximum character count of a segment in the
// size class.
func (m Mode) MaxCount(class int) int {
	switch m {
	case ECI:
		return 3
	case StructuredAppend:
		return 2
	}
	return 1<<modes[m].countLength[class] - 1
}

// A Segment describes a QR code segment.
//
// Text holds the data as encoded: ASCII for numeric and alphanumeric
// modes, raw bytes for byte mode, Shift JIS for kanji mode and the
// designator for ECI mode.
type Segment struct {
	Text string // data to encode
	Mode Mode   // encoding mode
}

// SegmentError represents an invalid Segment.
type SegmentError Segment

func (e SegmentError) Error() string {
	if int(e.Mode) < len(modes) {
		return fmt.Sprintf("qr: non-%s string %#q", e.Mode, e.Text)
	}
	return fmt.Sprintf("qr: invalid mode %d", e.Mode)
}

// CompatError represents an incompatibility between Mode and Version.
type CompatError struct {
	Mode
	Version
}

func (e CompatError) Error() string {
	return fmt.Sprintf("qr: mode %s not encodable in version %s",
		e.Mode, e.Version)
}

// count returns the character count of seg.
func (seg Segment) count() int {
	if seg.Mode == Kanji {
		return len(seg.Text) / 2
	}
	return len(seg.Text)
}

// IsValid reports whether seg is encodable.
func (seg Segment) IsValid() bool {
	s := seg.Text
	switch seg.Mode {
	case Numeric:
		for i := 0; i < len(s); i++ {
			if !IsNumeric(rune(s[i])) {
				return false
			}
		}
	case Alphanumeric:
		for i := 0; i < len(s); i++ {
			if !IsAlphanumeric(rune(s[i])) {
				return false
			}
		}
	case Byte:
	case Kanji:
		if len(s)&1 != 0 {
			return false
		}
		for i := 0; i < len(s); i += 2 {
			if !isKanjiCode(uint16(s[i])<<8 | uint16(s[i+1])) {
				return false
			}
		}
	case ECI:
		_, ok := ParseECI(s)
		return ok
	case StructuredAppend:
		return len(s) == 2 && s[0]>>4 <= s[0]&0xf
	default:
		return false
	}
	return true
}

// EncodedLength returns the encoded length in bits of seg in the
// given QR version size class, including the header.  The segment is
// not validated.
func (seg Segment) EncodedLength(class int) int {
	if int(seg.Mode) >= len(modes) {
		return 0
	}
	if seg.Mode == ECI || seg.Mode == StructuredAppend {
		return 4 + len(seg.Text)*8
	}
	return seg.Mode.HeaderBits(class) + modes[seg.Mode].bits(seg.count())
}

// Encode writes seg encoded for the given QR version size class to b.
func (seg Segment) Encode(b *Bits, class int) error {
	if !seg.IsValid() {
		return SegmentError(seg)
	}
	ind, ilen, ok := seg.Mode.indicator(class)
	if !ok || seg.count() > seg.Mode.MaxCount(class) {
		v := Version(class) + M1
		if class >= Class0 {
			v, _ = ClassRange(class)
		}
		return CompatError{seg.Mode, v}
	}
	m := &modes[seg.Mode]
	// write header
	b.Write(ind, ilen)
	if n := int(m.countLength[class]); n != 0 {
		b.Write(uint32(seg.count()), n)
	}
	// encode the string
	s := seg.Text
	if m.encode3 == nil && m.encode2 == nil && m.encode1 == nil {
		for i := 0; i < len(s); i++ {
			b.Write(uint32(s[i]), 8)
		}
		return nil
	}
	if m.encode3 != nil {
		for ; len(s) >= 3; s = s[3:] {
			b.Write(m.encode3([3]byte{s[0], s[1], s[2]}))
		}
	}
	if m.encode2 != nil {
		for ; len(s) >= 2; s = s[2:] {
			b.Write(m.encode2([2]byte{s[0], s[1]}))
		}
	}
	if m.encode1 != nil {
		for ; len(s) >= 1; s = s[1:] {
			b.Write(m.encode1(s[0]))
		}
	}
	if s != "" {
		panic("qr: " + m.name + " mode internal error")
	}
	return nil
}

// AppendHeader returns the structured append header of symbol index
// in a sequence of total symbols whose data bytes xor to parity.
func AppendHeader(index, total int, parity byte) (Segment, error) {
	if total < 1 || total > MaxSymbols || index < 0 || index >= total {
		return Segment{}, fmt.Errorf("qr: symbol %d of %d", index, total)
	}
	return Segment{string([]byte{byte(index<<4 | (total - 1)), parity}), StructuredAppend}, nil
}

// Parity returns the xor of the data bytes of the text mode segments,
// as used in structured append headers.
func Parity(segs ...Segment) byte {
	var p byte
	for _, seg := range segs {
		if seg.Mode > Kanji {
			continue
		}
		for i := 0; i < len(seg.Text); i++ {
			p ^= seg.Text[i]
		}
	}
	return p
}

// isKanjiCode reports whether the double byte Shift JIS code c is in
// the range encodable in kanji mode.
func isKanjiCode(c uint16) bool {
	lo := c & 0xff
	return (0x8140 <= c && c <= 0x9ffc || 0xe040 <= c && c <= 0xebbf) &&
		lo >= 0x40 && lo != 0x7f && lo <= 0xfc
}

// kanjiTable maps runes to Shift JIS codes encodable in kanji mode.
// It is built from the x/text Shift JIS decoder on first use.
var kanjiTable = sync.OnceValue(func() map[rune]uint16 {
	t := make(map[rune]uint16, 7000)
	dec := japanese.ShiftJIS.NewDecoder()
	var buf [2]byte
	for hi := 0x81; hi <= 0xeb; hi++ {
		if hi == 0xa0 {
			hi = 0xe0
		}
		for lo := 0x40; lo <= 0xfc; lo++ {
			c := uint16(hi<<8 | lo)
			if !isKanjiCode(c) {
				continue
			}
			buf[0], buf[1] = byte(hi), byte(lo)
			out, err := dec.Bytes(buf[:])
			if err != nil {
				continue
			}
			r := []rune(string(out))
			if len(r) != 1 || r[0] == utf8.RuneError {
				continue
			}
			if _, dup := t[r[0]]; !dup {
				t[r[0]] = c
			}
		}
	}
	return t
})

// KanjiCode returns the Shift JIS code of r if r is encodable in kanji
// mode.
func KanjiCode(r rune) (uint16, bool) {
	if r < 0x80 {
		return 0, false
	}
	c, ok := kanjiTable()[r]
	return c, ok
}

// IsKanji reports whether r is encodable in kanji mode.
func IsKanji(r rune) bool {
	_, ok := KanjiCode(r)
	return ok
}
