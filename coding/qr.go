// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements the QR and Micro QR symbologies on top of
// the segmentation, error correction and grid engines.
//
// The encoder runs in stages: segments are written into a bit buffer,
// the buffer is terminated, padded and split into blocks, check
// codewords are appended to every block, the blocks are interleaved,
// the resulting stream is placed into the symbol grid, a mask is
// chosen and applied, and finally the format and version information
// is written.
package coding // import "github.com/unixdj/matrix/coding"

import (
	"errors"
	"strconv"
)

var (
	ErrLevel   = errors.New("qr: invalid level")
	ErrVersion = errors.New("qr: invalid version")
	ErrTooLong = errors.New("qr: data too long for version")
)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side,
// a Micro QR code with version Mv 2v+9 modules.
// Versions run in two sequences, from M1 to M4 and from 1 to 40:
// the larger the version, the more information the code can store.
type Version int

// Code versions.
const (
	// Micro QR versions
	M1 Version = MaxVersion + 1 + iota
	M2
	M3
	M4

	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string {
	if v >= M1 && v <= M4 {
		return []string{"M1", "M2", "M3", "M4"}[v-M1]
	}
	return strconv.Itoa(int(v))
}

// IsValid reports whether v is a QR or Micro QR version.
func (v Version) IsValid() bool { return MinVersion <= v && v <= M4 }

// IsMicro reports whether v is a Micro QR version.
func (v Version) IsMicro() bool { return v >= M1 }

// Micro QR and QR version size classes.
const (
	ClassM1 = iota // Micro QR version M1
	ClassM2        // Micro QR version M2
	ClassM3        // Micro QR version M3
	ClassM4        // Micro QR version M4
	Class0         // QR versions 1 to 9
	Class1         // QR versions 10 to 26
	Class2         // QR versions 27 to 40
)

// SizeClass returns the size class of v, as documented under ClassM1.
// The size class determines the lengths of character count fields.
func (v Version) SizeClass() int {
	switch {
	case v <= 9:
		return Class0
	case v <= 26:
		return Class1
	case v <= 40:
		return Class2
	}
	return int(v - M1)
}

// ClassRange returns the lowest and highest QR version in the size
// class, which must be one of Class0, Class1 or Class2.
func ClassRange(class int) (Version, Version) {
	return [3]Version{1, 10, 27}[class-Class0], [3]Version{9, 26, 40}[class-Class0]
}

// Size returns the number of modules on a side.
func (v Version) Size() int {
	if v.IsMicro() {
		return int(v-M1)*2 + 11
	}
	return int(v)*4 + 17
}

// Bytes returns the total number of codewords.
func (v Version) Bytes() int { return vtab[v].bytes }

// dataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) dataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.bytes - lev.nblock*lev.check
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
// Micro QR versions M1 and M3 end in a 4 bit data codeword.
func (v Version) DataBits(l Level) int {
	n := v.dataBytes(l) * 8
	if v >= M1 && n != 0 {
		n -= int(v) & 1 << 2
	}
	return n
}

// Supports reports whether level l is available in version v.
func (v Version) Supports(l Level) bool {
	return v.IsValid() && l.IsValid() && v.dataBytes(l) != 0
}

// Blocks returns the number of error correction blocks and check
// codewords per block.
func (v Version) Blocks(l Level) (nblock, check int) {
	lev := vtab[v].level[l]
	return lev.nblock, lev.check
}

// alignment returns the centres of the alignment patterns on
// either axis, including the timing pattern row 6.
func (v Version) alignment() []int {
	vt := &vtab[v]
	if vt.align == 0 {
		return nil
	}
	c := []int{6}
	for p := vt.align; p <= v.Size()-7; p += vt.astep {
		c = append(c, p)
		if vt.astep == 0 {
			break
		}
	}
	return c
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 7% of codewords can be restored
	M              // 15%
	Q              // 25%
	H              // 30%
)

func (l Level) String() string {
	if l.IsValid() {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is one of L, M, Q and H.
func (l Level) IsValid() bool { return L <= l && l <= H }

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	for l := L; l <= H; l++ {
		if s == l.String() || len(s) == 1 && s[0]|0x20 == "lmqh"[l] {
			return l, nil
		}
	}
	return 0, ErrLevel
}

// ParseVersion parses a version: 1 to 40 or M1 to M4.
func ParseVersion(s string) (Version, error) {
	if len(s) == 2 && s[0]|0x20 == 'm' && '1' <= s[1] && s[1] <= '4' {
		return M1 + Version(s[1]-'1'), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(MinVersion) || n > int(MaxVersion) {
		return 0, ErrVersion
	}
	return Version(n), nil
}
