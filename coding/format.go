// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"math/bits"

	"github.com/unixdj/matrix/grid"
)

// BCH generator polynomials and format information masks.
const (
	formatPoly  = 0x537  // x¹⁰+x⁸+x⁵+x⁴+x²+x+1
	versionPoly = 0x1f25 // x¹²+x¹¹+x¹⁰+x⁹+x⁸+x⁵+x²+1
	formatMask  = 0x5412
	microMask   = 0x4445
)

// bch returns data with its BCH check bits appended.
func bch(data, poly uint32) uint32 {
	deg := bits.Len32(poly) - 1
	r := data << deg
	for n := bits.Len32(r); n > deg; n = bits.Len32(r) {
		r ^= poly << (n - 1 - deg)
	}
	return data<<deg | r
}

// symbolNumber returns the Micro QR symbol number of v and l,
// 0 for M1 to 7 for M4-Q.
func symbolNumber(v Version, l Level) int {
	return max(int(v-M1)*2-1+int(l), 0)
}

// FormatInfo returns the 15 bit format information of a symbol of
// version v and level l with mask pattern mask.
func FormatInfo(v Version, l Level, mask int) uint32 {
	if v.IsMicro() {
		return bch(uint32(symbolNumber(v, l)<<2|mask), formatPoly) ^ microMask
	}
	return bch(uint32(int(l^1)<<3|mask), formatPoly) ^ formatMask
}

// VersionInfo returns the 18 bit version information of v, which
// must be at least 7.
func VersionInfo(v Version) uint32 { return bch(uint32(v), versionPoly) }

// writeFormat writes the format information into the reserved area.
// Bit 0 is the least significant.
func writeFormat(g *grid.Grid, v Version, info uint32) {
	siz := g.Size
	bit := func(i int) bool { return info>>i&1 != 0 }
	if v.IsMicro() {
		for i := 0; i < 8; i++ {
			g.SetMeta(8, i+1, bit(i))
		}
		for i := 8; i < 15; i++ {
			g.SetMeta(15-i, 8, bit(i))
		}
		return
	}
	for i := 0; i < 15; i++ {
		b := bit(i)
		switch {
		case i < 6:
			g.SetMeta(8, i, b)
		case i < 8:
			g.SetMeta(8, i+1, b)
		case i == 8:
			g.SetMeta(7, 8, b)
		default:
			g.SetMeta(14-i, 8, b)
		}
		if i < 8 {
			g.SetMeta(siz-1-i, 8, b)
		} else {
			g.SetMeta(8, siz-15+i, b)
		}
	}
}

// writeVersion writes the version information of v into the reserved
// areas next to the upper right and lower left finder patterns.
func writeVersion(g *grid.Grid, v Version) {
	if v.IsMicro() || v < 7 {
		return
	}
	info := VersionInfo(v)
	siz := g.Size
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			b := info>>(i*3+j)&1 != 0
			g.SetMeta(i, siz-11+j, b)
			g.SetMeta(siz-11+j, i, b)
		}
	}
}
