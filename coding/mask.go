// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "github.com/unixdj/matrix/grid"

// Mask patterns:
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
//
// A module is inverted where the expression is zero.
var maskFuncs = [8]grid.MaskFunc{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, _ int) bool { return i%2 == 0 },
	func(_, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return i*j%2+i*j%3 == 0 },
	func(i, j int) bool { return (i*j%2+i*j%3)%2 == 0 },
	func(i, j int) bool { return ((i+j)%2+i*j%3)%2 == 0 },
}

// Micro QR masks are QR masks 1, 4, 6 and 7.
var microMasks = [4]int{1, 4, 6, 7}

// masker implements grid.Masker for a version and level.
type masker struct {
	v Version
	l Level
}

func (m masker) Masks() int {
	if m.v.IsMicro() {
		return len(microMasks)
	}
	return len(maskFuncs)
}

func (m masker) Mask(i int) grid.MaskFunc {
	if m.v.IsMicro() {
		return maskFuncs[microMasks[i]]
	}
	return maskFuncs[i]
}

func (m masker) Meta(g *grid.Grid, i int) {
	writeFormat(g, m.v, FormatInfo(m.v, m.l, i))
	writeVersion(g, m.v)
}

func (m masker) Score(g *grid.Grid) int {
	if m.v.IsMicro() {
		return -MicroScore(g)
	}
	return Penalty(g)
}

// Penalty points.
const (
	penRun    = 3  // run of 5 same-coloured modules, plus 1 per extra
	penBox    = 3  // 2×2 block of same-coloured modules
	penFinder = 40 // 1:1:3:1:1 pattern with 4 light modules on a side
	penBal    = 10 // every 5% of deviation from 50% dark
)

// Penalty returns the mask penalty of a QR symbol: the sum of
// penalties for runs, boxes, finder-like patterns and colour balance.
// The quiet zone is light.
func Penalty(g *grid.Grid) int {
	siz := g.Size
	p := 0
	for a := 0; a < siz; a++ {
		row := func(k int) bool { return g.Dark(k, a) }
		col := func(k int) bool { return g.Dark(a, k) }
		p += runPenalty(siz, row) + runPenalty(siz, col)
		p += finderPenalty(siz, row) + finderPenalty(siz, col)
	}
	for y := 0; y < siz-1; y++ {
		for x := 0; x < siz-1; x++ {
			c := g.Dark(x, y)
			if c == g.Dark(x+1, y) && c == g.Dark(x, y+1) && c == g.Dark(x+1, y+1) {
				p += penBox
			}
		}
	}
	total := siz * siz
	dark := g.DarkCount()
	return p + abs(dark*2-total)*10/total*penBal
}

// runPenalty scores runs of 5 or more same-coloured modules in a line
// of n modules.
func runPenalty(n int, dark func(int) bool) int {
	p, r := 0, 1
	for k := 1; k <= n; k++ {
		if k < n && dark(k) == dark(k-1) {
			r++
			continue
		}
		if r >= 5 {
			p += penRun + r - 5
		}
		r = 1
	}
	return p
}

// finderPenalty scores occurrences of dark-light-dark-dark-dark-
// light-dark in a line of n modules preceded or followed by 4 light
// modules.  Modules past either end are light.
func finderPenalty(n int, dark func(int) bool) int {
	light4 := func(k int) bool {
		for i := k; i < k+4; i++ {
			if 0 <= i && i < n && dark(i) {
				return false
			}
		}
		return true
	}
	p := 0
	for k := 0; k+6 < n; k++ {
		if dark(k) && !dark(k+1) && dark(k+2) && dark(k+3) && dark(k+4) &&
			!dark(k+5) && dark(k+6) && (light4(k-4) || light4(k+7)) {
			p += penFinder
		}
	}
	return p
}

// MicroScore returns the evaluation score of a Micro QR symbol,
// min(v, h)*16 + max(v, h), where v and h are the numbers of dark
// modules on the right and bottom edges excluding the timing
// patterns.  Higher is better.
func MicroScore(g *grid.Grid) int {
	last := g.Size - 1
	v, h := 0, 0
	for i := 1; i <= last; i++ {
		if g.Dark(last, i) {
			v++
		}
		if g.Dark(i, last) {
			h++
		}
	}
	return min(v, h)*16 + max(v, h)
}
