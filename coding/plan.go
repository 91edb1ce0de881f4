// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"sync"

	"github.com/unixdj/matrix/grid"
)

// A Plan describes how to construct a QR code
// with a specific version and level.
type Plan struct {
	Version Version // QR code version
	Level   Level   // QR error correction Level

	DataBits  int // number of data bits
	StreamLen int // number of data and check bits placed in the grid
	Size      int // number of modules on a side

	nblock, check int
	template      *grid.Grid // function patterns, reserved areas
}

// Plans are created the first time a combination of version and
// level is used.  Templates are shared by the levels of a version.
var (
	plans [M4 + 1][H + 1]struct {
		once sync.Once
		p    *Plan
	}
	templates [M4 + 1]struct {
		once sync.Once
		g    *grid.Grid
	}
)

// NewPlan returns a Plan for a QR code with the given version and level.
// Plans are shared and must not be modified.
func NewPlan(version Version, level Level) (*Plan, error) {
	if !version.IsValid() {
		return nil, ErrVersion
	}
	if !version.Supports(level) {
		return nil, ErrLevel
	}
	p := &plans[version][level]
	p.once.Do(func() {
		nblock, check := version.Blocks(level)
		p.p = &Plan{
			Version:   version,
			Level:     level,
			DataBits:  version.DataBits(level),
			StreamLen: version.DataBits(level) + nblock*check*8,
			Size:      version.Size(),
			nblock:    nblock,
			check:     check,
			template:  template(version),
		}
	})
	return p.p, nil
}

// Template returns the grid of v with function patterns drawn and
// metadata areas reserved.  The grid is shared and must not be
// modified.
func (p *Plan) Template() *grid.Grid { return p.template }

func template(v Version) *grid.Grid {
	t := &templates[v]
	t.once.Do(func() {
		if v.IsMicro() {
			t.g = microTemplate(v)
		} else {
			t.g = qrTemplate(v)
		}
	})
	return t.g
}

// finder draws a finder pattern with its upper left corner at (x, y).
func finder(g *grid.Grid, x, y int) {
	for j := 0; j < 7; j++ {
		for i := 0; i < 7; i++ {
			g.SetFunction(x+i, y+j, max(abs(i-3), abs(j-3)) != 2)
		}
	}
}

// alignBox draws an alignment pattern centred at (x, y).
func alignBox(g *grid.Grid, x, y int) {
	for j := -2; j <= 2; j++ {
		for i := -2; i <= 2; i++ {
			g.SetFunction(x+i, y+j, max(abs(i), abs(j)) != 1)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func qrTemplate(v Version) *grid.Grid {
	siz := v.Size()
	g := grid.New(siz)

	// Timing patterns.
	for i := 8; i < siz-8; i++ {
		g.SetFunction(i, 6, i&1 == 0)
		g.SetFunction(6, i, i&1 == 0)
	}

	// Finder patterns with separators.
	for _, c := range [][2]int{{0, 0}, {siz - 8, 0}, {0, siz - 8}} {
		g.Rect(c[0], c[1], 8, 8, grid.FunctionLight)
	}
	finder(g, 0, 0)
	finder(g, siz-7, 0)
	finder(g, 0, siz-7)

	// Alignment patterns, except where they would overlap finders.
	pos := v.alignment()
	last := len(pos) - 1
	for i, x := range pos {
		for j, y := range pos {
			if i == 0 && (j == 0 || j == last) || i == last && j == 0 {
				continue
			}
			alignBox(g, x, y)
		}
	}

	// Format information, both copies, and the dark module.
	for i := 0; i < 9; i++ {
		if i != 6 {
			g.Reserve(8, i)
			g.Reserve(i, 8)
		}
	}
	for i := 0; i < 8; i++ {
		g.Reserve(siz-1-i, 8)
		if i < 7 {
			g.Reserve(8, siz-1-i)
		}
	}
	g.SetFunction(8, siz-8, true)

	// Version information.
	if v >= 7 {
		for i := 0; i < 6; i++ {
			for j := siz - 11; j < siz-8; j++ {
				g.Reserve(i, j)
				g.Reserve(j, i)
			}
		}
	}
	return g
}

func microTemplate(v Version) *grid.Grid {
	siz := v.Size()
	g := grid.New(siz)
	g.Rect(0, 0, 8, 8, grid.FunctionLight)
	finder(g, 0, 0)
	for i := 8; i < siz; i++ {
		g.SetFunction(i, 0, i&1 == 0)
		g.SetFunction(0, i, i&1 == 0)
	}
	for i := 1; i < 9; i++ {
		g.Reserve(8, i)
		g.Reserve(i, 8)
	}
	return g
}
