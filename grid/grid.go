// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements the module grid of a matrix symbol: data
// placement, masking and mask selection.
//
// A symbology first draws its function patterns and reserves the
// areas for format metadata, then places the codeword bits into the
// free cells with Place.  A Masker describes the symbology's mask
// patterns, metadata and scoring rules; Select evaluates every mask
// and Apply applies the chosen one.
package grid // import "github.com/unixdj/matrix/grid"

import "fmt"

// A Cell is the state of one module.
type Cell uint8

// Cell states.  Data cells are the only ones masking touches; reserved
// cells become function cells when metadata is written into them.
const (
	Unset Cell = iota
	FunctionLight
	FunctionDark
	Reserved
	DataLight
	DataDark
)

func (c Cell) String() string {
	if c <= DataDark {
		return [...]string{"unset", "function-light", "function-dark",
			"reserved", "data-light", "data-dark"}[c]
	}
	return fmt.Sprintf("Cell(%d)", uint8(c))
}

// Dark reports whether the cell is a dark module.
func (c Cell) Dark() bool { return c == FunctionDark || c == DataDark }

// IsData reports whether the cell holds a data bit.
func (c Cell) IsData() bool { return c == DataLight || c == DataDark }

// IsFunction reports whether the cell is part of a function pattern
// or written metadata.
func (c Cell) IsFunction() bool { return c == FunctionLight || c == FunctionDark }

// A Grid is a square grid of cells, indexed by column x and row y.
type Grid struct {
	Size  int    // number of modules on a side
	Cells []Cell // Size*Size cells in row-major order
}

// New returns a Grid with all cells Unset.
func New(size int) *Grid {
	return &Grid{Size: size, Cells: make([]Cell, size*size)}
}

// Clone returns a copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{Size: g.Size, Cells: append([]Cell(nil), g.Cells...)}
}

// In reports whether (x, y) lies in the grid.
func (g *Grid) In(x, y int) bool {
	return 0 <= x && x < g.Size && 0 <= y && y < g.Size
}

// At returns the cell at (x, y).
func (g *Grid) At(x, y int) Cell { return g.Cells[y*g.Size+x] }

// Set sets the cell at (x, y).
func (g *Grid) Set(x, y int, c Cell) { g.Cells[y*g.Size+x] = c }

// Dark reports whether the module at (x, y) is dark.  Modules outside
// the grid belong to the quiet zone and are light.
func (g *Grid) Dark(x, y int) bool {
	return g.In(x, y) && g.At(x, y).Dark()
}

// SetFunction sets the cell at (x, y) to a function module.
func (g *Grid) SetFunction(x, y int, dark bool) {
	c := FunctionLight
	if dark {
		c = FunctionDark
	}
	g.Set(x, y, c)
}

// Rect sets all cells in the w×h rectangle at (x, y) to c.
func (g *Grid) Rect(x, y, w, h int, c Cell) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			g.Set(i, j, c)
		}
	}
}

// Reserve marks the cell at (x, y) as reserved for metadata.
func (g *Grid) Reserve(x, y int) { g.Set(x, y, Reserved) }

// SetMeta writes a metadata module into a reserved cell.  The cell
// may be written again, for example when another mask is evaluated.
// SetMeta panics if the cell is not reserved for metadata.
func (g *Grid) SetMeta(x, y int, dark bool) {
	if c := g.At(x, y); c != Reserved && !c.IsFunction() {
		panic(fmt.Sprintf("grid: metadata write to %v cell (%d,%d)", c, x, y))
	}
	g.SetFunction(x, y, dark)
}

// Count returns the number of cells in state c.
func (g *Grid) Count(c Cell) int {
	n := 0
	for _, v := range g.Cells {
		if v == c {
			n++
		}
	}
	return n
}

// Free returns the number of cells available for data.
func (g *Grid) Free() int { return g.Count(Unset) }

// DarkCount returns the number of dark modules.
func (g *Grid) DarkCount() int { return g.Count(FunctionDark) + g.Count(DataDark) }

// Place writes nbits bits of stream, most significant bit first, into
// the free cells and returns the number of bits written.
//
// Cells are visited in pairs of columns from the right, right column
// first, moving up the first pair and alternating direction with each
// pair.  On odd widths the last pair is the single leftmost column.
// The column skipCol, holding a vertical timing pattern, is skipped;
// use -1 for none.  Free cells remaining after the stream is
// exhausted are filled with the bits of fill, repeated.
func (g *Grid) Place(stream []byte, nbits int, skipCol int, fill byte) int {
	if nbits > len(stream)*8 {
		panic("grid: stream too short")
	}
	n, f := 0, 0
	up := true
	for right := g.Size - 1; right >= 0; right -= 2 {
		if right == skipCol {
			right--
		}
		for k := 0; k < g.Size; k++ {
			y := k
			if up {
				y = g.Size - 1 - k
			}
			for x := right; x > right-2 && x >= 0; x-- {
				if g.At(x, y) != Unset {
					continue
				}
				var bit byte
				if n < nbits {
					bit = stream[n>>3] >> (7 &^ n) & 1
					n++
				} else {
					bit = fill >> (7 &^ f) & 1
					f++
				}
				c := DataLight
				if bit != 0 {
					c = DataDark
				}
				g.Set(x, y, c)
			}
		}
		up = !up
	}
	return n
}
