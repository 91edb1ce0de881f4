// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

// A MaskFunc reports whether the data module at (row, col) is
// inverted by a mask pattern.
type MaskFunc func(row, col int) bool

// Mask inverts the data cells selected by f.  Function and reserved
// cells are never touched.
func (g *Grid) Mask(f MaskFunc) {
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			switch c := g.At(x, y); {
			case !c.IsData() || !f(y, x):
			case c == DataDark:
				g.Set(x, y, DataLight)
			default:
				g.Set(x, y, DataDark)
			}
		}
	}
}

// A Masker describes the masks of a symbology.
type Masker interface {
	// Masks returns the number of mask patterns.
	Masks() int

	// Mask returns mask pattern i.
	Mask(i int) MaskFunc

	// Meta writes the metadata for mask i into the reserved cells.
	Meta(g *Grid, i int)

	// Score returns the penalty of a masked grid with metadata
	// written.  Lower is better.
	Score(g *Grid) int
}

// Evaluate returns the score of each mask of m applied to g.
// g is not modified.
func Evaluate(g *Grid, m Masker) []int {
	scores := make([]int, m.Masks())
	t := g.Clone()
	for i := range scores {
		copy(t.Cells, g.Cells)
		t.Mask(m.Mask(i))
		m.Meta(t, i)
		scores[i] = m.Score(t)
	}
	return scores
}

// Select returns the mask of m with the lowest score on g, the lowest
// numbered one of equal scores, along with all scores.
func Select(g *Grid, m Masker) (int, []int) {
	scores := Evaluate(g, m)
	best := 0
	for i, s := range scores {
		if s < scores[best] {
			best = i
		}
	}
	return best, scores
}

// Apply applies mask i of m to g and writes its metadata.
func Apply(g *Grid, m Masker, i int) {
	g.Mask(m.Mask(i))
	m.Meta(g, i)
}
