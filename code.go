// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/unixdj/matrix/coding"
	"github.com/unixdj/matrix/grid"
)

// ErrArgs is returned by the image encoders for a negative border or
// a scale below 1.
var ErrArgs = errors.New("matrix: invalid arguments")

// A Code is a square pixel grid.
// It implements image.Image and PNG and PBM encoding.
type Code struct {
	Bitmap  []byte // 1 is black, 0 is white
	Size    int    // number of modules on a side
	Stride  int    // number of bytes per row
	Scale   int    // number of image pixels per module
	Border  int    // quiet zone width in modules
	Reverse bool   // swap colours in images

	Version coding.Version
	Level   Level
	Mask    int        // mask pattern
	Scores  []int      // mask scores, lower is better; nil if forced
	Grid    *grid.Grid // modules by type

	// Position in a structured append sequence; Total is 0 for a
	// single symbol.
	Index, Total int
}

func newCode(cc *coding.Code) *Code {
	siz := cc.Size()
	c := &Code{
		Size:    siz,
		Stride:  (siz + 7) >> 3,
		Scale:   8,
		Border:  4,
		Version: cc.Version,
		Level:   Level(cc.Level),
		Mask:    cc.Mask,
		Scores:  cc.Scores,
		Grid:    cc.Grid,
	}
	if cc.Version.IsMicro() {
		c.Border = 2
	}
	c.Bitmap = make([]byte, c.Stride*siz)
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if cc.Black(x, y) {
				c.Bitmap[y*c.Stride+x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return c
}

// Black returns true if the pixel at (x,y) is black.
// Pixels outside the code are white.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x>>3]&(0x80>>(x&7)) != 0
}

// DarkRatio returns the share of dark modules.
func (c *Code) DarkRatio() float64 {
	n := 0
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			if c.Black(x, y) {
				n++
			}
		}
	}
	return float64(n) / float64(c.Size*c.Size)
}

func (c *Code) isValid() bool { return c.Scale >= 1 && c.Border >= 0 }

// ink reports whether the image pixel at module (x,y) is black,
// taking the quiet zone and c.Reverse into account.
func (c *Code) ink(x, y int) bool { return c.Black(x, y) != c.Reverse }

// Image returns an Image displaying the code.
func (c *Code) Image() image.Image { return &codeImage{c} }

// codeImage implements image.Image
type codeImage struct {
	*Code
}

var (
	whiteColor color.Color = color.Gray{0xFF}
	blackColor color.Color = color.Gray{0x00}
)

func (c *codeImage) Bounds() image.Rectangle {
	d := (c.Size + 2*c.Border) * c.Scale
	return image.Rect(0, 0, d, d)
}

func (c *codeImage) At(x, y int) color.Color {
	if c.ink(x/c.Scale-c.Border, y/c.Scale-c.Border) {
		return blackColor
	}
	return whiteColor
}

func (c *codeImage) ColorModel() color.Model {
	return color.GrayModel
}

// EncodePNG writes a PNG image displaying the code to w.
func (c *Code) EncodePNG(w io.Writer) error {
	if !c.isValid() {
		return ErrArgs
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, c.Image())
}

// String returns the code drawn with Unicode half blocks, two rows of
// modules per line, with the quiet zone.  Light modules are drawn, for
// terminals with light text on a dark background; c.Reverse swaps
// colours.
func (c *Code) String() string {
	blocks := [4]string{"█", "▀", "▄", " "}
	bord := max(c.Border, 0)
	var b strings.Builder
	for y := -bord; y < c.Size+bord; y += 2 {
		for x := -bord; x < c.Size+bord; x++ {
			n := 0
			if c.ink(x, y) {
				n = 2
			}
			if y+1 < c.Size+bord && c.ink(x, y+1) {
				n++
			}
			b.WriteString(blocks[n])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
