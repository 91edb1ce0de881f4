// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"fmt"

	"github.com/unixdj/matrix/grid"
)

// ErrMask is returned for mask numbers out of range.
var ErrMask = errors.New("qr: invalid mask")

// A Stage is a step of the encoding pipeline.
type Stage int

// Encoder stages, in order.
const (
	Idle            Stage = iota // nothing written
	Segmented                    // segments written to the bit buffer
	CodewordsBuilt               // terminated, padded, split into blocks
	ECCApplied                   // check codewords computed, interleaved
	GridPlaced                   // codewords placed in the grid
	Masked                       // mask chosen and applied
	MetadataWritten              // format and version information written
	Done                         // Code returned
)

func (s Stage) String() string {
	if Idle <= s && s <= Done {
		return [...]string{"idle", "segmented", "codewords built",
			"ecc applied", "grid placed", "masked",
			"metadata written", "done"}[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// A Code is an encoded symbol.
type Code struct {
	Version Version
	Level   Level
	Mask    int        // mask pattern
	Scores  []int      // score of each mask, lower is better; nil if forced
	Grid    *grid.Grid // modules
}

// Size returns the number of modules on a side.
func (c *Code) Size() int { return c.Grid.Size }

// Black reports whether the module at (x, y) is dark.
// Modules outside the symbol are light.
func (c *Code) Black(x, y int) bool { return c.Grid.Dark(x, y) }

// Encoder encodes a QR code.  An Encoder moves through the stages in
// order and cannot be reused until Reset.
type Encoder struct {
	p      *Plan
	stage  Stage
	forced int // forced mask, or -1
	mask   int // mask in use

	b      Bits    // data bits
	blocks []Block // data and check blocks
	stream Bits    // interleaved codewords
	g      *grid.Grid
	scores []int
}

// NewEncoder returns an Encoder for the given version and level.
func NewEncoder(version Version, level Level) (*Encoder, error) {
	p, err := NewPlan(version, level)
	if err != nil {
		return nil, err
	}
	return p.NewEncoder(), nil
}

// NewEncoder returns an Encoder for p.
func (p *Plan) NewEncoder() *Encoder { return &Encoder{p: p, forced: -1} }

// Stage returns the current stage.
func (e *Encoder) Stage() Stage { return e.stage }

// Reset returns e to Idle, discarding data written.  A forced mask
// is kept.
func (e *Encoder) Reset() {
	e.stage = Idle
	e.b.Reset()
	e.stream.Reset()
	e.blocks, e.g, e.scores = nil, nil, nil
}

// SetMask forces the mask pattern.  -1 selects automatically.
func (e *Encoder) SetMask(mask int) error {
	if mask < -1 || mask >= (masker{v: e.p.Version}).Masks() {
		return ErrMask
	}
	e.forced = mask
	return nil
}

func (e *Encoder) expect(stages ...Stage) {
	for _, s := range stages {
		if e.stage == s {
			return
		}
	}
	panic(fmt.Sprintf("qr: encoder in stage %v, want %v", e.stage, stages[0]))
}

// Write adds text to e.
func (e *Encoder) Write(text ...Segment) error {
	e.expect(Idle, Segmented)
	class := e.p.Version.SizeClass()
	for _, t := range text {
		if err := t.Encode(&e.b, class); err != nil {
			return err
		}
	}
	e.stage = Segmented
	return nil
}

// Bits returns the number of data bits written.
func (e *Encoder) Bits() int { return e.b.Len() }

// buildCodewords terminates and pads the data and splits it into
// blocks.
func (e *Encoder) buildCodewords() error {
	e.expect(Idle, Segmented)
	p := e.p
	if e.b.Len() > p.DataBits {
		return fmt.Errorf("%w: cannot encode %d bits into %d-bit code",
			ErrTooLong, e.b.Len(), p.DataBits)
	}
	t := 4
	if p.Version.IsMicro() {
		t = int(p.Version-M1)*2 + 3
	}
	e.b.Pad(t, p.DataBits)
	e.blocks = splitBlocks(e.b.Bytes(), p.nblock)
	e.stage = CodewordsBuilt
	return nil
}

// applyECC computes the check codewords and interleaves the blocks.
func (e *Encoder) applyECC() {
	e.expect(CodewordsBuilt)
	addCheck(e.blocks, e.p.check)
	interleave(&e.stream, e.blocks, e.p.DataBits)
	if e.stream.Len() != e.p.StreamLen {
		panic("qr: internal error: stream length")
	}
	e.stage = ECCApplied
}

// place places the codewords into a copy of the template.  Remainder
// modules are light.
func (e *Encoder) place() {
	e.expect(ECCApplied)
	skip := 6
	if e.p.Version.IsMicro() {
		skip = -1
	}
	e.g = e.p.template.Clone()
	e.g.Place(e.stream.Bytes(), e.stream.Len(), skip, 0)
	e.stage = GridPlaced
}

// applyMask chooses the mask with the lowest score unless forced,
// and applies it.
func (e *Encoder) applyMask() {
	e.expect(GridPlaced)
	m := masker{e.p.Version, e.p.Level}
	e.mask = e.forced
	if e.mask < 0 {
		e.mask, e.scores = grid.Select(e.g, m)
	}
	e.g.Mask(m.Mask(e.mask))
	e.stage = Masked
}

// writeMeta writes the format and version information.
func (e *Encoder) writeMeta() {
	e.expect(Masked)
	masker{e.p.Version, e.p.Level}.Meta(e.g, e.mask)
	if n := e.g.Count(grid.Unset) + e.g.Count(grid.Reserved); n != 0 {
		panic("qr: internal error: incomplete grid")
	}
	e.stage = MetadataWritten
}

// Code returns a QR code containing data written to e.
// If the data does not fit, the error wraps ErrTooLong and no grid
// is built.
func (e *Encoder) Code() (*Code, error) {
	if err := e.buildCodewords(); err != nil {
		return nil, err
	}
	e.applyECC()
	e.place()
	e.applyMask()
	e.writeMeta()
	e.stage = Done
	return &Code{
		Version: e.p.Version,
		Level:   e.p.Level,
		Mask:    e.mask,
		Scores:  e.scores,
		Grid:    e.g,
	}, nil
}

// Encode is a wrapper around Write and Code.
func (e *Encoder) Encode(text ...Segment) (*Code, error) {
	if err := e.Write(text...); err != nil {
		return nil, err
	}
	return e.Code()
}

// Encode encodes text using an Encoder with the given version and level.
func Encode(version Version, level Level, text ...Segment) (*Code, error) {
	e, err := NewEncoder(version, level)
	if err != nil {
		return nil, err
	}
	return e.Encode(text...)
}
