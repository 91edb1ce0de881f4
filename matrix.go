// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package matrix encodes QR and Micro QR codes.

Text is split into segments of the cheapest encoding modes for the
smallest version it fits in, encoded with Reed-Solomon error
correction, placed into the symbol grid and masked with the best of
the mask patterns.  Encode uses the defaults; EncodeOptions accepts a
version, a symbol format, an ECI designator and a forced mask.
EncodeSequence spreads text over a structured append sequence of up to
16 QR codes.

All errors are detected before the symbol is built.  They match one
of ErrDataTooLong, ErrConfig, ErrECI and ErrInput.
*/
package matrix // import "github.com/unixdj/matrix"

import (
	"errors"
	"fmt"

	"github.com/unixdj/matrix/coding"
	"github.com/unixdj/matrix/split"
)

var (
	ErrDataTooLong = errors.New("matrix: data too long")
	ErrConfig      = errors.New("matrix: invalid configuration")
	ErrECI         = errors.New("matrix: invalid eci value")
	ErrInput       = errors.New("matrix: character not encodable")
)

// InputError reports a character of the input that cannot be encoded
// in any mode with the selected character set.
type InputError struct {
	Pos  int  // index of the character, in runes
	Rune rune // the character
}

func (e *InputError) Error() string {
	return fmt.Sprintf("matrix: character %U at position %d not encodable", e.Rune, e.Pos)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 7% of codewords can be restored
	M              // 15%
	Q              // 25%
	H              // 30%
)

func (l Level) String() string { return coding.Level(l).String() }

// A Format selects the symbol format.
type Format int

const (
	QR     Format = iota // QR code
	Micro                // Micro QR code
	Either               // Micro QR code if the data fits, else QR
)

// ECI assignment numbers.
const (
	Latin1ECI   = coding.Latin1ECI
	ShiftJISECI = coding.ShiftJISECI
	UTF8ECI     = coding.UTF8ECI
)

// Options configure EncodeOptions.  The zero value selects a QR code
// at level L with the smallest version and the best mask.
type Options struct {
	Level     Level
	Version   coding.Version // 0 selects the smallest that fits
	Format    Format
	ECI       int  // ECI assignment number; 0 for none, byte data is UTF-8
	ForceMask bool // use Mask rather than the best mask
	Mask      int  // mask pattern, 0-7 (0-3 for Micro QR)
	NoKanji   bool // disable kanji mode
	Boost     bool // raise the level while the data fits the version
}

// Encode returns an encoding of text at the given error correction level.
func Encode(text string, level Level) (*Code, error) {
	return EncodeOptions(text, &Options{Level: level})
}

// EncodeOptions returns an encoding of text configured by o.
func EncodeOptions(text string, o *Options) (*Code, error) {
	p, err := plan(text, o)
	if err != nil {
		return nil, err
	}
	return build(p, o)
}

// build encodes the segments of p.
func build(p *encPlan, o *Options) (*Code, error) {
	e, err := coding.NewEncoder(p.v, p.l)
	if err != nil {
		return nil, encoderError(err)
	}
	if o.ForceMask {
		if err := e.SetMask(o.Mask); err != nil {
			return nil, fmt.Errorf("%w: mask %d in version %v", ErrConfig, o.Mask, p.v)
		}
	}
	if err := e.Write(p.segs...); err != nil {
		return nil, encoderError(err)
	}
	cc, err := e.Code()
	if err != nil {
		return nil, encoderError(err)
	}
	return newCode(cc), nil
}

// encoderError wraps an error of the coding layer in ErrDataTooLong
// or ErrConfig.
func encoderError(err error) error {
	if errors.Is(err, coding.ErrTooLong) {
		return fmt.Errorf("%w: %w", ErrDataTooLong, err)
	}
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// Segments returns the segments, version and level text would be
// encoded in.  The segments include the ECI designator, if any.
func Segments(text string, o *Options) ([]coding.Segment, coding.Version, Level, error) {
	p, err := plan(text, o)
	if err != nil {
		return nil, 0, 0, err
	}
	return p.segs, p.v, Level(p.l), nil
}

// An encPlan holds the segments of the text, their length in bits,
// and the version and level chosen.
type encPlan struct {
	segs []coding.Segment
	bits int
	v    coding.Version
	l    coding.Level
}

func plan(text string, o *Options) (*encPlan, error) {
	l, v := coding.Level(o.Level), o.Version
	switch {
	case !l.IsValid():
		return nil, fmt.Errorf("%w: level %d", ErrConfig, o.Level)
	case o.Format < QR || o.Format > Either:
		return nil, fmt.Errorf("%w: format %d", ErrConfig, o.Format)
	case o.ECI < 0 || o.ECI > coding.MaxECI:
		return nil, fmt.Errorf("%w: %d", ErrECI, o.ECI)
	case o.ForceMask && (o.Mask < 0 || o.Mask > 7):
		return nil, fmt.Errorf("%w: mask %d", ErrConfig, o.Mask)
	case v != 0 && !v.IsValid():
		return nil, fmt.Errorf("%w: version %d", ErrConfig, v)
	case v != 0 && v.IsMicro() != (o.Format != QR) && o.Format != Either:
		return nil, fmt.Errorf("%w: version %v in wrong format", ErrConfig, v)
	case v != 0 && !v.Supports(l):
		return nil, fmt.Errorf("%w: level %v in version %v", ErrConfig, l, v)
	case o.Format == Micro && !coding.M4.Supports(l):
		return nil, fmt.Errorf("%w: level %v in micro qr", ErrConfig, l)
	case (o.Format == Micro || v.IsMicro()) && o.ECI != 0:
		return nil, fmt.Errorf("%w: eci in micro qr", ErrConfig)
	}
	cs, err := coding.NewCharset(o.ECI, o.NoKanji)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrECI, o.ECI)
	}

	var p *encPlan
	switch {
	case v != 0:
		p, err = fixed(text, cs, v, l)
	case o.Format == Micro:
		p, err = micro(text, cs, l)
	case o.Format == Either && o.ECI == 0 && coding.M4.Supports(l) &&
		!(o.ForceMask && o.Mask > 3):
		p, err = micro(text, cs, l)
		if errors.Is(err, ErrDataTooLong) || errors.Is(err, ErrInput) {
			p, err = full(text, cs, l)
		}
	default:
		p, err = full(text, cs, l)
	}
	if err != nil {
		return nil, err
	}
	if o.Boost {
		for p.l < coding.H && p.v.Supports(p.l+1) && p.bits <= p.v.DataBits(p.l+1) {
			p.l++
		}
	}
	return p, nil
}

// segment splits text for the size class and prepends the ECI
// designator of cs, if any.
func segment(text string, cs *coding.Charset, class int) ([]coding.Segment, int, error) {
	segs, n, err := coding.Split(text, class, cs)
	if err != nil {
		var ne *split.NotEncodableError
		if errors.As(err, &ne) {
			return nil, 0, &InputError{Pos: ne.Pos, Rune: ne.Rune}
		}
		return nil, 0, err
	}
	if cs.ECI != 0 {
		eci, err := coding.Designator(cs.ECI)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %d", ErrECI, cs.ECI)
		}
		segs = append([]coding.Segment{eci}, segs...)
		n += eci.EncodedLength(class)
	}
	return segs, n, nil
}

func tooLong(n int, v coding.Version, l coding.Level) error {
	return fmt.Errorf("%w: %d bits, version %v-%v holds %d",
		ErrDataTooLong, n, v, l, v.DataBits(l))
}

// fixed plans text in version v.
func fixed(text string, cs *coding.Charset, v coding.Version, l coding.Level) (*encPlan, error) {
	segs, n, err := segment(text, cs, v.SizeClass())
	if err != nil {
		return nil, err
	}
	if n > v.DataBits(l) {
		return nil, tooLong(n, v, l)
	}
	return &encPlan{segs, n, v, l}, nil
}

// micro plans text in the smallest Micro QR version it fits in.
// Smaller versions lack some modes; the error is that of M4.
func micro(text string, cs *coding.Charset, l coding.Level) (*encPlan, error) {
	var err error
	for v := coding.M1; v <= coding.M4; v++ {
		if !v.Supports(l) {
			continue
		}
		var p *encPlan
		if p, err = fixed(text, cs, v, l); err == nil {
			return p, nil
		}
	}
	return nil, err
}

// full plans text in the smallest QR version it fits in.  Segments
// are chosen per size class, as character count fields grow with
// the class, and the version within the class is found by binary
// search.
func full(text string, cs *coding.Charset, l coding.Level) (*encPlan, error) {
	var (
		segs []coding.Segment
		n    int
		err  error
	)
	for class := coding.Class0; class <= coding.Class2; class++ {
		if segs, n, err = segment(text, cs, class); err != nil {
			return nil, err
		}
		lo, hi := coding.ClassRange(class)
		if n > hi.DataBits(l) {
			continue
		}
		for lo < hi {
			if mid := (lo + hi) / 2; mid.DataBits(l) < n {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		return &encPlan{segs, n, lo, l}, nil
	}
	return nil, tooLong(n, coding.MaxVersion, l)
}
