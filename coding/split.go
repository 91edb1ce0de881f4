// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"strings"

	"github.com/unixdj/matrix/split"
)

// Costs are in sixths of a bit: a numeric digit costs 10/3 bits in a
// group of three, 7/2 in a group of two, and an alphanumeric character
// 11/2 bits in a pair.
const costScale = 6

// scan is the look-ahead state of the QR cost model.  It caches the
// group of digits and the pair of alphanumeric characters starting
// at the last position a group was entered at.
type scan struct {
	numEnd, numCost int
	alnEnd, alnCost int
}

// costModel implements split.Model for one size class and charset.
type costModel struct {
	class int
	cs    *Charset
}

func (c costModel) Head(_ *scan, m split.Mode) int {
	return Mode(m).HeaderBits(c.class) * costScale
}

func (c costModel) Switch(st *scan, _, to split.Mode) int {
	return c.Head(st, to)
}

func (costModel) EOD(*scan, split.Mode) int { return 0 }

// run returns the length, up to limit, of the run of characters from
// data[i] satisfying is.
func run(data []rune, i, limit int, is func(rune) bool) int {
	n := 0
	for n < limit && i+n < len(data) && is(data[i+n]) {
		n++
	}
	return n
}

func (c costModel) Cost(st *scan, data []rune, i int, m split.Mode) (int, bool) {
	r := data[i]
	switch Mode(m) {
	case Numeric:
		if !IsNumeric(r) {
			return 0, false
		}
		if i >= st.numEnd {
			n := run(data, i, 3, IsNumeric)
			st.numEnd, st.numCost = i+n, [4]int{0, 24, 21, 20}[n]
		}
		return st.numCost, true
	case Alphanumeric:
		if !IsAlphanumeric(r) {
			return 0, false
		}
		if i >= st.alnEnd {
			n := run(data, i, 2, IsAlphanumeric)
			st.alnEnd, st.alnCost = i+n, [3]int{0, 36, 33}[n]
		}
		return st.alnCost, true
	case Byte:
		b, ok := c.cs.Encode(r)
		return len(b) * 8 * costScale, ok
	case Kanji:
		return 13 * costScale, c.cs.Kanji && IsKanji(r)
	}
	return 0, false
}

// Modes returns the text modes available in the size class with the
// charset.
func (cs *Charset) Modes(class int) []Mode {
	var ms []Mode
	for _, m := range TextModes {
		if m.Available(class) && (m != Kanji || cs.Kanji) {
			ms = append(ms, m)
		}
	}
	return ms
}

// Split returns the segments encoding text with the fewest bits in
// the size class, and their encoded length.  The segments do not
// include an ECI designator.  If a character cannot be encoded in any
// available mode, Split returns a *split.NotEncodableError.
func Split(text string, class int, cs *Charset) ([]Segment, int, error) {
	data := []rune(text)
	ms := cs.Modes(class)
	modes := make([]split.Mode, len(ms))
	for i, m := range ms {
		modes[i] = split.Mode(m)
	}
	res, err := split.Segment[scan](data, modes, costModel{class, cs})
	if err != nil {
		return nil, 0, err
	}
	var segs []Segment
	for _, r := range split.Runs(res.Modes) {
		segs = cs.appendRun(segs, Mode(r.Mode), data[r.Start:r.End], class)
	}
	n := 0
	for _, seg := range segs {
		n += seg.EncodedLength(class)
	}
	return segs, n, nil
}

// appendRun appends the segments encoding data in mode m, splitting
// it at character boundaries where the count field would overflow.
func (cs *Charset) appendRun(segs []Segment, m Mode, data []rune, class int) []Segment {
	var sb strings.Builder
	limit := m.MaxCount(class)
	if m == Kanji {
		limit *= 2
	}
	for _, r := range data {
		var b []byte
		switch m {
		case Numeric, Alphanumeric:
			b = []byte{byte(r)}
		case Byte:
			b, _ = cs.Encode(r)
		case Kanji:
			c, _ := KanjiCode(r)
			b = []byte{byte(c >> 8), byte(c)}
		}
		if sb.Len()+len(b) > limit {
			segs = append(segs, Segment{sb.String(), m})
			sb.Reset()
		}
		sb.Write(b)
	}
	return append(segs, Segment{sb.String(), m})
}
