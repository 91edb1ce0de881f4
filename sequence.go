// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/unixdj/matrix/coding"
)

// appendBits is the length of a structured append header.
const appendBits = 4 + 2*8

// EncodeSequence returns text encoded as a structured append sequence
// of up to 16 QR codes, each holding as much of the text as fits.  If
// o.Version is 0, the smallest version that holds the text is used.
// Micro QR codes cannot be sequenced.  With o.Boost the level is
// raised while every symbol fits.
func EncodeSequence(text string, o *Options) ([]*Code, error) {
	if o.Format == Micro || o.Version.IsMicro() {
		return nil, fmt.Errorf("%w: structured append in micro qr", ErrConfig)
	}
	qo := *o
	qo.Format = QR
	// options and input are checked on the whole text
	if _, err := plan(text, &qo); err != nil && !errors.Is(err, ErrDataTooLong) {
		return nil, err
	}
	cs, _ := coding.NewCharset(o.ECI, o.NoKanji)
	l := coding.Level(o.Level)

	var (
		parts []*encPlan
		err   error
	)
	if o.Version != 0 {
		parts, err = sequence(text, cs, o.Version, l)
	} else {
		// the parts together cost no less than the whole text
		var whole [coding.Class2 + 1]int
		for class := coding.Class0; class <= coding.Class2; class++ {
			if _, whole[class], err = segment(text, cs, class); err != nil {
				return nil, err
			}
		}
		err = tooLong(whole[coding.Class2], coding.MaxVersion, l)
		for v := coding.MinVersion; v <= coding.MaxVersion; v++ {
			if whole[v.SizeClass()] > coding.MaxSymbols*(v.DataBits(l)-appendBits) {
				continue
			}
			if parts, err = sequence(text, cs, v, l); err == nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if o.Boost {
		for ll := l + 1; ll <= coding.H && fitsAll(parts, ll); ll++ {
			for _, p := range parts {
				p.l = ll
			}
		}
	}

	var par byte
	for _, p := range parts {
		par ^= coding.Parity(p.segs...)
	}
	codes := make([]*Code, len(parts))
	for i, p := range parts {
		hdr, err := coding.AppendHeader(i, len(parts), par)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		p.segs = append([]coding.Segment{hdr}, p.segs...)
		p.bits += appendBits
		if codes[i], err = build(p, &qo); err != nil {
			return nil, err
		}
		codes[i].Index, codes[i].Total = i, len(parts)
	}
	return codes, nil
}

func fitsAll(parts []*encPlan, l coding.Level) bool {
	for _, p := range parts {
		if !p.v.Supports(l) || p.bits+appendBits > p.v.DataBits(l) {
			return false
		}
	}
	return true
}

// sequence splits text into parts of version v, each leaving room for
// a structured append header.  Each part takes the longest prefix of
// the remaining text that fits.
func sequence(text string, cs *coding.Charset, v coding.Version, l coding.Level) ([]*encPlan, error) {
	room := v.DataBits(l) - appendBits
	var parts []*encPlan
	for {
		if len(parts) == coding.MaxSymbols {
			return nil, fmt.Errorf("%w: more than %d symbols of version %v-%v",
				ErrDataTooLong, coding.MaxSymbols, v, l)
		}
		// binary search for the longest prefix, in runes
		lo, hi := 0, utf8.RuneCountInString(text)
		var best *encPlan
		for lo <= hi {
			mid := (lo + hi) / 2
			segs, n, err := segment(prefix(text, mid), cs, v.SizeClass())
			if err != nil {
				return nil, err
			}
			if n <= room {
				best = &encPlan{segs, n, v, l}
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
		if best == nil || hi == 0 && text != "" {
			return nil, tooLong(appendBits, v, l)
		}
		parts = append(parts, best)
		if text = text[len(prefix(text, hi)):]; text == "" {
			return parts, nil
		}
	}
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
