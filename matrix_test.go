// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matrix

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unixdj/matrix/coding"
)

func TestEncodeDigits(t *testing.T) {
	const text = "01234567890123456789"
	c, err := Encode(text, M)
	if err != nil {
		t.Fatal(err)
	}
	if c.Version != 1 || c.Size != 21 || c.Level != M {
		t.Errorf("version %v-%v size %d, want 1-M size 21", c.Version, c.Level, c.Size)
	}
	if c.Mask != 4 {
		t.Errorf("mask %d, want 4", c.Mask)
	}
	if r := c.DarkRatio(); r <= 0.45 || r >= 0.55 {
		t.Errorf("dark ratio %.3f, want between 0.45 and 0.55", r)
	}
	segs, _, _, err := Segments(text, &Options{Level: M})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]coding.Segment{{Text: text, Mode: coding.Numeric}}, segs); diff != "" {
		t.Errorf("segments (-want +got):\n%s", diff)
	}
}

func TestSegmentsMixed(t *testing.T) {
	const text = "ABCDEFGH0123456789012345abcdefgh"
	segs, v, _, err := Segments(text, &Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []coding.Segment{
		{Text: "ABCDEFGH", Mode: coding.Alphanumeric},
		{Text: "0123456789012345", Mode: coding.Numeric},
		{Text: "abcdefgh", Mode: coding.Byte},
	}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("segments (-want +got):\n%s", diff)
	}
	n := 0
	for _, seg := range segs {
		n += seg.EncodedLength(v.SizeClass())
	}
	all := coding.Segment{Text: text, Mode: coding.Byte}.EncodedLength(v.SizeClass())
	if n >= all {
		t.Errorf("mixed %d bits, byte only %d", n, all)
	}
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		o    Options
		want error
	}{
		{"level", "1", Options{Level: 4}, ErrConfig},
		{"format", "1", Options{Format: 3}, ErrConfig},
		{"version", "1", Options{Version: 45}, ErrConfig},
		{"micro version in qr", "1", Options{Version: coding.M2}, ErrConfig},
		{"qr version in micro", "1", Options{Version: 2, Format: Micro}, ErrConfig},
		{"micro level", "1", Options{Level: H, Format: Micro}, ErrConfig},
		{"micro eci", "1", Options{Format: Micro, ECI: UTF8ECI}, ErrConfig},
		{"mask", "1", Options{ForceMask: true, Mask: 8}, ErrConfig},
		{"micro mask", "1", Options{Format: Micro, ForceMask: true, Mask: 5}, ErrConfig},
		{"eci", "1", Options{ECI: 1000000}, ErrECI},
		{"negative eci", "1", Options{ECI: -1}, ErrECI},
		{"latin-1", "a€", Options{ECI: Latin1ECI}, ErrInput},
		{"too long", strings.Repeat("1", 100), Options{Version: 1, Level: H}, ErrDataTooLong},
		{"too long micro", strings.Repeat("1", 36), Options{Format: Micro}, ErrDataTooLong},
		{"too long qr", strings.Repeat("1", 7090), Options{}, ErrDataTooLong},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := EncodeOptions(tc.text, &tc.o)
			if !errors.Is(err, tc.want) {
				t.Errorf("error %v, want %v", err, tc.want)
			}
			if c != nil {
				t.Errorf("got code with error %v", err)
			}
		})
	}
}

func TestEncoderError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want error
	}{
		{fmt.Errorf("%w: 300 bits", coding.ErrTooLong), ErrDataTooLong},
		{coding.SegmentError{Text: "A", Mode: coding.Numeric}, ErrConfig},
		{coding.CompatError{Mode: coding.Kanji, Version: coding.M2}, ErrConfig},
	} {
		err := encoderError(tc.err)
		if !errors.Is(err, tc.want) || !errors.Is(err, tc.err) {
			t.Errorf("%v: got %v, want %v wrapping it", tc.err, err, tc.want)
		}
	}
}

func TestInputError(t *testing.T) {
	_, err := EncodeOptions("ab€d", &Options{ECI: Latin1ECI})
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("error %v, want *InputError", err)
	}
	if ie.Pos != 2 || ie.Rune != '€' {
		t.Errorf("got %d %q, want 2 '€'", ie.Pos, ie.Rune)
	}
}

func TestFormat(t *testing.T) {
	for _, tc := range []struct {
		text   string
		format Format
		want   coding.Version
	}{
		{"12345", Either, coding.M1},
		{"12345", Micro, coding.M1},
		{"12345", QR, 1},
		{"HELLO", Either, coding.M2},
		{"hello", Either, coding.M3},
		{strings.Repeat("1", 35), Either, coding.M4},
		{strings.Repeat("1", 36), Either, 1},
	} {
		c, err := EncodeOptions(tc.text, &Options{Format: tc.format})
		if err != nil {
			t.Errorf("%q %d: %v", tc.text, tc.format, err)
			continue
		}
		if c.Version != tc.want {
			t.Errorf("%q %d: version %v, want %v", tc.text, tc.format, c.Version, tc.want)
		}
		if want := tc.want.Size(); c.Size != want {
			t.Errorf("%q %d: size %d, want %d", tc.text, tc.format, c.Size, want)
		}
	}
}

func TestVersionGrowth(t *testing.T) {
	prev := coding.Version(1)
	for _, n := range []int{40, 100, 500, 1000, 3000, 7089} {
		text := strings.Repeat("7", n)
		_, v, _, err := Segments(text, &Options{})
		if err != nil {
			t.Fatalf("%d digits: %v", n, err)
		}
		if v < prev {
			t.Errorf("%d digits: version %v below %v", n, v, prev)
		}
		if v > 1 {
			seg := coding.Segment{Text: text, Mode: coding.Numeric}
			if seg.EncodedLength((v-1).SizeClass()) <= (v - 1).DataBits(coding.L) {
				t.Errorf("%d digits: version %v not minimal", n, v)
			}
		}
		prev = v
	}
	if prev != 40 {
		t.Errorf("7089 digits: version %v, want 40", prev)
	}
}

func TestBoost(t *testing.T) {
	c, err := EncodeOptions("1", &Options{Boost: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.Version != 1 || c.Level != H {
		t.Errorf("got %v-%v, want 1-H", c.Version, c.Level)
	}
	c, err = EncodeOptions("12345", &Options{Format: Micro, Boost: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.Version != coding.M1 || c.Level != L {
		t.Errorf("got %v-%v, want M1-L", c.Version, c.Level)
	}
}

func TestECI(t *testing.T) {
	segs, _, _, err := Segments("héllo", &Options{ECI: Latin1ECI})
	if err != nil {
		t.Fatal(err)
	}
	want := []coding.Segment{
		{Text: "\x03", Mode: coding.ECI},
		{Text: "h\xe9llo", Mode: coding.Byte},
	}
	if diff := cmp.Diff(want, segs); diff != "" {
		t.Errorf("segments (-want +got):\n%s", diff)
	}
	segs, _, _, err = Segments("A", &Options{ECI: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(coding.Segment{Text: "\x83\xe8", Mode: coding.ECI}, segs[0]); diff != "" {
		t.Errorf("designator (-want +got):\n%s", diff)
	}
}

func TestSequenceParts(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	cs, _ := coding.NewCharset(0, false)
	parts, err := sequence(text, cs, 1, coding.L)
	if err != nil {
		t.Fatal(err)
	}
	// 35 digits, 131 bits with the header, fit the 132 bits left in 1-L.
	var got []int
	var joined strings.Builder
	for _, p := range parts {
		n := 0
		for _, seg := range p.segs {
			n += len(seg.Text)
			joined.WriteString(seg.Text)
		}
		got = append(got, n)
		if p.bits > coding.Version(1).DataBits(coding.L)-appendBits {
			t.Errorf("part of %d bits", p.bits)
		}
	}
	if diff := cmp.Diff([]int{35, 35, 30}, got); diff != "" {
		t.Errorf("part lengths (-want +got):\n%s", diff)
	}
	if joined.String() != text {
		t.Errorf("parts join to %q", joined.String())
	}
}

func TestEncodeSequence(t *testing.T) {
	codes, err := EncodeSequence(strings.Repeat("0123456789", 10), &Options{Version: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 3 {
		t.Fatalf("%d codes, want 3", len(codes))
	}
	for i, c := range codes {
		if c.Version != 1 || c.Index != i || c.Total != 3 {
			t.Errorf("code %d: version %v, %d of %d", i, c.Version, c.Index, c.Total)
		}
	}

	// 546 digits fit in 9-L with the header, 455 in 8-L.
	codes, err = EncodeSequence(strings.Repeat("7", 8000), &Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 15 || codes[0].Version != 9 {
		t.Errorf("%d codes of version %v, want 15 of 9", len(codes), codes[0].Version)
	}

	codes, err = EncodeSequence("", &Options{})
	if err != nil || len(codes) != 1 || codes[0].Total != 1 {
		t.Errorf("empty text: %d codes, %v", len(codes), err)
	}

	for _, tc := range []struct {
		name string
		text string
		o    Options
		want error
	}{
		{"micro", "1", Options{Format: Micro}, ErrConfig},
		{"micro version", "1", Options{Version: coding.M3}, ErrConfig},
		{"sixteen symbols", strings.Repeat("1", 600), Options{Version: 1}, ErrDataTooLong},
		{"input", "a€", Options{ECI: Latin1ECI}, ErrInput},
		{"level", "1", Options{Level: 7}, ErrConfig},
	} {
		if _, err := EncodeSequence(tc.text, &tc.o); !errors.Is(err, tc.want) {
			t.Errorf("%s: error %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestForceMask(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		c, err := EncodeOptions("HELLO WORLD", &Options{Level: Q, ForceMask: true, Mask: mask})
		if err != nil {
			t.Fatal(err)
		}
		if c.Mask != mask {
			t.Errorf("mask %d, want %d", c.Mask, mask)
		}
	}
}

func TestImage(t *testing.T) {
	c, err := Encode("https://example.com/", L)
	if err != nil {
		t.Fatal(err)
	}
	pix := c.Size + 2*c.Border
	if b := c.Image().Bounds(); b.Dx() != pix*c.Scale || b.Dy() != pix*c.Scale {
		t.Errorf("bounds %v, want %d square", b, pix*c.Scale)
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range [][2]int{{0, 0}, {4, 4}, {6, 6}, {c.Size - 1, 0}, {8, 0}} {
		x, y := (p[0]+c.Border)*c.Scale, (p[1]+c.Border)*c.Scale
		r, _, _, _ := img.At(x, y).RGBA()
		if black := r == 0; black != c.Black(p[0], p[1]) {
			t.Errorf("pixel %v: black %v", p, black)
		}
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r == 0 {
		t.Error("quiet zone is black")
	}
	c.Scale = 0
	if err := c.EncodePNG(&buf); err != ErrArgs {
		t.Errorf("scale 0: error %v, want ErrArgs", err)
	}
}

func TestPBM(t *testing.T) {
	c, err := Encode("PBM", M)
	if err != nil {
		t.Fatal(err)
	}
	c.Scale = 3
	for _, rev := range []bool{false, true} {
		c.Reverse = rev
		var buf bytes.Buffer
		if err := c.EncodePBM(&buf); err != nil {
			t.Fatal(err)
		}
		pix := (c.Size + 2*c.Border) * c.Scale
		hdr := fmt.Sprintf("P4\n%d %d\n", pix, pix)
		stride := (pix + 7) / 8
		b := buf.Bytes()
		if !bytes.HasPrefix(b, []byte(hdr)) {
			t.Fatalf("header %q, want %q", b[:len(hdr)], hdr)
		}
		b = b[len(hdr):]
		if len(b) != stride*pix {
			t.Fatalf("%d bytes of data, want %d", len(b), stride*pix)
		}
		at := func(x, y int) bool {
			return b[y*stride+x/8]&(0x80>>(x%8)) != 0
		}
		for y := 0; y < pix; y++ {
			for x := 0; x < pix; x++ {
				mx, my := x/c.Scale-c.Border, y/c.Scale-c.Border
				if want := c.Black(mx, my) != rev; at(x, y) != want {
					t.Fatalf("reverse %v: pixel (%d,%d) is %v", rev, x, y, !want)
				}
			}
		}
	}
}

func TestString(t *testing.T) {
	c, err := Encode("1", L)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	pix := c.Size + 2*c.Border
	if len(lines) != (pix+1)/2 {
		t.Errorf("%d lines, want %d", len(lines), (pix+1)/2)
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != pix {
			t.Errorf("line %d: %d runes, want %d", i, n, pix)
		}
	}
	// The top left finder corner is dark, drawn as a blank.
	if r := []rune(lines[c.Border/2])[c.Border]; r != ' ' && r != '▄' {
		t.Errorf("finder corner drawn as %q", r)
	}
}

func ExampleEncode() {
	c, err := Encode("01234567890123456789", M)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(c.Version, c.Level, c.Size)
	// Output: 1 M 21
}
