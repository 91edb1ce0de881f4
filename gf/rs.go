// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf

// Predefined fields of the supported matrix symbologies.
var (
	QR         = NewBinaryField(0x11d, 2)  // QR Code, Micro QR Code
	DataMatrix = NewBinaryField(0x12d, 2)  // Data Matrix, Aztec 8-bit
	GridMatrix = NewBinaryField(0x89, 2)   // Grid Matrix, GF(128)
	HanXin     = NewBinaryField(0x163, 2)  // Han Xin Code
	Aztec4     = NewBinaryField(0x13, 2)   // Aztec mode message
	Aztec6     = NewBinaryField(0x43, 2)   // Aztec 6-bit, MaxiCode
	Aztec10    = NewBinaryField(0x409, 2)  // Aztec 10-bit
	Aztec12    = NewBinaryField(0x1069, 2) // Aztec 12-bit
	Ultracode  = NewPrimeField(283, 3)     // Ultracode tiles
)

// An RSEncoder computes systematic Reed-Solomon check symbols.
// It is a pure function of the field, the number of check symbols
// and the root index, and may be shared between goroutines.
type RSEncoder struct {
	f   *Field
	n   int
	gen []int // generator, highest degree first
}

// NewRSEncoder returns an encoder producing n check symbols with the
// generator polynomial whose roots are gen**i, i in [root, root+n).
func NewRSEncoder(f *Field, n, root int) *RSEncoder {
	if n < 1 || n >= f.q {
		panic("gf: bad number of check symbols")
	}
	return &RSEncoder{f: f, n: n, gen: f.Gen(n, root)}
}

// Len returns the number of check symbols.
func (rs *RSEncoder) Len() int { return rs.n }

// Generator returns a copy of the generator polynomial.
func (rs *RSEncoder) Generator() []int { return append([]int(nil), rs.gen...) }

// Encode returns the check symbols for msg.  Appending them to msg
// yields a codeword divisible by the generator polynomial.
func (rs *RSEncoder) Encode(msg []int) []int {
	f, g, n := rs.f, rs.gen, rs.n
	r := make([]int, n)
	for _, m := range msg {
		fb := f.Add(m, r[0])
		for j := 0; j < n-1; j++ {
			r[j] = f.Sub(r[j+1], f.Mul(fb, g[j+1]))
		}
		r[n-1] = f.Neg(f.Mul(fb, g[n]))
	}
	// The register holds the remainder of msg·x^n; the check
	// symbols are its negation.
	for i, v := range r {
		r[i] = f.Neg(v)
	}
	return r
}

// ECC writes the check bytes for data to check, which must be
// Len() bytes long.  The field must have at most 256 elements.
func (rs *RSEncoder) ECC(data, check []byte) {
	if len(check) != rs.n {
		panic("gf: bad check length")
	}
	if rs.f.q > 256 {
		panic("gf: field too large for bytes")
	}
	msg := make([]int, len(data))
	for i, b := range data {
		msg[i] = int(b)
	}
	for i, v := range rs.Encode(msg) {
		check[i] = byte(v)
	}
}

// Check reports whether codeword (message followed by check symbols)
// is divisible by the generator polynomial.
func (rs *RSEncoder) Check(codeword []int) bool {
	for _, v := range rs.f.Rem(codeword, rs.gen) {
		if v != 0 {
			return false
		}
	}
	return true
}
