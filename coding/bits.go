// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"sync"

	"github.com/unixdj/matrix/gf"
)

// Bits is a bit buffer, filled most significant bit first.
type Bits struct {
	b    []byte
	nbit int
}

// Reset empties b.
func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Len returns the number of bits written.
func (b *Bits) Len() int { return b.nbit }

// Bytes returns the buffer.  Bits past Len in the last byte are zero.
func (b *Bits) Bytes() []byte { return b.b }

func (b *Bits) growTo(n int) {
	if cap(b.b) < n {
		b.b = append(make([]byte, 0, n), b.b...)
	}
}

// Write appends the low nbit bits of v, nbit <= 32.
func (b *Bits) Write(v uint32, nbit int) {
	if nbit == 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// WriteBytes appends the bytes of p.
func (b *Bits) WriteBytes(p []byte) {
	if b.nbit&7 == 0 {
		b.b = append(b.b, p...)
		b.nbit += len(p) * 8
		return
	}
	for _, c := range p {
		b.Write(uint32(c), 8)
	}
}

// Pad appends up to t zero terminator bits, zero bits up to the byte
// boundary and the pad codewords 0xec and 0x11 in turn until b holds
// n bits.  If n is not a multiple of 8, the last codeword is the
// 4 bit codeword 0.  Pad panics if b holds more than n bits.
func (b *Bits) Pad(t, n int) {
	if b.nbit > n {
		panic("qr: too much data")
	}
	b.growTo((n + 7) >> 3)
	b.nbit = min(b.nbit+t, n)
	for len(b.b)*8 < b.nbit {
		b.b = append(b.b, 0)
	}
	for i := 0; len(b.b) < n>>3; i++ {
		b.b = append(b.b, [2]byte{0xec, 0x11}[i&1])
	}
	if len(b.b)*8 < n {
		b.b = append(b.b, 0)
	}
	b.nbit = n
}

// A Block is a data block with its check codewords.
type Block struct {
	Data, Check []byte
}

// splitBlocks splits data into nblock blocks.  When the data does not
// divide evenly, the last blocks are one codeword longer.
func splitBlocks(data []byte, nblock int) []Block {
	blocks := make([]Block, nblock)
	db := len(data) / nblock
	long := nblock - len(data)%nblock
	for i := range blocks {
		n := db
		if i >= long {
			n++
		}
		blocks[i].Data, data = data[:n:n], data[n:]
	}
	return blocks
}

// addCheck computes check codewords for every block.
func addCheck(blocks []Block, check int) {
	rs := rsEncoder(check)
	for i := range blocks {
		blocks[i].Check = make([]byte, check)
		rs.ECC(blocks[i].Data, blocks[i].Check)
	}
}

// RS encoders by number of check codewords, created on first use.
// QR generator polynomials have the roots α⁰ to αⁿ⁻¹.
var rsEncoders [31]struct {
	once sync.Once
	rs   *gf.RSEncoder
}

func rsEncoder(n int) *gf.RSEncoder {
	e := &rsEncoders[n]
	e.once.Do(func() { e.rs = gf.NewRSEncoder(gf.QR, n, 0) })
	return e.rs
}

// interleave writes the codewords of blocks to b: data codewords
// first, taking one from each block in turn, then check codewords the
// same way.  dataBits is the number of data bits; if it is not a
// multiple of 8, the last data codeword is 4 bits long.  Blocks with
// half codewords are always single.
func interleave(b *Bits, blocks []Block, dataBits int) {
	if dataBits&7 != 0 {
		d := blocks[0].Data
		b.WriteBytes(d[:len(d)-1])
		b.Write(uint32(d[len(d)-1]>>4), 4)
		b.WriteBytes(blocks[0].Check)
		return
	}
	longest := len(blocks[len(blocks)-1].Data)
	for i := 0; i < longest; i++ {
		for _, blk := range blocks {
			if i < len(blk.Data) {
				b.Write(uint32(blk.Data[i]), 8)
			}
		}
	}
	for i := range blocks[0].Check {
		for _, blk := range blocks {
			b.Write(uint32(blk.Check[i]), 8)
		}
	}
}
