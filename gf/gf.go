// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf implements Galois field arithmetic and Reed-Solomon
// encoding for matrix symbols.
//
// A Field is either a binary extension field GF(2^m), 4 <= m <= 13,
// defined by a primitive polynomial, or a prime field GF(p).  Both
// share the log/antilog tables and the generator polynomial
// construction; they differ only in how two elements are added and
// subtracted.
package gf // import "github.com/unixdj/matrix/gf"

import (
	"fmt"
	"math/bits"
)

// arith is the addition strategy of a field.
type arith interface {
	add(a, b int) int
	sub(a, b int) int
	// times multiplies a by the small generator g without tables.
	times(a, g int) int
	String() string
}

// xor is the arithmetic of GF(2^m): addition and subtraction are
// the same operation.
type xor struct {
	poly int // primitive polynomial
	top  int // 1<<m
}

func (xor) add(a, b int) int { return a ^ b }
func (xor) sub(a, b int) int { return a ^ b }

func (x xor) times(a, g int) int {
	var p int
	for ; g != 0; g >>= 1 {
		if g&1 != 0 {
			p ^= a
		}
		if a <<= 1; a&x.top != 0 {
			a ^= x.poly
		}
	}
	return p
}

func (x xor) String() string { return fmt.Sprintf("GF(2^%d, %#x)", bits.Len(uint(x.poly))-1, x.poly) }

// modp is the arithmetic of GF(p).
type modp int

func (p modp) add(a, b int) int { return (a + b) % int(p) }
func (p modp) sub(a, b int) int { return (a - b + int(p)) % int(p) }

func (p modp) times(a, g int) int { return a * g % int(p) }

func (p modp) String() string { return fmt.Sprintf("GF(%d)", int(p)) }

// A Field represents a finite field with its log and antilog tables.
// Elements are integers in [0, Order()).
type Field struct {
	ar  arith
	q   int   // order
	gen int   // generator
	log []int // log[0] is unused
	exp []int // exp[i] = gen**i, i < 2*(q-1)
}

// NewBinaryField returns the field GF(2^m) defined by the primitive
// polynomial poly, where m is the degree of poly, with generator gen
// (usually 2).  NewBinaryField panics if m is out of the range 4..13
// or gen does not generate the multiplicative group.
func NewBinaryField(poly, gen int) *Field {
	m := bits.Len(uint(poly)) - 1
	if m < 4 || m > 13 {
		panic(fmt.Sprintf("gf: polynomial %#x: degree %d out of range", poly, m))
	}
	return newField(xor{poly: poly, top: 1 << m}, 1<<m, gen)
}

// NewPrimeField returns the field GF(p) with generator gen.
// NewPrimeField panics if p is not prime or gen is not a primitive
// root modulo p.
func NewPrimeField(p, gen int) *Field {
	if p < 3 || p > 1<<16 || !isPrime(p) {
		panic(fmt.Sprintf("gf: %d is not a supported prime", p))
	}
	return newField(modp(p), p, gen)
}

func isPrime(p int) bool {
	for d := 2; d*d <= p; d++ {
		if p%d == 0 {
			return false
		}
	}
	return true
}

func newField(ar arith, q, gen int) *Field {
	f := &Field{
		ar:  ar,
		q:   q,
		gen: gen,
		log: make([]int, q),
		exp: make([]int, 2*(q-1)),
	}
	if gen <= 1 || gen >= q {
		panic(fmt.Sprintf("gf: %v: bad generator %d", ar, gen))
	}
	seen := make([]bool, q)
	x := 1
	for i := 0; i < q-1; i++ {
		if seen[x] {
			panic(fmt.Sprintf("gf: %v: %d is not primitive", ar, gen))
		}
		seen[x] = true
		f.exp[i] = x
		f.exp[i+q-1] = x
		f.log[x] = i
		x = ar.times(x, gen)
	}
	if x != 1 {
		panic(fmt.Sprintf("gf: %v: %d is not primitive", ar, gen))
	}
	return f
}

func (f *Field) String() string { return f.ar.String() }

// Order returns the number of elements in f.
func (f *Field) Order() int { return f.q }

// Exp returns gen**e.  e may be any non-negative integer.
func (f *Field) Exp(e int) int { return f.exp[e%(f.q-1)] }

// Log returns the discrete logarithm of x.  Log panics if x is 0.
func (f *Field) Log(x int) int {
	if x == 0 {
		panic("gf: log of zero")
	}
	return f.log[x]
}

// Add returns x+y.
func (f *Field) Add(x, y int) int { return f.ar.add(x, y) }

// Sub returns x-y.
func (f *Field) Sub(x, y int) int { return f.ar.sub(x, y) }

// Neg returns -x.
func (f *Field) Neg(x int) int { return f.ar.sub(0, x) }

// Mul returns x*y.
func (f *Field) Mul(x, y int) int {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[f.log[x]+f.log[y]]
}

// Inv returns the multiplicative inverse of x.  Inv panics if x is 0.
func (f *Field) Inv(x int) int {
	if x == 0 {
		panic("gf: inverse of zero")
	}
	return f.exp[f.q-1-f.log[x]]
}

// Gen returns the monic generator polynomial of degree n,
// the product of (x - gen**i) for i in [root, root+n).
// Coefficients are listed from the highest degree down;
// the first one is always 1.
func (f *Field) Gen(n, root int) []int {
	p := make([]int, 1, n+1)
	p[0] = 1
	for i := root; i < root+n; i++ {
		a := f.Exp(i)
		p = append(p, 0)
		for j := len(p) - 1; j > 0; j-- {
			p[j] = f.Sub(p[j], f.Mul(a, p[j-1]))
		}
	}
	return p
}

// Eval returns the value of the polynomial p (highest degree first)
// at x.
func (f *Field) Eval(p []int, x int) int {
	var v int
	for _, c := range p {
		v = f.Add(f.Mul(v, x), c)
	}
	return v
}

// Rem returns the remainder of dividing p by d, both listed from the
// highest degree down.  The result has len(d)-1 coefficients.
// Rem panics if the leading coefficient of d is 0.
func (f *Field) Rem(p, d []int) []int {
	n := len(d) - 1
	inv := f.Inv(d[0])
	r := make([]int, len(p))
	copy(r, p)
	for i := 0; i+n < len(r); i++ {
		c := f.Mul(r[i], inv)
		if c == 0 {
			continue
		}
		for j := 1; j <= n; j++ {
			r[i+j] = f.Sub(r[i+j], f.Mul(c, d[j]))
		}
		r[i] = 0
	}
	if len(r) < n {
		return append(make([]int, n-len(r)), r...)
	}
	return r[len(r)-n:]
}
