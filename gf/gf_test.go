// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldTables(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    *Field
		q    int
	}{
		{"QR", QR, 256},
		{"DataMatrix", DataMatrix, 256},
		{"GridMatrix", GridMatrix, 128},
		{"HanXin", HanXin, 256},
		{"Aztec4", Aztec4, 16},
		{"Aztec6", Aztec6, 64},
		{"Aztec10", Aztec10, 1024},
		{"Aztec12", Aztec12, 4096},
		{"GF(2^5)", NewBinaryField(0x25, 2), 32},
		{"GF(2^13)", NewBinaryField(0x201b, 2), 8192},
		{"Ultracode", Ultracode, 283},
		{"GF(929)", NewPrimeField(929, 3), 929},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.f
			if f.Order() != tc.q {
				t.Fatalf("Order() = %d, want %d", f.Order(), tc.q)
			}
			for x := 1; x < f.Order(); x++ {
				if got := f.Exp(f.Log(x)); got != x {
					t.Fatalf("Exp(Log(%d)) = %d", x, got)
				}
				if got := f.Mul(x, f.Inv(x)); got != 1 {
					t.Fatalf("%d * Inv(%d) = %d", x, x, got)
				}
				if got := f.Add(f.Sub(x, 1), 1); got != x {
					t.Fatalf("(%d-1)+1 = %d", x, got)
				}
				if got := f.Add(x, f.Neg(x)); got != 0 {
					t.Fatalf("%d + -%d = %d", x, x, got)
				}
			}
			if f.Mul(0, 5) != 0 || f.Mul(5, 0) != 0 {
				t.Error("multiplication by zero is not zero")
			}
		})
	}
}

func TestBadField(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    func()
	}{
		{"narrow", func() { NewBinaryField(0x7, 2) }},
		{"wide", func() { NewBinaryField(0x4001, 2) }},
		{"not primitive", func() { NewBinaryField(0x11b, 2) }},
		{"composite", func() { NewPrimeField(285, 2) }},
		{"bad generator", func() { NewPrimeField(283, 4) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("no panic")
				}
			}()
			tc.f()
		})
	}
}

func TestGen(t *testing.T) {
	// (x-3)(x-2) over GF(7) = x² + 2x + 6
	f := NewPrimeField(7, 3)
	if diff := cmp.Diff([]int{1, 2, 6}, f.Gen(2, 1)); diff != "" {
		t.Errorf("Gen mismatch (-want +got):\n%s", diff)
	}
	g := QR.Gen(10, 0)
	for i := 0; i < 10; i++ {
		if v := QR.Eval(g, QR.Exp(i)); v != 0 {
			t.Errorf("g(α^%d) = %d, want 0", i, v)
		}
	}
}

func TestRSEncode(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    *Field
		root int
		msg  []int
		want []int
	}{
		{
			// Version 1-M QR code for "01234567".
			name: "QR",
			f:    QR,
			msg: []int{
				0x10, 0x20, 0x0c, 0x56, 0x61, 0x80, 0xec, 0x11,
				0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11,
			},
			want: []int{0xa5, 0x24, 0xd4, 0xc1, 0xed, 0x36, 0xc7, 0x87, 0x2c, 0x55},
		},
		{"GF(7)", NewPrimeField(7, 3), 1, []int{1, 2, 3}, []int{1, 3}},
		{"GF(16)", Aztec4, 1, []int{1, 2, 3, 4, 5}, []int{4, 4, 9, 7}},
		{"Ultracode", Ultracode, 1, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, []int{108, 261, 112, 166, 188}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rs := NewRSEncoder(tc.f, len(tc.want), tc.root)
			got := rs.Encode(tc.msg)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Encode mismatch (-want +got):\n%s", diff)
			}
			if !rs.Check(append(append([]int(nil), tc.msg...), got...)) {
				t.Error("codeword not divisible by generator")
			}
		})
	}
}

func TestRSDivisible(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, tc := range []struct {
		name string
		f    *Field
		root int
	}{
		{"QR", QR, 0},
		{"DataMatrix", DataMatrix, 1},
		{"GridMatrix", GridMatrix, 1},
		{"Aztec10", Aztec10, 1},
		{"GF(2^13)", NewBinaryField(0x201b, 2), 1},
		{"Ultracode", Ultracode, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.f.Order()
			for i := 0; i < 20; i++ {
				n := 1 + rnd.Intn(min(30, q-2))
				msg := make([]int, 1+rnd.Intn(min(100, q-1-n)))
				for j := range msg {
					msg[j] = rnd.Intn(q)
				}
				rs := NewRSEncoder(tc.f, n, tc.root)
				ecc := rs.Encode(msg)
				if len(ecc) != n {
					t.Fatalf("got %d check symbols, want %d", len(ecc), n)
				}
				if again := rs.Encode(msg); !cmp.Equal(ecc, again) {
					t.Fatalf("Encode not deterministic: %v != %v", ecc, again)
				}
				cw := append(append([]int(nil), msg...), ecc...)
				if !rs.Check(cw) {
					t.Fatalf("message %v: codeword not divisible", msg)
				}
				k := rnd.Intn(len(cw))
				cw[k] = tc.f.Add(cw[k], 1)
				if rs.Check(cw) {
					t.Fatalf("corrupted codeword %v passes Check", cw)
				}
			}
		})
	}
}

func TestECC(t *testing.T) {
	data := []byte{0x10, 0x20, 0x0c, 0x56, 0x61, 0x80, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11}
	check := make([]byte, 10)
	NewRSEncoder(QR, 10, 0).ECC(data, check)
	want := []byte{0xa5, 0x24, 0xd4, 0xc1, 0xed, 0x36, 0xc7, 0x87, 0x2c, 0x55}
	if diff := cmp.Diff(want, check); diff != "" {
		t.Errorf("ECC mismatch (-want +got):\n%s", diff)
	}
}
