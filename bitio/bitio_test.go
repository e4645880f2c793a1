// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitio

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestFillerBoundary(t *testing.T) {
	for seed := 0; seed < 256; seed++ {
		f := NewFiller(byte(seed))
		prev := byte(seed)
		for i := 0; i < 256; i++ {
			x := f.Next()
			if x == ^prev {
				t.Fatalf("seed %#02x: output %d is %#02x,"+
					" the complement of %#02x",
					seed, i, x, prev)
			}
			prev = x
		}
	}
}

func TestFillerDeterministic(t *testing.T) {
	f, g := NewFiller(0x5a), NewFiller(0x5a)
	for i := 0; i < 100; i++ {
		x, y := f.Next(), g.Next()
		if x != y {
			t.Fatalf("output %d differs: %#02x and %#02x", i, x, y)
		}
	}
}

func TestReaderBitOrder(t *testing.T) {
	r := NewReader([]byte{0x01, 0x80})
	want := []bool{
		true, false, false, false, false, false, false, false,
		false, false, false, false, false, false, false, true,
	}
	for i, w := range want {
		if r.Ended() {
			t.Fatalf("Ended returned true before bit %d", i)
		}
		if b := r.ReadBit(); b != w {
			t.Fatalf("bit %d is %t; want %t", i, b, w)
		}
	}
	if r.Ended() {
		t.Fatalf("Ended returned true before the end token")
	}
	// The end token is ^0x80 = 0x7f.
	if b := r.ReadBit(); !b {
		t.Fatalf("first end token bit is false; want true")
	}
	if !r.Ended() {
		t.Fatalf("Ended returned false after loading the end token")
	}
	for i := 1; i < 8; i++ {
		if r.Drained() {
			t.Fatalf("Drained returned true with %d token bits"+
				" pending", 8-i)
		}
		b := r.ReadBit()
		if w := i < 7; b != w {
			t.Fatalf("end token bit %d is %t; want %t", i, b, w)
		}
	}
	if !r.Drained() {
		t.Fatalf("Drained returned false after the end token")
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(nil)
	if !r.Ended() {
		t.Fatalf("Ended returned false for empty payload")
	}
	if !r.Drained() {
		t.Fatalf("Drained returned false for empty payload")
	}
	f := NewFiller(0)
	for i := 0; i < 4; i++ {
		var x byte
		for k := 0; k < 8; k++ {
			if r.ReadBit() {
				x |= 1 << k
			}
		}
		if y := f.Next(); x != y {
			t.Fatalf("filler byte %d is %#02x; want %#02x", i, x, y)
		}
	}
}

// transfer copies n bits from the reader to a new writer.
func transfer(r *Reader, n int) *Writer {
	w := new(Writer)
	for i := 0; i < n; i++ {
		w.WriteBit(r.ReadBit())
	}
	return w
}

func TestWriterInverse(t *testing.T) {
	p := []byte("The quick brown fox jumps over the lazy dog.")
	w := transfer(NewReader(p), 8*len(p)+5)
	if !bytes.Equal(w.Bytes(), p) {
		t.Fatalf("writer bytes %q; want %q", w.Bytes(), p)
	}
	if w.Len() != len(p) {
		t.Fatalf("w.Len() returned %d; want %d", w.Len(), len(p))
	}
}

func TestFinish(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 500; i++ {
		p := make([]byte, 1+rng.Intn(40))
		rng.Read(p)
		// the reader is drained after the end token; any number of
		// filler bits may follow
		n := 8*(len(p)+1) + rng.Intn(64)
		r := NewReader(p)
		w := transfer(r, n)
		if !r.Drained() {
			t.Fatalf("reader not drained after %d bits", n)
		}
		q := w.Finish()
		if !bytes.Equal(q, p) {
			t.Fatalf("Finish returned % x; want % x", q, p)
		}
	}
}

func TestFinishCases(t *testing.T) {
	tests := []struct {
		in   []byte
		want []byte
	}{
		{nil, nil},
		{[]byte{0x12}, []byte{0x12}},
		{[]byte{0x12, 0x34}, []byte{0x12, 0x34}},
		{[]byte{0x12, 0xed}, []byte{0x12}},
		{[]byte{0x00, 0xff, 0x00}, []byte{0x00, 0xff}},
		{[]byte{0x0f, 0xf0, 0x33, 0x44}, []byte{0x0f}},
	}
	for _, tc := range tests {
		w := new(Writer)
		for _, c := range tc.in {
			for k := 0; k < 8; k++ {
				w.WriteBit(c&(1<<k) != 0)
			}
		}
		// partial byte
		w.WriteBit(true)
		got := w.Finish()
		if !bytes.Equal(got, tc.want) {
			t.Errorf("Finish for % x returned % x; want % x",
				tc.in, got, tc.want)
		}
	}
}
