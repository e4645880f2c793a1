// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitio

// Writer collects bits into bytes. It is the inverse of Reader: the first
// bit written into a byte becomes its least significant bit.
type Writer struct {
	buf []byte
	cur byte
	n   int
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(b bool) {
	w.cur >>= 1
	if b {
		w.cur |= 0x80
	}
	w.n++
	if w.n == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.n = 0
	}
}

// Len returns the number of complete bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the complete bytes written so far. A partial byte is not
// included.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Finish returns the payload by removing the end token and the filler that
// a Reader appended. It looks for the last pair of adjacent bytes that are
// bitwise complements of each other and cuts the data before the second
// byte of the pair. A partial byte is dropped. If no such pair exists all
// complete bytes are returned.
func (w *Writer) Finish() []byte {
	for i := len(w.buf) - 1; i > 0; i-- {
		if w.buf[i] == ^w.buf[i-1] {
			return w.buf[:i]
		}
	}
	return w.buf
}
