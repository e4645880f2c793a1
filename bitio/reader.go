// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitio

// source identifies where the Reader takes its next byte from.
type source byte

const (
	fromData source = iota
	fromToken
	fromFiller
)

// Reader provides the bits of a byte slice, least significant bit first.
// After the payload it serves an end token, the complement of the last
// payload byte, and then an endless sequence of filler bytes. The Reader
// never runs out of bits.
type Reader struct {
	data   []byte
	src    source
	token  byte
	filler *Filler

	cur  byte
	rest int
	// pending is set while bits of the end token are still to be served.
	pending bool
}

// NewReader creates a reader for the payload p. The slice is not copied and
// must not be modified while the reader is in use.
func NewReader(p []byte) *Reader {
	r := &Reader{data: p}
	if len(p) == 0 {
		r.src = fromFiller
		r.filler = NewFiller(0)
	}
	return r
}

// nextByte loads the next byte from the current source and advances the
// source state.
func (r *Reader) nextByte() byte {
	switch r.src {
	case fromData:
		c := r.data[0]
		r.data = r.data[1:]
		if len(r.data) == 0 {
			r.src = fromToken
			r.token = ^c
		}
		return c
	case fromToken:
		r.src = fromFiller
		r.filler = NewFiller(r.token)
		r.pending = true
		return r.token
	default:
		return r.filler.Next()
	}
}

// ReadBit returns the next bit.
func (r *Reader) ReadBit() bool {
	if r.rest == 0 {
		r.cur = r.nextByte()
		r.rest = 8
	}
	b := r.cur&1 != 0
	r.cur >>= 1
	r.rest--
	if r.rest == 0 {
		r.pending = false
	}
	return b
}

// Ended reports whether the payload has been exhausted and the end token
// has been loaded. Bits of the end token may still be pending.
func (r *Reader) Ended() bool {
	return r.src == fromFiller
}

// Drained reports whether the payload and all bits of the end token have
// been served. From this point on the reader only provides filler bits.
func (r *Reader) Drained() bool {
	return r.src == fromFiller && !r.pending
}
