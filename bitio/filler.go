// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitio

// Parameters of the linear congruential generator producing the filler
// bytes. The modulus is 256 and provided by the byte arithmetic.
const (
	fillerMul     = 110
	fillerInc     = 13
	fillerPerturb = 17
)

// Filler generates the deterministic byte sequence that follows the end
// token. Two adjacent outputs are never bitwise complements of each other;
// the seed counts as the output preceding the first draw.
type Filler struct {
	state byte
}

// NewFiller creates a filler generator seeded with the end token.
func NewFiller(seed byte) *Filler {
	return &Filler{state: seed}
}

// Next returns the next filler byte.
func (f *Filler) Next() byte {
	x := fillerMul*f.state + fillerInc
	if x == ^f.state {
		x += fillerPerturb
	}
	f.state = x
	return x
}
