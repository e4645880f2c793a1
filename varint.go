// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import "errors"

// The variable length integers of the library format store the number of
// bytes minus one in the two most significant bits of the first byte. The
// remaining 30 bits of up to four bytes contain the value in big-endian
// order.

// errVarintRange indicates a value that cannot be encoded.
var errVarintRange = errors.New("phrase: varint value out of range")

// errors for getVarint
var (
	errVarintShortBuffer = errors.New("phrase: varint: short buffer")
)

// varintLen returns the number of bytes required to encode u.
func varintLen(u uint32) int {
	switch {
	case u < 1<<6:
		return 1
	case u < 1<<14:
		return 2
	case u < 1<<22:
		return 3
	default:
		return 4
	}
}

// putVarint appends the encoding of u to p.
func putVarint(p []byte, u uint32) ([]byte, error) {
	if u > maxIndex {
		return p, errVarintRange
	}
	n := varintLen(u)
	for i := n - 1; i >= 0; i-- {
		c := byte(u >> (8 * uint(i)))
		if i == n-1 {
			c |= byte(n-1) << 6
		}
		p = append(p, c)
	}
	return p, nil
}

// getVarint decodes a variable length integer from p. It returns the value
// and the number of bytes read.
func getVarint(p []byte) (u uint32, n int, err error) {
	if len(p) == 0 {
		return 0, 0, errVarintShortBuffer
	}
	n = int(p[0]>>6) + 1
	if len(p) < n {
		return 0, 0, errVarintShortBuffer
	}
	u = uint32(p[0] & 0x3f)
	for _, c := range p[1:n] {
		u = u<<8 | uint32(c)
	}
	return u, n, nil
}
