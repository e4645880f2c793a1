// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import (
	"strings"

	"github.com/ulikunitz/phrase/bitio"
	"github.com/ulikunitz/phrase/syntax"
)

// encoder derives text from the entry section guided by the bits of the
// payload.
type encoder struct {
	t   *Table
	r   *bitio.Reader
	out strings.Builder
}

// choose selects a rule out of n rules. The range of candidates is halved
// for every bit read; a zero bit selects the lower half.
func choose(n int, bit func() bool) int {
	lo, hi := 0, n
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if bit() {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// section appends a derivation of section i to the output.
func (e *encoder) section(i int) {
	rules := e.t.Sections[i].Rules
	rule := rules[choose(len(rules), e.r.ReadBit)]
	for _, seg := range rule {
		if seg.Kind == syntax.Use {
			e.section(seg.Index)
			continue
		}
		e.out.WriteString(seg.Text)
	}
}

// Encode converts the bytes of p into text following the grammar of the
// table. Each derivation of the entry section consumes bits of p;
// derivations are appended until p and the end token following it have
// been consumed completely. The last derivation may consume filler bits.
// Encode never fails; an empty p results in an empty string.
func Encode(t *Table, p []byte) string {
	e := &encoder{t: t, r: bitio.NewReader(p)}
	for !e.r.Drained() {
		e.section(0)
	}
	return e.out.String()
}
