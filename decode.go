// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/phrase/bitio"
	"github.com/ulikunitz/phrase/syntax"
)

// DecodeError reports text that hasn't been produced by the grammar.
type DecodeError struct {
	// Offset is the byte offset in the text where decoding failed.
	Offset int
	// Excerpt is a short piece of the text starting at Offset.
	Excerpt string
	Msg     string
}

func (e *DecodeError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("phrase: offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("phrase: offset %d: %s at %q", e.Offset, e.Msg,
		e.Excerpt)
}

// excerptLen is the number of characters of the input shown in a
// DecodeError.
const excerptLen = 10

// excerpt returns the first characters of s, marking omitted text with
// an ellipsis.
func excerpt(s string) string {
	n := 0
	for i := range s {
		if n == excerptLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// decoder recovers the bits that selected the rules of the text.
type decoder struct {
	t    *Table
	text string
	pos  int
	w    bitio.Writer
}

func (d *decoder) errorf(offset int, format string, a ...interface{}) error {
	return &DecodeError{
		Offset:  offset,
		Excerpt: excerpt(d.text[offset:]),
		Msg:     fmt.Sprintf(format, a...),
	}
}

// match runs the automaton of the section over the remaining text and
// returns the rule it identifies. No text is consumed.
func (d *decoder) match(sec *Section) (rule int, err error) {
	l := sec.Decoder
	pos := d.pos
	for !l.IsCertain() {
		if pos >= len(d.text) {
			return 0, d.errorf(d.pos, "unexpected end of text")
		}
		r, n := utf8.DecodeRuneInString(d.text[pos:])
		next, ok := l.Branch[r]
		if !ok {
			return 0, d.errorf(pos, "unexpected character %q", r)
		}
		l = next
		pos += n
	}
	return l.Rule, nil
}

// writeChoice writes the bits that make choose select rule i out of n.
func (d *decoder) writeChoice(i, n int) {
	lo, hi := 0, n
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if i < mid {
			d.w.WriteBit(false)
			hi = mid
		} else {
			d.w.WriteBit(true)
			lo = mid
		}
	}
}

// maxDepth limits the nesting of sections in a decoded derivation.
const maxDepth = 1 << 14

// section consumes a derivation of section i from the text. The argument
// depth is the number of enclosing sections.
func (d *decoder) section(i, depth int) error {
	if depth >= maxDepth {
		return d.errorf(d.pos, "sections nested deeper than %d",
			maxDepth)
	}
	sec := &d.t.Sections[i]
	k, err := d.match(sec)
	if err != nil {
		return err
	}
	d.writeChoice(k, len(sec.Rules))
	for _, seg := range sec.Rules[k] {
		if seg.Kind == syntax.Use {
			if err = d.section(seg.Index, depth+1); err != nil {
				return err
			}
			continue
		}
		if !strings.HasPrefix(d.text[d.pos:], seg.Text) {
			return d.errorf(d.pos, "expected %q", seg.Text)
		}
		d.pos += len(seg.Text)
	}
	return nil
}

// Decode recovers the bytes from text that Encode produced with the same
// table. A *DecodeError is returned if the text cannot have been produced
// by the grammar of the table.
func Decode(t *Table, text string) ([]byte, error) {
	d := &decoder{t: t, text: text}
	for d.pos < len(d.text) {
		start := d.pos
		if err := d.section(0, 0); err != nil {
			return nil, err
		}
		if d.pos == start {
			return nil, d.errorf(start, "derivation consumed no text")
		}
	}
	return d.w.Finish(), nil
}
