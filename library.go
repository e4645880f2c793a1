// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/ulikunitz/phrase/syntax"
	"github.com/ulikunitz/xz"
)

// Format selects the container of a library file.
type Format int

// Container formats of library files
const (
	// FormatDeflate stores the payload as raw DEFLATE stream.
	FormatDeflate Format = iota
	// FormatXZ stores the payload as xz stream.
	FormatXZ
)

func (f Format) String() string {
	switch f {
	case FormatDeflate:
		return "deflate"
	case FormatXZ:
		return "xz"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// LibraryConfig provides the parameters for writing library files.
type LibraryConfig struct {
	Format Format
	// Level is the DEFLATE compression level. The zero value selects
	// flate.BestCompression. It is ignored for FormatXZ.
	Level int
}

// ApplyDefaults sets the defaults for zero values.
func (c *LibraryConfig) ApplyDefaults() {
	if c.Level == 0 {
		c.Level = flate.BestCompression
	}
}

// Verify checks the configuration for errors. Zero values are replaced by
// their defaults.
func (c *LibraryConfig) Verify() error {
	if c == nil {
		return errors.New("phrase: library configuration is nil")
	}
	c.ApplyDefaults()
	switch c.Format {
	case FormatDeflate, FormatXZ:
	default:
		return fmt.Errorf("phrase: unsupported library format %v",
			c.Format)
	}
	if !(flate.HuffmanOnly <= c.Level && c.Level <= flate.BestCompression) {
		return fmt.Errorf("phrase: DEFLATE level %d out of range",
			c.Level)
	}
	return nil
}

// xzMagic starts every xz stream.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// segment and automaton tags of the payload
const (
	tagText    = 0
	tagUse     = 1
	tagCertain = 0
	tagBranch  = 1
)

// WriteLibrary writes the table as DEFLATE-compressed library file.
func WriteLibrary(w io.Writer, t *Table) error {
	return WriteLibraryConfig(w, t, LibraryConfig{})
}

// WriteLibraryConfig writes the table as library file using the given
// configuration.
func WriteLibraryConfig(w io.Writer, t *Table, cfg LibraryConfig) error {
	if err := cfg.Verify(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	p, err := appendTable(nil, t)
	if err != nil {
		return err
	}
	var cw io.WriteCloser
	switch cfg.Format {
	case FormatXZ:
		cw, err = xz.NewWriter(w)
	default:
		cw, err = flate.NewWriter(w, cfg.Level)
	}
	if err != nil {
		return err
	}
	if _, err = cw.Write(p); err != nil {
		return err
	}
	return cw.Close()
}

// appendTable appends the payload encoding of t to p.
func appendTable(p []byte, t *Table) (q []byte, err error) {
	if p, err = putVarint(p, uint32(len(t.Sections))); err != nil {
		return nil, err
	}
	for _, sec := range t.Sections {
		if len(sec.Rules) > maxIndex {
			return nil, errVarintRange
		}
		p, _ = putVarint(p, uint32(len(sec.Rules)))
		for _, rule := range sec.Rules {
			if p, err = putVarint(p, uint32(len(rule))); err != nil {
				return nil, err
			}
			for _, seg := range rule {
				if p, err = appendSegment(p, seg); err != nil {
					return nil, err
				}
			}
		}
		if p, err = appendLayer(p, sec.Decoder); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func appendSegment(p []byte, seg Segment) (q []byte, err error) {
	if seg.Kind == syntax.Use {
		p = append(p, tagUse)
		return putVarint(p, uint32(seg.Index))
	}
	if len(seg.Text) > maxIndex {
		return nil, errVarintRange
	}
	p = append(p, tagText)
	p, _ = putVarint(p, uint32(len(seg.Text)))
	return append(p, seg.Text...), nil
}

// appendLayer writes the automaton in depth-first order. Branch children
// are written in ascending code point order, so that equal tables result
// in equal files.
func appendLayer(p []byte, l *Layer) (q []byte, err error) {
	if l.IsCertain() {
		p = append(p, tagCertain)
		return putVarint(p, uint32(l.Rule))
	}
	p = append(p, tagBranch)
	if p, err = putVarint(p, uint32(len(l.Branch))); err != nil {
		return nil, err
	}
	for _, r := range l.keys() {
		if r < 0 {
			return nil, errVarintRange
		}
		if p, err = putVarint(p, uint32(r)); err != nil {
			return nil, err
		}
		if p, err = appendLayer(p, l.Branch[r]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// CorruptLibraryError reports a library file that cannot be read.
type CorruptLibraryError struct {
	// Offset is the position in the decompressed payload or -1 if the
	// container itself is damaged.
	Offset int64
	Err    error
}

func (e *CorruptLibraryError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("phrase: corrupt library: %s", e.Err)
	}
	return fmt.Sprintf("phrase: corrupt library at payload offset %d: %s",
		e.Offset, e.Err)
}

func (e *CorruptLibraryError) Unwrap() error { return e.Err }

// ReadLibrary reads a library file written by WriteLibrary or
// WriteLibraryConfig. The container format is detected automatically.
// Damaged files result in a *CorruptLibraryError.
func ReadLibrary(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	var payload []byte
	if bytes.Equal(head, xzMagic) {
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, &CorruptLibraryError{Offset: -1, Err: err}
		}
		if payload, err = io.ReadAll(xr); err != nil {
			return nil, &CorruptLibraryError{Offset: -1, Err: err}
		}
	} else {
		fr := flate.NewReader(br)
		payload, err = io.ReadAll(fr)
		fr.Close()
		if err != nil {
			return nil, &CorruptLibraryError{Offset: -1, Err: err}
		}
	}
	return parseTable(payload)
}

// payloadReader parses the decompressed library payload.
type payloadReader struct {
	p   []byte
	off int
}

func (pr *payloadReader) errorf(format string, a ...interface{}) error {
	return &CorruptLibraryError{
		Offset: int64(pr.off),
		Err:    fmt.Errorf(format, a...),
	}
}

func (pr *payloadReader) varint() (int, error) {
	u, n, err := getVarint(pr.p[pr.off:])
	if err != nil {
		return 0, &CorruptLibraryError{Offset: int64(pr.off),
			Err: io.ErrUnexpectedEOF}
	}
	pr.off += n
	return int(u), nil
}

func (pr *payloadReader) readByte() (byte, error) {
	if pr.off >= len(pr.p) {
		return 0, &CorruptLibraryError{Offset: int64(pr.off),
			Err: io.ErrUnexpectedEOF}
	}
	c := pr.p[pr.off]
	pr.off++
	return c, nil
}

// count reads a length n and checks that at least size*n bytes follow, so
// that corrupt lengths cannot cause huge allocations.
func (pr *payloadReader) count(size int) (int, error) {
	n, err := pr.varint()
	if err != nil {
		return 0, err
	}
	if n*size > len(pr.p)-pr.off {
		return 0, pr.errorf("count %d exceeds payload", n)
	}
	return n, nil
}

// parseTable decodes the payload of a library file.
func parseTable(p []byte) (t *Table, err error) {
	pr := &payloadReader{p: p}
	n, err := pr.count(2)
	if err != nil {
		return nil, err
	}
	t = &Table{Sections: make([]Section, n)}
	for i := range t.Sections {
		sec := &t.Sections[i]
		nr, err := pr.count(1)
		if err != nil {
			return nil, err
		}
		sec.Rules = make([][]Segment, nr)
		for k := range sec.Rules {
			if sec.Rules[k], err = pr.rule(); err != nil {
				return nil, err
			}
		}
		if sec.Decoder, err = pr.layer(); err != nil {
			return nil, err
		}
	}
	if pr.off != len(p) {
		return nil, pr.errorf("%d bytes of trailing data",
			len(p)-pr.off)
	}
	if err = t.Validate(); err != nil {
		return nil, &CorruptLibraryError{Offset: -1, Err: err}
	}
	return t, nil
}

func (pr *payloadReader) rule() ([]Segment, error) {
	n, err := pr.count(2)
	if err != nil {
		return nil, err
	}
	rule := make([]Segment, n)
	for i := range rule {
		tag, err := pr.readByte()
		if err != nil {
			return nil, err
		}
		switch tag {
		case tagText:
			m, err := pr.count(1)
			if err != nil {
				return nil, err
			}
			s := string(pr.p[pr.off : pr.off+m])
			if !utf8.ValidString(s) {
				return nil, pr.errorf("text is not valid UTF-8")
			}
			pr.off += m
			rule[i] = TextSegment(s)
		case tagUse:
			k, err := pr.varint()
			if err != nil {
				return nil, err
			}
			rule[i] = UseSegment(k)
		default:
			return nil, pr.errorf("unknown segment tag %d", tag)
		}
	}
	return rule, nil
}

func (pr *payloadReader) layer() (*Layer, error) {
	tag, err := pr.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagCertain:
		k, err := pr.varint()
		if err != nil {
			return nil, err
		}
		return Certain(k), nil
	case tagBranch:
	default:
		return nil, pr.errorf("unknown automaton tag %d", tag)
	}
	n, err := pr.count(3)
	if err != nil {
		return nil, err
	}
	l := &Layer{Branch: make(map[rune]*Layer, n)}
	for i := 0; i < n; i++ {
		off := pr.off
		c, err := pr.varint()
		if err != nil {
			return nil, err
		}
		r := rune(c)
		if !utf8.ValidRune(r) {
			pr.off = off
			return nil, pr.errorf("invalid code point %#x", c)
		}
		if _, ok := l.Branch[r]; ok {
			pr.off = off
			return nil, pr.errorf("duplicate key %q", r)
		}
		if l.Branch[r], err = pr.layer(); err != nil {
			return nil, err
		}
	}
	return l, nil
}
