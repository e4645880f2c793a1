// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	encunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ulikunitz/phrase/xlog"
)

// SegmentKind distinguishes literal text from section references.
type SegmentKind byte

// The values are used as tags in the library file format.
const (
	Text SegmentKind = 0
	Use  SegmentKind = 1
)

func (k SegmentKind) String() string {
	switch k {
	case Text:
		return "Text"
	case Use:
		return "Use"
	}
	return "SegmentKind(" + strconv.Itoa(int(k)) + ")"
}

// RawSegment is a segment of a rule as parsed. For Use segments the span
// contains the name of the referenced section.
type RawSegment struct {
	Kind SegmentKind
	Span Span
}

// RawSection is a section as it has been parsed, before any references
// have been resolved.
type RawSection struct {
	Name  Span
	Rules [][]RawSegment
}

// File returns the name of the file defining the section.
func (s *RawSection) File() string { return s.Name.Src.Name }

// Parse reads the grammar file entry from fsys and all files it includes.
// The sections are returned in the order of their definition with the
// sections of included files at the place of the include header.
func Parse(fsys fs.FS, entry string, logger xlog.Logger) ([]*RawSection,
	error) {
	p := &parser{fsys: fsys, logger: logger}
	if err := p.readFile(entry, nil); err != nil {
		return nil, err
	}
	xlog.Printf(logger, "parsed %d sections from %d files",
		len(p.sections), p.files)
	return p.sections, nil
}

// ParseString parses a single grammar text. Include headers are not
// supported.
func ParseString(name, text string) ([]*RawSection, error) {
	p := new(parser)
	src, err := newSource(name, text)
	if err != nil {
		return nil, err
	}
	if err = p.parseFile(src); err != nil {
		return nil, err
	}
	return p.sections, nil
}

// parser collects the sections of all files.
type parser struct {
	fsys     fs.FS
	logger   xlog.Logger
	sections []*RawSection
	// files being parsed, the innermost last
	stack []string
	files int
}

// bomDecoder returns the transformer decoding grammar files. UTF-16 files
// are supported if they start with a byte order mark.
func bomDecoder() transform.Transformer {
	return encunicode.BOMOverride(encunicode.UTF8.NewDecoder())
}

// hasUTF16BOM checks whether the data starts with an UTF-16 byte order
// mark.
func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xfe, 0xff}) ||
		bytes.HasPrefix(data, []byte{0xff, 0xfe})
}

// readFile parses the file name. The position at is the position of the
// include header or nil for the entry file.
func (p *parser) readFile(name string, at *Position) error {
	pos := Position{File: name, Line: 1, Col: 1}
	if at != nil {
		pos = *at
	}
	for i, f := range p.stack {
		if f == name {
			cycle := append(p.stack[i:len(p.stack):len(p.stack)],
				name)
			return &ParseError{Pos: pos,
				Msg: "include cycle " + strings.Join(cycle, " -> ")}
		}
	}
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return &ParseError{Pos: pos, Msg: "cannot read file " + name,
			Err: err}
	}
	if !hasUTF16BOM(data) && !utf8.Valid(data) {
		return &ParseError{Pos: pos,
			Msg: "file " + name + " is not valid UTF-8"}
	}
	text, _, err := transform.Bytes(bomDecoder(), data)
	if err != nil {
		return &ParseError{Pos: pos, Msg: "cannot decode file " + name,
			Err: err}
	}
	src, err := newSource(name, string(text))
	if err != nil {
		return err
	}
	p.stack = append(p.stack, name)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()
	p.files++
	n := len(p.sections)
	if err = p.parseFile(src); err != nil {
		return err
	}
	xlog.Printf(p.logger, "%s: %d sections", name, len(p.sections)-n)
	return nil
}

// newSource creates the source for the text. Comments are replaced by
// spaces, so that all offsets stay valid.
func newSource(name, text string) (*Source, error) {
	var (
		b       []byte
		inQuote bool
		inNote  bool
		quote   int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n' || c == '\r':
			if inQuote {
				src := &Source{Name: name, Text: text}
				return nil, &ParseError{Pos: src.Position(quote),
					Msg: "unterminated string"}
			}
			inNote = false
		case inNote:
			if b == nil {
				b = []byte(text)
			}
			b[i] = ' '
		case c == '"':
			inQuote = !inQuote
			quote = i
		case c == '#' && !inQuote:
			inNote = true
			if b == nil {
				b = []byte(text)
			}
			b[i] = ' '
		}
	}
	if inQuote {
		src := &Source{Name: name, Text: text}
		return nil, &ParseError{Pos: src.Position(quote),
			Msg: "unterminated string"}
	}
	if b != nil {
		text = string(b)
	}
	return &Source{Name: name, Text: text}, nil
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }

// isIdent reports whether r may be part of a section name in a reference.
func isIdent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nl, unicode.Pc)
}

// scanner reads a single source.
type scanner struct {
	src *Source
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src.Text) }

func (s *scanner) peek() rune {
	r, _ := utf8.DecodeRuneInString(s.src.Text[s.pos:])
	return r
}

// takeWhile consumes all runes for which f returns true and returns the
// span covering them.
func (s *scanner) takeWhile(f func(r rune) bool) Span {
	start := s.pos
	for !s.eof() {
		r, n := utf8.DecodeRuneInString(s.src.Text[s.pos:])
		if !f(r) {
			break
		}
		s.pos += n
	}
	return Span{Src: s.src, Start: start, End: s.pos}
}

func (s *scanner) skipSpace() Span { return s.takeWhile(isSpace) }

// consume consumes the given prefix if present.
func (s *scanner) consume(prefix string) bool {
	if strings.HasPrefix(s.src.Text[s.pos:], prefix) {
		s.pos += len(prefix)
		return true
	}
	return false
}

// lineEnd consumes white space that either contains a line break or runs
// to the end of the file. It returns false if there is no such white
// space.
func (s *scanner) lineEnd() bool {
	sp := s.skipSpace()
	return s.eof() || strings.ContainsRune(sp.String(), '\n')
}

func (s *scanner) errorf(offset int, msg string) error {
	return &ParseError{Pos: s.src.Position(offset), Msg: msg}
}

// parseFile parses the headers and sections of the source.
func (p *parser) parseFile(src *Source) error {
	s := &scanner{src: src}
	s.skipSpace()
	for !s.eof() {
		start := s.pos
		if !s.consume("[") {
			return s.errorf(start, "expected section header")
		}
		if s.consume("include") {
			if sp := s.skipSpace(); sp.Len() > 0 {
				if err := p.parseInclude(s, start); err != nil {
					return err
				}
				continue
			}
			s.pos = start + 1
		}
		name := s.takeWhile(func(r rune) bool {
			return r != ']' && !isSpace(r)
		})
		if name.Len() == 0 {
			return s.errorf(s.pos, "section name expected")
		}
		if !s.consume("]") {
			return s.errorf(s.pos, "missing ] in section header")
		}
		if !s.lineEnd() {
			return s.errorf(s.pos,
				"section header must be followed by a line break")
		}
		sec := &RawSection{Name: name}
		for !s.eof() && s.peek() != '[' {
			rule, err := s.parseRule()
			if err != nil {
				return err
			}
			sec.Rules = append(sec.Rules, rule)
		}
		p.sections = append(p.sections, sec)
	}
	return nil
}

// parseInclude parses the rest of an include header and reads the included
// file. The scanner is positioned behind the white space following the
// include keyword.
func (p *parser) parseInclude(s *scanner, start int) error {
	if !s.consume(`"`) {
		return s.errorf(s.pos, `expected "path" in include header`)
	}
	file := s.takeWhile(func(r rune) bool { return r != '"' })
	s.consume(`"`)
	if file.Len() == 0 {
		return s.errorf(file.Start, "empty include path")
	}
	if !s.consume("]") {
		return s.errorf(s.pos, "missing ] in include header")
	}
	if !s.lineEnd() {
		return s.errorf(s.pos,
			"include header must be followed by a line break")
	}
	name := path.Join(path.Dir(s.src.Name), file.String())
	if !fs.ValidPath(name) {
		return s.errorf(file.Start, "invalid include path "+
			file.String())
	}
	if p.fsys == nil {
		return s.errorf(start, "include not supported")
	}
	pos := s.src.Position(start)
	return p.readFile(name, &pos)
}

// parseRule parses a rule. The rule ends at a line break.
func (s *scanner) parseRule() (rule []RawSegment, err error) {
loop:
	for !s.eof() {
		switch s.peek() {
		case '\r', '\n':
			break loop
		case '[':
			return nil, s.errorf(s.pos, "unexpected [ in rule")
		case '{':
			start := s.pos
			s.pos++
			name := s.takeWhile(isIdent)
			if name.Len() == 0 {
				return nil, s.errorf(s.pos,
					"section name expected after {")
			}
			if !s.consume("}") {
				return nil, s.errorf(start,
					"unterminated reference")
			}
			rule = append(rule, RawSegment{Kind: Use, Span: name})
		default:
			txt := s.takeWhile(func(r rune) bool {
				return !strings.ContainsRune("{[\r\n", r)
			})
			rule = append(rule, RawSegment{Kind: Text, Span: txt})
		}
	}
	if first := &rule[0]; first.Kind == Text {
		first.Span = first.Span.trimSpace(true, false)
	}
	if last := &rule[len(rule)-1]; last.Kind == Text {
		last.Span = last.Span.trimSpace(false, true)
	}
	segs := rule[:0]
	for _, seg := range rule {
		if seg.Kind == Use || seg.Span.Len() > 0 {
			segs = append(segs, seg)
		}
	}
	rule = segs
	s.lineEnd()
	return rule, nil
}
