// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Source is the immutable text of a grammar file. All literals and names
// parsed from the file are spans of its text.
type Source struct {
	// Name is the path of the file in the file system it was read
	// from.
	Name string
	Text string
}

// Position describes a location in a source file. Line and Col start at 1;
// Col counts runes.
type Position struct {
	File   string
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Position computes the position of the byte offset.
func (src *Source) Position(offset int) Position {
	head := src.Text[:offset]
	line := 1 + strings.Count(head, "\n")
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		head = head[i+1:]
	}
	return Position{
		File:   src.Name,
		Offset: offset,
		Line:   line,
		Col:    1 + utf8.RuneCountInString(head),
	}
}

// Span is a range of a source text. Taking the string of a span doesn't
// copy the text.
type Span struct {
	Src        *Source
	Start, End int
}

func (s Span) String() string {
	if s.Src == nil {
		return ""
	}
	return s.Src.Text[s.Start:s.End]
}

// Len returns the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Position returns the position of the start of the span.
func (s Span) Position() Position {
	return s.Src.Position(s.Start)
}

// trimSpace returns the span without leading and trailing white space as
// selected.
func (s Span) trimSpace(left, right bool) Span {
	t := s.String()
	if left {
		u := strings.TrimLeftFunc(t, isSpace)
		s.Start += len(t) - len(u)
		t = u
	}
	if right {
		s.End = s.Start + len(strings.TrimRightFunc(t, isSpace))
	}
	return s
}
