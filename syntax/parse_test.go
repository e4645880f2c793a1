// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

// rawString describes a raw section as strings. References are written as
// {name}.
func rawStrings(secs []*RawSection) map[string][][]string {
	m := make(map[string][][]string)
	for _, s := range secs {
		var rules [][]string
		for _, rule := range s.Rules {
			var segs []string
			for _, seg := range rule {
				if seg.Kind == Use {
					segs = append(segs, "{"+seg.Span.String()+"}")
				} else {
					segs = append(segs, seg.Span.String())
				}
			}
			rules = append(rules, segs)
		}
		m[s.Name.String()] = rules
	}
	return m
}

func TestParseString(t *testing.T) {
	const text = `# greeting grammar
[entry]
  Hello {name}, how are you?   
{name} says "hi # not a comment"  # comment

[name]
Alice
Bob`
	secs, err := ParseString("entry.txt", text)
	if err != nil {
		t.Fatalf("ParseString error %s", err)
	}
	got := rawStrings(secs)
	want := map[string][][]string{
		"entry": {
			{"Hello ", "{name}", ", how are you?"},
			{"{name}", ` says "hi # not a comment"`},
		},
		"name": {{"Alice"}, {"Bob"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseString mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text string
		line int
		col  int
	}{
		{"entry\n", 1, 1},
		{"[entry", 1, 7},
		{"[]\nx\n", 1, 2},
		{"[entry] x\n", 1, 9},
		{"[entry]\nab{c\n", 2, 3},
		{"[entry]\nab{}\n", 2, 4},
		{"[entry]\na [b\n", 2, 3},
		{"[entry]\nsay \"hi\n", 2, 5},
		{"[include \"x.txt\"]\n", 1, 1},
		{"[include x.txt]\n", 1, 10},
	}
	for _, tc := range tests {
		_, err := ParseString("test.txt", tc.text)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseString(%q) returned %v; want *ParseError",
				tc.text, err)
			continue
		}
		if perr.Pos.Line != tc.line || perr.Pos.Col != tc.col {
			t.Errorf("ParseString(%q) error at %d:%d; want %d:%d",
				tc.text, perr.Pos.Line, perr.Pos.Col,
				tc.line, tc.col)
		}
	}
}

func TestParseIncludes(t *testing.T) {
	fsys := fstest.MapFS{
		"g/entry.txt": {Data: []byte(
			"[entry]\n{a} {b}\n[include \"sub/a.txt\"]\n")},
		"g/sub/a.txt": {Data: []byte(
			"[a]\nx\n[include \"../b.txt\"]\n")},
		"g/b.txt": {Data: []byte("[b]\ny\n")},
	}
	secs, err := Parse(fsys, "g/entry.txt", nil)
	if err != nil {
		t.Fatalf("Parse error %s", err)
	}
	var names, files []string
	for _, s := range secs {
		names = append(names, s.Name.String())
		files = append(files, s.File())
	}
	if diff := cmp.Diff([]string{"entry", "a", "b"}, names); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}
	wantFiles := []string{"g/entry.txt", "g/sub/a.txt", "g/b.txt"}
	if diff := cmp.Diff(wantFiles, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUTF16(t *testing.T) {
	// UTF-16LE with byte order mark: "[e]\nä\n"
	data := []byte{0xff, 0xfe,
		'[', 0, 'e', 0, ']', 0, '\n', 0, 0xe4, 0, '\n', 0}
	fsys := fstest.MapFS{"entry.txt": {Data: data}}
	secs, err := Parse(fsys, "entry.txt", nil)
	if err != nil {
		t.Fatalf("Parse error %s", err)
	}
	got := rawStrings(secs)
	want := map[string][][]string{"e": {{"ä"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIncludeErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"entry.txt": {Data: []byte("[include \"a.txt\"]\n")},
		"a.txt":     {Data: []byte("[include \"entry.txt\"]\n")},
		"up.txt":    {Data: []byte("[include \"../x.txt\"]\n")},
	}
	for _, entry := range []string{"entry.txt", "up.txt", "none.txt"} {
		_, err := Parse(fsys, entry, nil)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) returned %v; want *ParseError",
				entry, err)
		}
	}
}

func TestPosition(t *testing.T) {
	src := &Source{Name: "f.txt", Text: "ab\nüx\n"}
	pos := src.Position(5)
	want := Position{File: "f.txt", Offset: 5, Line: 2, Col: 2}
	if pos != want {
		t.Fatalf("Position(5) returned %+v; want %+v", pos, want)
	}
	if s := pos.String(); s != "f.txt:2:2" {
		t.Fatalf("String returned %q; want %q", s, "f.txt:2:2")
	}
}
