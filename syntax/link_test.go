// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func link(t *testing.T, text string) (*Grammar, error) {
	t.Helper()
	raw, err := ParseString("test.txt", text)
	if err != nil {
		t.Fatalf("ParseString error %s", err)
	}
	return Link(raw, LinkConfig{})
}

// match follows the trie along s and returns the rule of the leaf that is
// reached.
func match(tr *Trie, s string) (rule int, ok bool) {
	for _, r := range s {
		if rule, ok = tr.Leaf(); ok {
			return rule, true
		}
		if tr = tr.Child(r); tr == nil {
			return 0, false
		}
	}
	return tr.Leaf()
}

func TestLinkTrie(t *testing.T) {
	g, err := link(t, `
[entry]
{greeting}, world
{greeting} there
good night

[greeting]
hello
hi
good morning
`)
	if err != nil {
		t.Fatalf("Link error %s", err)
	}
	if g.Entry.Name != "entry" {
		t.Fatalf("entry section %q; want %q", g.Entry.Name, "entry")
	}
	tests := []struct {
		text string
		rule int
	}{
		{"hello, world", 0},
		{"hi, world", 0},
		{"good morning, world", 0},
		{"hello there", 1},
		{"good morning there", 1},
		{"good night", 2},
	}
	root := g.Entry.Trie()
	for _, tc := range tests {
		rule, ok := match(root, tc.text)
		if !ok {
			t.Errorf("%q not matched", tc.text)
			continue
		}
		if rule != tc.rule {
			t.Errorf("%q matched rule %d; want %d", tc.text,
				rule, tc.rule)
		}
	}
	if keys := string(root.Keys()); keys != "gh" {
		t.Errorf("root keys %q; want %q", keys, "gh")
	}
}

func TestLinkForwardAndCycles(t *testing.T) {
	g, err := link(t, `
[entry]
({list})
empty

[list]
x{tail}

[tail]
,{list}
.
`)
	if err != nil {
		t.Fatalf("Link error %s", err)
	}
	list := g.Sections[1]
	if list.Name != "list" || list.Rules[0][1].Ref != g.Sections[2] {
		t.Fatalf("references not resolved")
	}
	tail := g.Sections[2]
	if tail.Rules[0][1].Ref != list {
		t.Fatalf("cyclic reference not resolved")
	}
}

func TestLinkDuplicateSameFile(t *testing.T) {
	g, err := link(t, "[entry]\na\nb\n[entry]\nc\nd\n")
	if err != nil {
		t.Fatalf("Link error %s", err)
	}
	if len(g.Sections) != 1 {
		t.Fatalf("got %d sections; want 1", len(g.Sections))
	}
	if s := g.Entry.Rules[0][0].Text(); s != "a" {
		t.Fatalf("first rule %q; want %q", s, "a")
	}
}

func TestLinkAmbiguous(t *testing.T) {
	tests := []struct {
		text  string
		rule  int
		other int
	}{
		{"[entry]\ncat\ncat\n", 1, 0},
		{"[entry]\ncat\ndog\ncats\n", 2, 0},
		{"[entry]\ncats\ncat\n", 1, 0},
		{"[entry]\n{a}\n{b}\n[a]\nxy\n[b]\nxy\n", 1, 0},
		{"[entry]\n{entry}x\ny\n", -1, -1},
		{"[entry]\nthe {adjs} cat\nthe {adjs} dog\n" +
			"[adjs]\nbig {adjs}\nsmall\n", 1, 0},
		{"[entry]\n<{e}>!\n<{e}>?\n[e]\n({e})\nx\n", 1, 0},
	}
	for _, tc := range tests {
		_, err := link(t, tc.text)
		var aerr *AmbiguousRuleError
		if !errors.As(err, &aerr) {
			t.Errorf("Link(%q) returned %v; want *AmbiguousRuleError",
				tc.text, err)
			continue
		}
		if aerr.Section != "entry" || aerr.Rule != tc.rule ||
			aerr.Other != tc.other {
			t.Errorf("Link(%q) returned %#v; want rule %d other %d",
				tc.text, aerr, tc.rule, tc.other)
		}
	}
}

func TestLinkCycleOfReferences(t *testing.T) {
	_, err := link(t, "[entry]\n{A}\nq\n[A]\n{B}z\n[B]\nx{A}\nxy\n")
	var aerr *AmbiguousRuleError
	if !errors.As(err, &aerr) {
		t.Fatalf("Link returned %v; want *AmbiguousRuleError", err)
	}
	if aerr.Section != "A" || aerr.Rule != -1 {
		t.Fatalf("Link returned %#v; want section A and rule -1", aerr)
	}
	if !strings.Contains(aerr.Msg, "cycle") {
		t.Fatalf("message %q doesn't mention the cycle", aerr.Msg)
	}
}

func TestLinkEmptyRule(t *testing.T) {
	raw, err := ParseString("test.txt", "[entry]\na\nb\n")
	if err != nil {
		t.Fatalf("ParseString error %s", err)
	}
	raw[0].Rules = append([][]RawSegment{nil}, raw[0].Rules...)
	_, err = Link(raw, LinkConfig{})
	var aerr *AmbiguousRuleError
	if !errors.As(err, &aerr) {
		t.Fatalf("Link returned %v; want *AmbiguousRuleError", err)
	}
	if aerr.Rule != 0 || aerr.Other != -1 {
		t.Fatalf("Link returned %#v; want rule 0 other -1", aerr)
	}
	if aerr.Pos.Line != 1 {
		t.Fatalf("error position %s; want line 1", aerr.Pos)
	}
	if s := aerr.Error(); strings.Contains(s, "rules") {
		t.Fatalf("message %q names two rules", s)
	}
}

func TestLinkErrors(t *testing.T) {
	tests := []struct {
		text string
		err  error
	}{
		{"[entry]\n[x]\ny\n", &EmptySectionError{}},
		{"[entry]\n{x}\n", &UnresolvedReferenceError{}},
		{"[main]\nx\ny\n", &MissingEntryError{}},
		{"[entry]\na{entry}\nb{entry}\n", &UnproductiveSectionError{}},
	}
	for _, tc := range tests {
		_, err := link(t, tc.text)
		if err == nil {
			t.Errorf("Link(%q) returned no error", tc.text)
			continue
		}
		ok := false
		switch tc.err.(type) {
		case *EmptySectionError:
			var e *EmptySectionError
			ok = errors.As(err, &e)
		case *UnresolvedReferenceError:
			var e *UnresolvedReferenceError
			ok = errors.As(err, &e)
		case *MissingEntryError:
			var e *MissingEntryError
			ok = errors.As(err, &e)
		case *UnproductiveSectionError:
			var e *UnproductiveSectionError
			ok = errors.As(err, &e)
		}
		if !ok {
			t.Errorf("Link(%q) returned %v; want %T", tc.text,
				err, tc.err)
		}
	}
}

func TestLinkLogger(t *testing.T) {
	raw, err := ParseString("test.txt", "[entry]\nab\nac\n")
	if err != nil {
		t.Fatalf("ParseString error %s", err)
	}
	var buf bytes.Buffer
	_, err = Link(raw, LinkConfig{Logger: log.New(&buf, "", 0)})
	if err != nil {
		t.Fatalf("Link error %s", err)
	}
	const want = "section [entry]: 2 rules, 4 trie nodes"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("log output %q doesn't contain %q", buf.String(),
			want)
	}
}
