// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"errors"

	"github.com/ulikunitz/phrase/xlog"
)

// Segment is a part of a linked rule: either literal text or a reference
// to another section.
type Segment struct {
	Kind SegmentKind
	// Span contains the literal text or, for Use segments, the name of
	// the referenced section.
	Span Span
	// Ref is the referenced section for Use segments.
	Ref *Section
}

// Text returns the literal text of the segment.
func (s Segment) Text() string { return s.Span.String() }

// Section is a linked grammar section. Sections reference each other and
// may form cycles.
type Section struct {
	Name  string
	Pos   Position
	Rules [][]Segment

	trie     *Trie
	building bool
}

// File returns the name of the file the section has been defined in.
func (s *Section) File() string { return s.Pos.File }

// Trie returns the decoding automaton of the section. It is nil until the
// grammar has been linked successfully.
func (s *Section) Trie() *Trie { return s.trie }

// Grammar is the result of linking.
type Grammar struct {
	// Entry is the section each derivation starts with.
	Entry *Section
	// Sections lists all sections in the order of their definition.
	Sections []*Section
}

// LinkConfig provides the parameters for linking.
type LinkConfig struct {
	// Entry is the name of the entry section (default: entry).
	Entry string
	// Logger receives debug output. It may be nil.
	Logger xlog.Logger
}

// ApplyDefaults sets the defaults for zero values.
func (c *LinkConfig) ApplyDefaults() {
	if c.Entry == "" {
		c.Entry = "entry"
	}
}

// Verify checks the configuration. Zero values are replaced by their
// defaults.
func (c *LinkConfig) Verify() error {
	if c == nil {
		return errors.New("syntax: link configuration is nil")
	}
	c.ApplyDefaults()
	return nil
}

// Link resolves the references of the raw sections and builds the decoding
// automaton of every section. A section name defined again in the file
// that defined it first is ignored; this allows a file to be included more
// than once.
func Link(raw []*RawSection, cfg LinkConfig) (g *Grammar, err error) {
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	g = new(Grammar)
	table := make(map[string]*Section, len(raw))
	var defs []*RawSection
	for _, r := range raw {
		name := r.Name.String()
		if len(r.Rules) == 0 {
			return nil, &EmptySectionError{Name: name,
				Pos: r.Name.Position()}
		}
		if old, ok := table[name]; ok {
			if old.File() != r.File() {
				return nil, &DuplicateSectionError{
					Name: name,
					Pos:  r.Name.Position(),
					Prev: old.Pos,
				}
			}
			continue
		}
		sec := &Section{Name: name, Pos: r.Name.Position()}
		table[name] = sec
		g.Sections = append(g.Sections, sec)
		defs = append(defs, r)
	}

	for i, r := range defs {
		sec := g.Sections[i]
		sec.Rules = make([][]Segment, len(r.Rules))
		for k, rule := range r.Rules {
			segs := make([]Segment, len(rule))
			for j, rs := range rule {
				segs[j] = Segment{Kind: rs.Kind, Span: rs.Span}
				if rs.Kind != Use {
					continue
				}
				ref, ok := table[rs.Span.String()]
				if !ok {
					return nil, &UnresolvedReferenceError{
						Name:    rs.Span.String(),
						Section: sec.Name,
						Pos:     rs.Span.Position(),
					}
				}
				segs[j].Ref = ref
			}
			sec.Rules[k] = segs
		}
	}

	if err = checkTermination(g.Sections); err != nil {
		return nil, err
	}

	var ok bool
	if g.Entry, ok = table[cfg.Entry]; !ok {
		return nil, &MissingEntryError{Name: cfg.Entry}
	}

	for _, sec := range g.Sections {
		t, err := sec.buildTrie()
		if err != nil {
			return nil, err
		}
		xlog.Printf(cfg.Logger, "section [%s]: %d rules, %d trie nodes",
			sec.Name, len(sec.Rules), t.count())
	}
	return g, nil
}

// checkTermination verifies that every section has a derivation of finite
// length.
func checkTermination(sections []*Section) error {
	done := make(map[*Section]bool, len(sections))
	for changed := true; changed; {
		changed = false
		for _, sec := range sections {
			if done[sec] {
				continue
			}
		rules:
			for _, rule := range sec.Rules {
				for _, seg := range rule {
					if seg.Kind == Use && !done[seg.Ref] {
						continue rules
					}
				}
				done[sec] = true
				changed = true
				break
			}
		}
	}
	for _, sec := range sections {
		if !done[sec] {
			return &UnproductiveSectionError{Name: sec.Name,
				Pos: sec.Pos}
		}
	}
	return nil
}
