// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import (
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/ulikunitz/phrase/syntax"
	"github.com/ulikunitz/phrase/xlog"
)

// CompileConfig provides the parameters for compiling a grammar.
type CompileConfig struct {
	// Entry is the path of the grammar file parsing starts with. The
	// default is entry.txt.
	Entry string
	// Section is the name of the entry section. The default is entry.
	Section string
	// Logger receives debug output. It may be nil.
	Logger xlog.Logger
}

// ApplyDefaults sets the defaults for zero values.
func (c *CompileConfig) ApplyDefaults() {
	if c.Entry == "" {
		c.Entry = "entry.txt"
	}
	if c.Section == "" {
		c.Section = "entry"
	}
}

// Verify checks the configuration for errors. Zero values are replaced by
// their defaults.
func (c *CompileConfig) Verify() error {
	if c == nil {
		return errors.New("phrase: compile configuration is nil")
	}
	c.ApplyDefaults()
	if !fs.ValidPath(c.Entry) {
		return errors.New("phrase: invalid entry path " + c.Entry)
	}
	return nil
}

// Compile compiles the grammar in directory dir starting with the file
// entry.txt.
func Compile(dir string) (*Table, error) {
	return CompileFS(os.DirFS(dir), CompileConfig{})
}

// CompileFS compiles the grammar stored in fsys. Errors of the grammar are
// reported using the error types of the syntax package.
func CompileFS(fsys fs.FS, cfg CompileConfig) (*Table, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	raw, err := syntax.Parse(fsys, cfg.Entry, cfg.Logger)
	if err != nil {
		return nil, err
	}
	g, err := syntax.Link(raw, syntax.LinkConfig{
		Entry:  cfg.Section,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	t := Flatten(g)
	if err = t.Validate(); err != nil {
		return nil, err
	}
	xlog.Printf(cfg.Logger, "%s: %d sections reachable from [%s]",
		path.Base(cfg.Entry), len(t.Sections), cfg.Section)
	return t, nil
}

// flattener assigns indexes to the sections reachable from the entry.
type flattener struct {
	index map[*syntax.Section]int
	t     *Table
}

// Flatten converts the linked grammar into a table. Sections are numbered
// in depth-first order starting with the entry section, which gets index
// 0. Sections that cannot be reached from the entry are not part of the
// table.
func Flatten(g *syntax.Grammar) *Table {
	f := &flattener{
		index: make(map[*syntax.Section]int),
		t:     new(Table),
	}
	f.section(g.Entry)
	return f.t
}

// section returns the index of sec and adds it to the table if required.
func (f *flattener) section(sec *syntax.Section) int {
	if i, ok := f.index[sec]; ok {
		return i
	}
	i := len(f.t.Sections)
	f.index[sec] = i
	f.t.Sections = append(f.t.Sections, Section{
		Rules:   make([][]Segment, len(sec.Rules)),
		Decoder: layer(sec.Trie()),
	})
	for k, rule := range sec.Rules {
		segs := make([]Segment, len(rule))
		for j, seg := range rule {
			if seg.Kind == syntax.Use {
				segs[j] = UseSegment(f.section(seg.Ref))
			} else {
				segs[j] = TextSegment(seg.Text())
			}
		}
		// f.t.Sections may have been reallocated by the recursion.
		f.t.Sections[i].Rules[k] = segs
	}
	return i
}

// layer converts the trie of a section into its automaton.
func layer(t *syntax.Trie) *Layer {
	if rule, ok := t.Leaf(); ok {
		return Certain(rule)
	}
	keys := t.Keys()
	l := &Layer{Branch: make(map[rune]*Layer, len(keys))}
	for _, r := range keys {
		l.Branch[r] = layer(t.Child(r))
	}
	return l
}
