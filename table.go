// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phrase

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/ulikunitz/phrase/syntax"
)

// Segment is a part of a rule. It is either literal text or the index of a
// section whose derivation is inserted at this place.
type Segment struct {
	Kind  syntax.SegmentKind
	Text  string
	Index int
}

// TextSegment returns a literal text segment.
func TextSegment(s string) Segment { return Segment{Kind: syntax.Text, Text: s} }

// UseSegment returns a segment referencing section i.
func UseSegment(i int) Segment { return Segment{Kind: syntax.Use, Index: i} }

func (s Segment) String() string {
	if s.Kind == syntax.Use {
		return fmt.Sprintf("{#%d}", s.Index)
	}
	return fmt.Sprintf("%q", s.Text)
}

// Layer is a node of the decoding automaton of a section. If Branch is nil
// the layer is certain: the input has been produced by rule Rule.
// Otherwise the next input character selects the next layer.
type Layer struct {
	Rule   int
	Branch map[rune]*Layer
}

// Certain returns a layer identifying rule i.
func Certain(i int) *Layer { return &Layer{Rule: i} }

// IsCertain reports whether the layer identifies a rule.
func (l *Layer) IsCertain() bool { return l.Branch == nil }

// keys returns the branch keys in ascending order.
func (l *Layer) keys() []rune {
	keys := make([]rune, 0, len(l.Branch))
	for r := range l.Branch {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Section is a section of a compiled grammar. The encoder uses the rules,
// the decoder the automaton.
type Section struct {
	Rules   [][]Segment
	Decoder *Layer
}

// Table is a compiled grammar. Section 0 is the entry section. A table must
// not be modified after it has been created; it can then be used by
// multiple goroutines concurrently.
type Table struct {
	Sections []Section
}

// maxIndex is the largest integer the library file format supports.
const maxIndex = 1<<30 - 1

// Validate checks the table for consistency. Encode and Decode may panic
// or never return for tables that don't pass.
//
// Tables whose derivations grow without bound on average are rejected. For
// the remaining tables the encoder terminates for payload bits; the
// periodic filler following them is not random, so termination of the last
// derivation is expected but not proven.
func (t *Table) Validate() error {
	if t == nil || len(t.Sections) == 0 {
		return errors.New("phrase: table has no sections")
	}
	if len(t.Sections) > maxIndex {
		return errors.New("phrase: too many sections")
	}
	for i, sec := range t.Sections {
		if len(sec.Rules) == 0 {
			return fmt.Errorf("phrase: section %d has no rules", i)
		}
		for k, rule := range sec.Rules {
			for _, seg := range rule {
				switch seg.Kind {
				case syntax.Text:
					if !utf8.ValidString(seg.Text) {
						return fmt.Errorf("phrase: section %d"+
							" rule %d: text is not valid"+
							" UTF-8", i, k)
					}
				case syntax.Use:
					if !(0 <= seg.Index &&
						seg.Index < len(t.Sections)) {
						return fmt.Errorf("phrase: section %d"+
							" rule %d: section index %d"+
							" out of range", i, k,
							seg.Index)
					}
				default:
					return fmt.Errorf("phrase: section %d"+
						" rule %d: invalid segment kind %d",
						i, k, seg.Kind)
				}
			}
		}
		if sec.Decoder == nil {
			return fmt.Errorf("phrase: section %d has no decoder", i)
		}
		if err := sec.Decoder.validate(len(sec.Rules)); err != nil {
			return fmt.Errorf("phrase: section %d: %w", i, err)
		}
	}
	if err := t.checkTermination(); err != nil {
		return err
	}
	if err := t.checkGrowth(); err != nil {
		return err
	}
	if !t.makesChoice() {
		return errors.New("phrase: derivations of the entry section" +
			" consume no bits")
	}
	return nil
}

// makesChoice reports whether a derivation of the entry section selects at
// least one rule out of several. Otherwise every derivation consumes zero
// bits and the encoder would never finish.
func (t *Table) makesChoice() bool {
	visited := make([]bool, len(t.Sections))
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			continue
		}
		visited[i] = true
		rules := t.Sections[i].Rules
		if len(rules) > 1 {
			return true
		}
		for _, seg := range rules[0] {
			if seg.Kind == syntax.Use {
				stack = append(stack, seg.Index)
			}
		}
	}
	return false
}

// checkTermination verifies that every section has at least one finite
// derivation. It doesn't ensure that the derivation selected by the bits is
// finite; see checkGrowth.
func (t *Table) checkTermination() error {
	done := make([]bool, len(t.Sections))
	for changed := true; changed; {
		changed = false
	sections:
		for i, sec := range t.Sections {
			if done[i] {
				continue
			}
		rules:
			for _, rule := range sec.Rules {
				for _, seg := range rule {
					if seg.Kind == syntax.Use && !done[seg.Index] {
						continue rules
					}
				}
				done[i] = true
				changed = true
				continue sections
			}
		}
	}
	for i, ok := range done {
		if !ok {
			return fmt.Errorf("phrase: section %d never terminates", i)
		}
	}
	return nil
}

// Parameters of checkGrowth.
const (
	growthIterations = 1 << 12
	growthLimit      = 1e9
)

// ruleWeights returns the probabilities with which choose selects each of
// n rules for random bits.
func ruleWeights(n int) []float64 {
	w := make([]float64, n)
	var split func(lo, hi int, p float64)
	split = func(lo, hi int, p float64) {
		if hi-lo == 1 {
			w[lo] = p
			return
		}
		mid := (lo + hi) / 2
		split(lo, mid, p/2)
		split(mid, hi, p/2)
	}
	split(0, n, 1)
	return w
}

// checkGrowth computes the expected number of sections a derivation of
// each section expands for random bits. The expectation is infinite if the
// sections reference each other once or more on average; a derivation may
// then never end and the encoder exhausts the stack.
func (t *Table) checkGrowth() error {
	type ref struct {
		index  int
		weight float64
	}
	refs := make([][]ref, len(t.Sections))
	for i, sec := range t.Sections {
		w := ruleWeights(len(sec.Rules))
		m := make(map[int]float64)
		for k, rule := range sec.Rules {
			for _, seg := range rule {
				if seg.Kind == syntax.Use {
					m[seg.Index] += w[k]
				}
			}
		}
		for j, x := range m {
			refs[i] = append(refs[i], ref{index: j, weight: x})
		}
	}
	size := make([]float64, len(t.Sections))
	next := make([]float64, len(t.Sections))
	for n := 0; n < growthIterations; n++ {
		converged := true
		for i := range next {
			x := 1.0
			for _, r := range refs[i] {
				x += r.weight * size[r.index]
			}
			if x > growthLimit {
				return fmt.Errorf("phrase: derivations of section"+
					" %d grow without bound", i)
			}
			if x-size[i] > 1e-9*x {
				converged = false
			}
			next[i] = x
		}
		size, next = next, size
		if converged {
			return nil
		}
	}
	return errors.New("phrase: derivations grow without bound")
}

// validate checks that all rule indexes are in the range [0,n).
func (l *Layer) validate(n int) error {
	if l.IsCertain() {
		if !(0 <= l.Rule && l.Rule < n) {
			return fmt.Errorf("rule index %d out of range", l.Rule)
		}
		return nil
	}
	if len(l.Branch) == 0 {
		return errors.New("empty branch")
	}
	for r, c := range l.Branch {
		if c == nil {
			return fmt.Errorf("nil layer for key %q", r)
		}
		if err := c.validate(n); err != nil {
			return err
		}
	}
	return nil
}
