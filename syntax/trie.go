// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// Limits for the construction of a decoding automaton. Rules that share a
// prefix running through a recursive section would require an infinite
// automaton; the limits turn that case into an AmbiguousRuleError.
const (
	// maxLookahead is the maximum depth of a trie.
	maxLookahead = 512
	// maxNodes is the maximum number of nodes created for a section.
	maxNodes = 1 << 16
)

// Trie is a node of the decoding automaton of a section. A branch maps the
// next character of the input to a child node. A leaf identifies the rule
// that produced the input read so far; it keeps the segments of the rule
// that haven't been matched yet, so that it can be expanded if another
// rule shares the prefix.
type Trie struct {
	branch map[rune]*Trie
	rule   int
	rest   *stack
	depth  int
}

// pending is a segment of a rule that hasn't been matched by the trie yet.
// It is either literal text, a section whose trie must be entered at the
// root or a node of the trie of another section.
type pending struct {
	text string
	sec  *Section
	node *Trie
}

func (p pending) isText() bool { return p.sec == nil && p.node == nil }

// stack is an immutable list of pending segments. Leaves share the tails
// of their stacks.
type stack struct {
	p    pending
	next *stack
}

func (s *stack) push(p pending) *stack { return &stack{p: p, next: s} }

// prepend puts the segments of s on top of bottom keeping their order.
func (s *stack) prepend(bottom *stack) *stack {
	var a []pending
	for ; s != nil; s = s.next {
		a = append(a, s.p)
	}
	for i := len(a) - 1; i >= 0; i-- {
		bottom = bottom.push(a[i])
	}
	return bottom
}

// Leaf returns the rule index, if the node is a leaf.
func (t *Trie) Leaf() (rule int, ok bool) {
	if t.branch != nil {
		return 0, false
	}
	return t.rule, true
}

// Keys returns the keys of a branch in ascending order.
func (t *Trie) Keys() []rune {
	keys := make([]rune, 0, len(t.branch))
	for r := range t.branch {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Child returns the child for the character r or nil.
func (t *Trie) Child(r rune) *Trie { return t.branch[r] }

// count returns the number of nodes of the trie.
func (t *Trie) count() int {
	n := 1
	for _, c := range t.branch {
		n += c.count()
	}
	return n
}

// minRule returns the smallest rule index of all leaves below t.
func (t *Trie) minRule() int {
	if t.branch == nil {
		return t.rule
	}
	m := -1
	for _, c := range t.branch {
		if k := c.minRule(); m < 0 || k < m {
			m = k
		}
	}
	return m
}

// conflictError describes a rule that cannot be distinguished from rule
// other. It is converted into an AmbiguousRuleError by buildTrie.
type conflictError struct {
	other int
	msg   string
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("conflict with rule %d: %s", e.other, e.msg)
}

// root returns the trie of the section. It is built on first use.
func (s *Section) root() (*Trie, error) {
	if s.trie != nil {
		return s.trie, nil
	}
	if s.building {
		return nil, &AmbiguousRuleError{
			Section: s.Name,
			Pos:     s.Pos,
			Rule:    -1,
			Other:   -1,
			Msg:     "automaton depends on itself through a cycle of references",
		}
	}
	return s.buildTrie()
}

// buildTrie inserts all rules of the section into a new trie. Rules are
// inserted in index order.
func (s *Section) buildTrie() (*Trie, error) {
	if s.trie != nil {
		return s.trie, nil
	}
	s.building = true
	defer func() { s.building = false }()
	b := new(builder)
	t := &Trie{branch: make(map[rune]*Trie)}
	for i, rule := range s.Rules {
		var buf *stack
		for k := len(rule) - 1; k >= 0; k-- {
			seg := rule[k]
			if seg.Kind == Use {
				buf = buf.push(pending{sec: seg.Ref})
			} else {
				buf = buf.push(pending{text: seg.Text()})
			}
		}
		if err := b.insert(t, buf, i); err != nil {
			var c *conflictError
			if !errors.As(err, &c) {
				return nil, err
			}
			pos := s.Pos
			if len(rule) > 0 && rule[0].Span.Src != nil {
				pos = rule[0].Span.Position()
			}
			return nil, &AmbiguousRuleError{
				Section: s.Name,
				Pos:     pos,
				Rule:    i,
				Other:   c.other,
				Msg:     c.msg,
			}
		}
	}
	s.trie = t
	return t, nil
}

// resolve returns the trie node a pending reference stands for.
func (p pending) resolve() (*Trie, error) {
	if p.node != nil {
		return p.node, nil
	}
	return p.sec.root()
}

// builder creates the nodes of a single trie and enforces the limits.
type builder struct {
	nodes int
}

// child creates a leaf below parent.
func (b *builder) child(parent *Trie, rule int, rest *stack) (*Trie, error) {
	if parent.depth >= maxLookahead {
		return nil, &conflictError{other: parent.minRule(),
			msg: fmt.Sprintf("rules cannot be told apart within"+
				" %d characters", maxLookahead)}
	}
	if b.nodes >= maxNodes {
		return nil, &conflictError{other: -1,
			msg: fmt.Sprintf("automaton exceeds %d nodes", maxNodes)}
	}
	b.nodes++
	return &Trie{rule: rule, rest: rest, depth: parent.depth + 1}, nil
}

// insert adds the rule given as stack of pending segments to the trie t.
func (b *builder) insert(t *Trie, buf *stack, rule int) error {
	for buf != nil {
		p := buf.p
		buf = buf.next
		if p.isText() {
			s := p.text
			for len(s) > 0 {
				r, n := utf8.DecodeRuneInString(s)
				s = s[n:]
				if err := b.expand(t); err != nil {
					return err
				}
				c, ok := t.branch[r]
				if !ok {
					rest := buf
					if len(s) > 0 {
						rest = rest.push(pending{text: s})
					}
					c, err := b.child(t, rule, rest)
					if err != nil {
						return err
					}
					t.branch[r] = c
					return nil
				}
				t = c
			}
			continue
		}
		u, err := p.resolve()
		if err != nil {
			return err
		}
		if u.branch == nil {
			buf = u.rest.prepend(buf)
			continue
		}
		if err = b.expand(t); err != nil {
			return err
		}
		for _, r := range u.Keys() {
			cont := buf.push(pending{node: u.branch[r]})
			c, ok := t.branch[r]
			if !ok {
				if c, err = b.child(t, rule, cont); err != nil {
					return err
				}
				t.branch[r] = c
				continue
			}
			if err = b.insert(c, cont, rule); err != nil {
				return err
			}
		}
		return nil
	}
	if t.branch != nil && len(t.branch) == 0 {
		return &conflictError{other: -1, msg: "rule derives no text"}
	}
	return &conflictError{other: t.minRule(),
		msg: "rule is contained by another rule"}
}

// expand converts the leaf t into a branch by matching the first character
// of its pending segments. Nothing happens for a branch.
func (b *builder) expand(t *Trie) error {
	if t.branch != nil {
		return nil
	}
	rest := t.rest
	for {
		if rest == nil {
			return &conflictError{other: t.rule,
				msg: "rule contains another rule"}
		}
		p := rest.p
		rest = rest.next
		if p.isText() {
			if p.text == "" {
				continue
			}
			r, n := utf8.DecodeRuneInString(p.text)
			cont := rest
			if n < len(p.text) {
				cont = cont.push(pending{text: p.text[n:]})
			}
			c, err := b.child(t, t.rule, cont)
			if err != nil {
				return err
			}
			t.branch = map[rune]*Trie{r: c}
			break
		}
		u, err := p.resolve()
		if err != nil {
			return err
		}
		if u.branch == nil {
			rest = u.rest.prepend(rest)
			continue
		}
		branch := make(map[rune]*Trie, len(u.branch))
		for r, uc := range u.branch {
			c, err := b.child(t, t.rule, rest.push(pending{node: uc}))
			if err != nil {
				return err
			}
			branch[r] = c
		}
		t.branch = branch
		break
	}
	t.rest = nil
	return nil
}
