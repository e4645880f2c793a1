// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// ParseError reports malformed grammar text or a file that couldn't be
// read.
type ParseError struct {
	Pos Position
	Msg string
	// Err is the underlying I/O or decoding error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("syntax: %s: %s: %v", e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("syntax: %s: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptySectionError reports a section without rules.
type EmptySectionError struct {
	Name string
	Pos  Position
}

func (e *EmptySectionError) Error() string {
	return fmt.Sprintf("syntax: %s: section [%s] is empty;"+
		" it must contain at least one rule", e.Pos, e.Name)
}

// DuplicateSectionError reports a section name that is defined in two
// different files.
type DuplicateSectionError struct {
	Name string
	Pos  Position
	// Prev is the position of the first definition.
	Prev Position
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("syntax: %s: cannot redefine section [%s];"+
		" it has already been defined at %s", e.Pos, e.Name, e.Prev)
}

// UnresolvedReferenceError reports a reference to a section that is not
// defined.
type UnresolvedReferenceError struct {
	// Name is the name of the referenced section.
	Name string
	// Section is the name of the section containing the reference.
	Section string
	Pos     Position
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("syntax: %s: section {%s} is not defined,"+
		" but referenced by section [%s]", e.Pos, e.Name, e.Section)
}

// MissingEntryError reports that the grammar doesn't define the entry
// section.
type MissingEntryError struct {
	Name string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("syntax: a section named [%s] must be defined",
		e.Name)
}

// UnproductiveSectionError reports a section whose rules all reference
// sections that never finish a derivation. Encoding would recurse forever.
type UnproductiveSectionError struct {
	Name string
	Pos  Position
}

func (e *UnproductiveSectionError) Error() string {
	return fmt.Sprintf("syntax: %s: section [%s] never terminates;"+
		" every rule references a section that never terminates",
		e.Pos, e.Name)
}

// AmbiguousRuleError reports a section whose decoding automaton cannot be
// built, because a rule cannot be distinguished from another rule by
// lookahead.
type AmbiguousRuleError struct {
	Section string
	Pos     Position
	// Rule is the index of the rule being inserted or -1 if the
	// section as a whole is at fault.
	Rule int
	// Other is the index of the conflicting rule or -1 if unknown.
	Other int
	Msg   string
}

func (e *AmbiguousRuleError) Error() string {
	switch {
	case e.Rule < 0:
		return fmt.Sprintf("syntax: %s: section [%s]: decoding"+
			" automaton build failed: %s", e.Pos, e.Section, e.Msg)
	case e.Other >= 0:
		return fmt.Sprintf("syntax: %s: section [%s]: decoding"+
			" automaton build failed for rules %d and %d: %s",
			e.Pos, e.Section, e.Rule, e.Other, e.Msg)
	}
	return fmt.Sprintf("syntax: %s: section [%s]: decoding automaton"+
		" build failed for rule %d: %s",
		e.Pos, e.Section, e.Rule, e.Msg)
}
