// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package phrase converts arbitrary bytes into natural looking text and
// back.
//
// A grammar consists of named sections. Each section lists rules, and each
// rule is a sequence of literal text and references to other sections.
// Encoding derives text from the entry section and uses the bits of the
// payload to select the rule whenever a section offers a choice. Decoding
// parses the text and recovers the bits from the rules it finds.
//
// A grammar is written in files like this:
//
//	[entry]
//	The {animal} sleeps.
//	A {animal} is hungry.
//
//	[include "animals.txt"]
//
// The grammar is compiled into a [Table] by [Compile] or [CompileFS]. Rules
// of a section must be distinguishable by their text, otherwise the
// compiler reports an error. Tables can be stored in library files using
// [WriteLibrary] and loaded by [ReadLibrary].
//
// The payload is followed by an end token, the bitwise complement of its
// last byte, and by filler bytes that never contain such a pair. Decode
// uses the last complement pair to cut the recovered bytes.
package phrase
