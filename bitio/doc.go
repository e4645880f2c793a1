// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitio provides the bit source and bit sink of the phrase codec.
//
// The Reader turns a payload into an unlimited stream of bits: after the
// payload it provides an end token, the complement of the last payload
// byte, followed by pseudo-random filler bytes. The Writer collects the
// bits the decoder reconstructs and its Finish method cuts the end token
// and the filler off again.
package bitio
