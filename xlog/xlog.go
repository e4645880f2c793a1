// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package xlog provides the Logger interface used for debug output of the
grammar compiler.

The compiler reports the files it parsed and the size of the decoding
automata. Most callers don't want to see this, so Printf accepts a nil
Logger and does nothing in that case, not even the formatting.

The *log.Logger type of the standard library supports the interface.
*/
package xlog

import "fmt"

// Logger receives formatted messages. The log.Logger type supports it.
type Logger interface {
	Output(calldepth int, s string) error
}

// Printf formats the message and passes it to the logger. Nothing happens
// for a nil logger.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// prefixLogger puts a fixed prefix in front of every message.
type prefixLogger struct {
	l      Logger
	prefix string
}

func (p *prefixLogger) Output(calldepth int, s string) error {
	return p.l.Output(calldepth+1, p.prefix+s)
}

// Prefix returns a logger that prefixes all messages written to l. It
// returns nil if l is nil, so that the result stays silent.
func Prefix(l Logger, prefix string) Logger {
	if l == nil {
		return nil
	}
	return &prefixLogger{l: l, prefix: prefix}
}
