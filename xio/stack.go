// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xio provides the writers the phrase command uses to produce
// output files. A [Pipeline] chains a file and the buffers in front of it
// into a single [io.WriteCloser].
package xio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// errNoLayer is returned for operations requiring a layer on an empty
// pipeline.
var errNoLayer = errors.New("xio: pipeline has no layers")

// Pipeline is a chain of layers. Every layer writes into the layer pushed
// before it; data written to the pipeline enters the layer pushed last.
type Pipeline struct {
	layers []io.WriteCloser
}

// Len returns the number of layers.
func (pl *Pipeline) Len() int { return len(pl.layers) }

// Top returns the layer pushed last or nil.
func (pl *Pipeline) Top() io.WriteCloser {
	if len(pl.layers) == 0 {
		return nil
	}
	return pl.layers[len(pl.layers)-1]
}

// Push adds wc as the new entry layer. The caller is responsible that wc
// writes into the former entry layer.
func (pl *Pipeline) Push(wc io.WriteCloser) {
	if wc == nil {
		panic("xio: nil layer")
	}
	pl.layers = append(pl.layers, wc)
}

// Wrap creates a layer writing into the current entry layer and pushes it.
func (pl *Pipeline) Wrap(newLayer func(w io.Writer) (io.WriteCloser, error)) error {
	top := pl.Top()
	if top == nil {
		return errNoLayer
	}
	wc, err := newLayer(top)
	if err != nil {
		return err
	}
	pl.Push(wc)
	return nil
}

// Write passes p to the entry layer.
func (pl *Pipeline) Write(p []byte) (n int, err error) {
	top := pl.Top()
	if top == nil {
		return 0, errNoLayer
	}
	return top.Write(p)
}

// flusher is implemented by layers buffering data.
type flusher interface {
	Flush() error
}

// Flush moves buffered data down the pipeline without closing any layer.
func (pl *Pipeline) Flush() error {
	for i := len(pl.layers) - 1; i >= 0; i-- {
		f, ok := pl.layers[i].(flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil {
			return fmt.Errorf("xio: flush of layer %d: %w", i, err)
		}
	}
	return nil
}

// Close closes the layers, starting with the entry layer, and empties the
// pipeline. A failing layer doesn't prevent the layers below it from being
// closed; all errors are reported.
func (pl *Pipeline) Close() error {
	var errs []error
	for i := len(pl.layers) - 1; i >= 0; i-- {
		if err := pl.layers[i].Close(); err != nil {
			errs = append(errs,
				fmt.Errorf("xio: close of layer %d: %w", i, err))
		}
	}
	pl.layers = nil
	return errors.Join(errs...)
}

// BufferedWriter buffers the writes to an underlying writer. Close flushes
// the buffer but doesn't close the underlying writer.
type BufferedWriter struct {
	*bufio.Writer
}

// NewBufferedWriter creates a buffered writer for w.
func NewBufferedWriter(w io.Writer) BufferedWriter {
	return BufferedWriter{bufio.NewWriter(w)}
}

// Close flushes the buffer.
func (b BufferedWriter) Close() error { return b.Flush() }

// Buffer is a layer constructor for [Pipeline.Wrap] creating a
// BufferedWriter.
func Buffer(w io.Writer) (io.WriteCloser, error) {
	return NewBufferedWriter(w), nil
}

// NopCloser returns a WriteCloser with a Close method that does nothing.
func NopCloser(w io.Writer) io.WriteCloser { return nopCloser{w} }

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
