// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"

	"github.com/ulikunitz/phrase"
)

// deflateMessage compresses the message.
func deflateMessage(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(p); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflateMessage decompresses a message compressed by deflateMessage.
func inflateMessage(p []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(p))
	defer r.Close()
	q, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress message: %w", err)
	}
	return q, nil
}

// codecOptions are the options shared by encode and decode.
type codecOptions struct {
	help     bool
	lib      string
	compress bool
	verbose  bool
	args     []string
}

func parseCodecOptions(name string, args []string) (*codecOptions, error) {
	fs := newFlagSet(name)
	var (
		help     = fs.BoolP("help", "h", false, "")
		lib      = fs.StringP("lib", "l", "", "")
		compress = fs.BoolP("compress", "z", false, "")
		verbose  = fs.BoolP("verbose", "v", false, "")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &codecOptions{
		help:     *help,
		lib:      *lib,
		compress: *compress,
		verbose:  *verbose,
		args:     fs.Args(),
	}, nil
}

// runAll applies f to all inputs concurrently and writes the results in
// the order of the inputs, each followed by a newline.
func runAll(w io.Writer, inputs []string,
	f func(s string) ([]byte, error)) error {
	results := make([][]byte, len(inputs))
	var g errgroup.Group
	for i, s := range inputs {
		i, s := i, s
		g.Go(func() error {
			p, err := f(s)
			if err != nil {
				if len(inputs) > 1 {
					return fmt.Errorf("argument %d: %w",
						i+1, err)
				}
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, p := range results {
		bw.Write(p)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func encodeCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseCodecOptions("encode", args)
	if err != nil {
		return err
	}
	if opts.help {
		usage(stdout)
		return nil
	}
	t, err := loadTable(opts.lib, verboseLogger(opts.verbose))
	if err != nil {
		return err
	}
	inputs := opts.args
	if len(inputs) == 0 {
		p, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		inputs = []string{string(p)}
	}
	return runAll(stdout, inputs, func(s string) ([]byte, error) {
		p := []byte(s)
		if opts.compress {
			var err error
			if p, err = deflateMessage(p); err != nil {
				return nil, err
			}
		}
		return []byte(phrase.Encode(t, p)), nil
	})
}

func decodeCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseCodecOptions("decode", args)
	if err != nil {
		return err
	}
	if opts.help {
		usage(stdout)
		return nil
	}
	t, err := loadTable(opts.lib, verboseLogger(opts.verbose))
	if err != nil {
		return err
	}
	inputs := opts.args
	if len(inputs) == 0 {
		// Generated text never contains line breaks, so every line
		// is a separate text.
		s := bufio.NewScanner(stdin)
		s.Buffer(nil, 1<<24)
		for s.Scan() {
			line := strings.TrimRight(s.Text(), "\r")
			if line != "" {
				inputs = append(inputs, line)
			}
		}
		if err = s.Err(); err != nil {
			return err
		}
	}
	return runAll(stdout, inputs, func(s string) ([]byte, error) {
		p, err := phrase.Decode(t, s)
		if err != nil {
			return nil, err
		}
		if opts.compress {
			return inflateMessage(p)
		}
		return p, nil
	})
}
