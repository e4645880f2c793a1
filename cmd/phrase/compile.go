// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ulikunitz/phrase"
	"github.com/ulikunitz/phrase/xio"
	"github.com/ulikunitz/phrase/xlog"
)

// signalHandler removes the temporary library file if the program is
// interrupted. The returned channel must be closed to stop the handler.
func signalHandler(f *xio.File) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
		case <-sigch:
			f.RemoveTmp()
			os.Exit(7)
		}
	}()
	return quit
}

// writeLibrary writes the table into a new file at path.
func writeLibrary(path string, force bool, t *phrase.Table,
	cfg phrase.LibraryConfig) error {
	f, err := xio.CreateFile(path, 0o644, force)
	if err != nil {
		return err
	}
	quit := signalHandler(f)
	defer close(quit)

	var w xio.Pipeline
	w.Push(f)
	if err = w.Wrap(xio.Buffer); err == nil {
		err = phrase.WriteLibraryConfig(&w, t, cfg)
	}
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		f.SetSuccess()
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func compileCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("compile")
	var (
		help    = fs.BoolP("help", "h", false, "")
		force   = fs.BoolP("force", "f", false, "")
		out     = fs.StringP("out", "o", "", "")
		verbose = fs.BoolP("verbose", "v", false, "")
		useXZ   = fs.Bool("xz", false, "")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *help {
		usage(stdout)
		return nil
	}
	if fs.NArg() != 1 {
		return errors.New("compile requires a single grammar directory")
	}
	if *out == "" {
		return errors.New("compile requires option --out")
	}
	logger := verboseLogger(*verbose)
	dir := fs.Arg(0)
	t, err := phrase.CompileFS(os.DirFS(dir), phrase.CompileConfig{
		Logger: xlog.Prefix(logger, dir+": "),
	})
	if err != nil {
		return err
	}
	cfg := phrase.LibraryConfig{Format: phrase.FormatDeflate}
	if *useXZ {
		cfg.Format = phrase.FormatXZ
	}
	if err = writeLibrary(*out, *force, t, cfg); err != nil {
		return fmt.Errorf("%s: %w", *out, err)
	}
	xlog.Printf(logger, "%s: %d sections written in %v format", *out,
		len(t.Sections), cfg.Format)
	return nil
}
