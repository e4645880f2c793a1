// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"log"
	"os"

	"github.com/ogier/pflag"

	"github.com/ulikunitz/phrase"
	"github.com/ulikunitz/phrase/xlog"
)

// newFlagSet creates the flag set for a command.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("phrase "+name, pflag.ContinueOnError)
	fs.SetInterspersed(true)
	fs.Usage = func() { usage(os.Stderr) }
	return fs
}

// verboseLogger returns the logger for compiler output or nil.
func verboseLogger(verbose bool) xlog.Logger {
	if !verbose {
		return nil
	}
	return log.New(os.Stderr, log.Prefix(), log.Flags())
}

// loadTable reads the library at path. Directories are compiled.
func loadTable(path string, logger xlog.Logger) (*phrase.Table, error) {
	if path == "" {
		return nil, errors.New("option --lib is required")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return phrase.CompileFS(os.DirFS(path), phrase.CompileConfig{
			Logger: xlog.Prefix(logger, path+": "),
		})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return phrase.ReadLibrary(bufio.NewReader(f))
}
