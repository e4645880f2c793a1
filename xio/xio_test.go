// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xio

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recorder struct {
	name string
	log  *[]string
	err  error
}

func (r recorder) Write(p []byte) (int, error) { return len(p), nil }

func (r recorder) Close() error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestPipeline(t *testing.T) {
	var log []string
	errB := errors.New("b failed")
	var pl Pipeline
	if _, err := pl.Write([]byte("abc")); err == nil {
		t.Fatalf("Write on empty pipeline returned no error")
	}
	if err := pl.Wrap(Buffer); err == nil {
		t.Fatalf("Wrap on empty pipeline returned no error")
	}
	pl.Push(recorder{name: "a", log: &log})
	pl.Push(recorder{name: "b", log: &log, err: errB})
	pl.Push(recorder{name: "c", log: &log})
	if pl.Len() != 3 {
		t.Fatalf("Len returned %d; want %d", pl.Len(), 3)
	}
	err := pl.Close()
	if !errors.Is(err, errB) {
		t.Fatalf("Close returned %v; want %v", err, errB)
	}
	if !strings.Contains(err.Error(), "layer 1") {
		t.Errorf("Close error %q doesn't name layer 1", err)
	}
	if got := strings.Join(log, ""); got != "cba" {
		t.Fatalf("close order %q; want %q", got, "cba")
	}
	if pl.Top() != nil {
		t.Fatalf("pipeline not empty after Close")
	}
}

func TestPipelineBuffer(t *testing.T) {
	var buf bytes.Buffer
	var pl Pipeline
	pl.Push(NopCloser(&buf))
	if err := pl.Wrap(Buffer); err != nil {
		t.Fatalf("Wrap error %s", err)
	}
	if _, err := io.WriteString(&pl, "hello"); err != nil {
		t.Fatalf("WriteString error %s", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("data written before Flush")
	}
	if err := pl.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	if buf.String() != "hello" {
		t.Fatalf("got %q; want %q", buf.String(), "hello")
	}
	io.WriteString(&pl, ", world")
	if err := pl.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if buf.String() != "hello, world" {
		t.Fatalf("got %q; want %q", buf.String(), "hello, world")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.lib")

	f, err := CreateFile(path, 0o644, false)
	if err != nil {
		t.Fatalf("CreateFile error %s", err)
	}
	if _, err = f.Write([]byte("discarded")); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = f.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if _, err = os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("file exists without SetSuccess")
	}

	if f, err = CreateFile(path, 0o644, false); err != nil {
		t.Fatalf("CreateFile error %s", err)
	}
	f.Write([]byte("kept"))
	f.SetSuccess()
	if err = f.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error %s", err)
	}
	if string(data) != "kept" {
		t.Fatalf("file contains %q; want %q", data, "kept")
	}
	if _, err = os.Stat(tmpName(path)); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("temporary file left behind")
	}

	if _, err = CreateFile(path, 0o644, false); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("CreateFile returned %v; want %v", err, fs.ErrExist)
	}
	if f, err = CreateFile(path, 0o644, true); err != nil {
		t.Fatalf("CreateFile with force error %s", err)
	}
	f.Close()
}
