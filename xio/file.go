// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// File writes a file under a temporary name. The temporary file is renamed
// to the target name on Close only after SetSuccess has been called;
// otherwise it is removed.
type File struct {
	f       *os.File
	name    string
	success bool
}

// tmpName returns the name of the temporary file for path.
func tmpName(path string) string { return path + ".partial" }

// CreateFile creates the temporary file for path. An existing file at path
// is only replaced if force is set.
func CreateFile(path string, perm fs.FileMode, force bool) (*File, error) {
	if path == "" {
		return nil, errors.New("xio: empty file name not supported")
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		if err != nil {
			return nil, err
		}
		if !force {
			return nil, &fs.PathError{Op: "create", Path: path,
				Err: fs.ErrExist}
		}
	}
	f, err := os.OpenFile(tmpName(path),
		os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, err
	}
	return &File{f: f, name: path}, nil
}

// Name returns the target name of the file.
func (f *File) Name() string { return f.name }

// Write writes into the temporary file.
func (f *File) Write(p []byte) (n int, err error) {
	if f.f == nil {
		return 0, fs.ErrClosed
	}
	return f.f.Write(p)
}

// SetSuccess marks the content as complete.
func (f *File) SetSuccess() { f.success = true }

// Close closes the temporary file and either renames or removes it.
func (f *File) Close() error {
	if f.f == nil {
		return fs.ErrClosed
	}
	tmp := f.f
	f.f = nil
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if !f.success {
		return os.Remove(tmp.Name())
	}
	if err := os.Rename(tmp.Name(), f.name); err != nil {
		return fmt.Errorf("xio: rename temporary file: %w", err)
	}
	return nil
}

// RemoveTmp removes the temporary file. It is intended for signal
// handlers.
func (f *File) RemoveTmp() {
	os.Remove(tmpName(f.name))
}
