// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package corpus provides payloads for testing the codec with real data.
package corpus

import (
	"io/fs"
	"math/rand"
)

// File is a file of a corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all regular files of the corpus file system.
func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of all files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

// Sample returns count pieces of the file data with lengths up to n. The
// pieces are taken at pseudo-random offsets determined by seed; a file
// shorter than n is returned completely.
func (f File) Sample(n, count int, seed int64) [][]byte {
	if len(f.Data) <= n {
		return [][]byte{f.Data}
	}
	rng := rand.New(rand.NewSource(seed))
	pieces := make([][]byte, count)
	for i := range pieces {
		k := 1 + rng.Intn(n)
		off := rng.Intn(len(f.Data) - k + 1)
		pieces[i] = f.Data[off : off+k]
	}
	return pieces
}

// CountWriter counts the bytes written to it and discards them.
type CountWriter struct {
	N int64
}

func (w *CountWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.N += int64(n)
	return n, nil
}
