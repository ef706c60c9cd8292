// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package tuning provides the corpus helpers used to tune the encoder
// presets.
package tuning

import (
	"bytes"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/ulikunitz/lzmacore/lzma"
	"github.com/ulikunitz/zdata"
)

// File is a single file of a corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all regular files of the corpus.
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

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.n += int64(n)
	return n, nil
}

// Compress compresses every file as a .lzma stream and returns the total
// compressed size.
func Compress(files []File, cfg lzma.EncoderConfig) (compressedSize int64, err error) {
	for _, f := range files {
		cw := &countWriter{}
		_, err = lzma.CompressStream(cw, bytes.NewReader(f.Data), cfg,
			int64(len(f.Data)), nil)
		compressedSize += cw.n
		if err != nil {
			return compressedSize, err
		}
	}
	return compressedSize, nil
}

var (
	silesiaFiles []File
	silesiaOnce  sync.Once
)

// Silesia returns the files of the Silesia corpus.
func Silesia() []File {
	silesiaOnce.Do(func() {
		var err error
		silesiaFiles, err = Files(zdata.Silesia)
		if err != nil {
			panic(fmt.Errorf("tuning.Silesia() error %w", err))
		}
	})
	return silesiaFiles
}

// Benchmark returns a benchmark function compressing the Silesia corpus
// with the given configuration. The compression ratio is reported as
// metric c/u.
func Benchmark(cfg lzma.EncoderConfig) func(b *testing.B) {
	return func(b *testing.B) {
		files := Silesia()
		size := Size(files)
		b.SetBytes(size)
		var (
			err            error
			compressedSize int64
		)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			compressedSize, err = Compress(files, cfg)
			if err != nil {
				b.Fatalf("Compress error %s", err)
			}
		}
		b.StopTimer()
		r := float64(compressedSize) / float64(size)
		b.ReportMetric(r, "c/u")
	}
}
