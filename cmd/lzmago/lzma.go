// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/lzmacore/lzma"
	"github.com/ulikunitz/lzmacore/xlog"
)

const lzmaSuffix = ".lzma"

// stdio is the path name for standard input and output.
const stdio = "-"

// converter compresses or decompresses a single stream.
type converter interface {
	// paths returns the final output path and the temporary path
	// written during the conversion.
	paths(path string) (out, tmp string, err error)
	convert(w io.Writer, r io.Reader, size int64, opts *options) error
}

type compressor struct{}

func (compressor) paths(path string) (out, tmp string, err error) {
	switch {
	case path == stdio:
		return stdio, stdio, nil
	case path == "":
		return "", "", errors.New("empty path")
	case strings.HasSuffix(path, lzmaSuffix):
		return "", "", fmt.Errorf("%s already has suffix %s; ignored",
			path, lzmaSuffix)
	}
	out = path + lzmaSuffix
	return out, out + ".tmp", nil
}

func (compressor) convert(w io.Writer, r io.Reader, size int64, opts *options) error {
	cfg, err := opts.encoderConfig()
	if err != nil {
		return err
	}
	var progress lzma.Progress
	if opts.verbose {
		progress = lzma.ProgressFunc(func(in, out uint64) error {
			xlog.Debugf("%d -> %d bytes", in, out)
			return nil
		})
	}
	bw := bufio.NewWriterSize(w, 1<<16)
	h, err := lzma.CompressStream(bw, r, cfg, size, progress)
	if err != nil {
		return err
	}
	xlog.Debugf("wrote %v with size %d", h.Properties, h.Size)
	return bw.Flush()
}

type decompressor struct{}

func (decompressor) paths(path string) (out, tmp string, err error) {
	if path == stdio {
		return stdio, stdio, nil
	}
	out = strings.TrimSuffix(path, lzmaSuffix)
	switch {
	case out == path:
		return "", "", fmt.Errorf("%s has no suffix %s", path,
			lzmaSuffix)
	case filepath.Base(path) == lzmaSuffix:
		return "", "", fmt.Errorf("%s has an empty base name", path)
	}
	return out, out + ".tmp", nil
}

func (decompressor) convert(w io.Writer, r io.Reader, size int64, opts *options) error {
	lr, err := lzma.NewReader(bufio.NewReaderSize(r, 1<<16))
	if err != nil {
		return err
	}
	xlog.Debugf("reading %v with size %d", lr.Properties, lr.Size)
	bw := bufio.NewWriterSize(w, 1<<16)
	n, err := io.Copy(bw, lr)
	if err != nil {
		return err
	}
	xlog.Debugf("%d bytes decompressed", n)
	return bw.Flush()
}

// removeOnSignal removes the file at tmp if the process receives a
// termination signal before stop is called.
func removeOnSignal(tmp string) (stop func()) {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, termsigs...)
	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case sig := <-sigch:
			if tmp != stdio {
				os.Remove(tmp)
			}
			xlog.Warnf("terminated by %v", sig)
			os.Exit(7)
		}
	}()
	return func() {
		signal.Stop(sigch)
		close(done)
	}
}

// openInput opens the regular file at path and returns its size. The
// standard input has the size -1.
func openInput(path string) (f *os.File, size int64, err error) {
	if path == stdio {
		return os.Stdin, -1, nil
	}
	if f, err = os.Open(path); err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if !fi.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is not a regular file", path)
	}
	return f, fi.Size(), nil
}

// createOutput creates the file at path. It must not exist unless force
// is set.
func createOutput(path string, force bool) (*os.File, error) {
	if path == stdio {
		return os.Stdout, nil
	}
	if force {
		os.Remove(path)
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
}

// convertFile runs the converter from path to tmp.
func convertFile(c converter, path, tmp string, opts *options) (err error) {
	r, size, err := openInput(path)
	if err != nil {
		return err
	}
	if r != os.Stdin {
		defer r.Close()
	}
	w, err := createOutput(tmp, opts.force)
	if err != nil {
		return err
	}
	if w != os.Stdout {
		defer func() {
			if cerr := w.Close(); err == nil {
				err = cerr
			}
		}()
	}
	return c.convert(w, r, size, opts)
}

// plainError drops the operation from path errors; users are not
// interested in the system call that failed.
func plainError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %w", pe.Path, pe.Err)
	}
	return err
}

// processFile compresses or decompresses a single file and removes the
// input file unless asked to keep it.
func processFile(path string, opts *options) (err error) {
	defer func() {
		if err != nil {
			xlog.Warn(plainError(err))
		}
	}()
	var c converter = compressor{}
	if opts.decompress {
		c = decompressor{}
	}
	out, tmp, err := c.paths(path)
	if err != nil {
		return err
	}
	if opts.stdout {
		out, tmp = stdio, stdio
	}
	if out != stdio && !opts.force {
		if _, err = os.Lstat(out); err == nil {
			return fmt.Errorf("%s exists", out)
		}
	}
	stop := removeOnSignal(tmp)
	defer stop()
	if err = convertFile(c, path, tmp, opts); err != nil {
		if tmp != stdio {
			os.Remove(tmp)
		}
		return err
	}
	if tmp != stdio {
		if err = os.Rename(tmp, out); err != nil {
			os.Remove(tmp)
			return err
		}
	}
	if !opts.keep && !opts.stdout && path != stdio {
		return os.Remove(path)
	}
	return nil
}
