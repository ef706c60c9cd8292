// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"io"
)

// Progress is called by the encoder and the stream decoder after every
// block with the number of input and output bytes processed so far. A
// non-nil error aborts the operation; the error returned by the
// operation has the code CodeProgress and wraps the callback error.
type Progress interface {
	Progress(inSize, outSize uint64) error
}

// ProgressFunc adapts a function to the Progress interface.
type ProgressFunc func(inSize, outSize uint64) error

// Progress calls f.
func (f ProgressFunc) Progress(inSize, outSize uint64) error {
	return f(inSize, outSize)
}

// streamBufSize is the size of the input and output buffers used by the
// stream functions.
const streamBufSize = 1 << 16

// CompressStream writes a classic .lzma file to w containing the
// compressed data from r. If size is negative the size is unknown and the
// end marker is written; otherwise exactly size bytes are read from r and
// the dictionary is reduced for small sizes.
func CompressStream(w io.Writer, r io.Reader, cfg EncoderConfig, size int64, progress Progress) (h Header, err error) {
	if size < 0 {
		cfg.WriteEndMark = true
	} else {
		r = io.LimitReader(r, size)
		if size < 1<<32-1 {
			rs := uint32(size)
			if rs == 0 {
				rs = 1
			}
			if cfg.ReduceSize == 0 || rs < cfg.ReduceSize {
				cfg.ReduceSize = rs
			}
		}
	}
	e, err := NewEncoder(cfg)
	if err != nil {
		return h, err
	}
	h = NewStreamHeader(e.Properties(), size)
	data, err := h.MarshalBinary()
	if err != nil {
		return h, err
	}
	if _, err = w.Write(data); err != nil {
		return h, wrapError(CodeWrite, "write header", err)
	}
	if err = e.Encode(w, r, progress); err != nil {
		return h, err
	}
	if size >= 0 && e.nowPos64 != uint64(size) {
		return h, errorf(CodeRead, "input has %d bytes; expected %d",
			e.nowPos64, size)
	}
	return h, nil
}

// DecodeStream decompresses the raw LZMA stream from r and writes the
// data to w. If outSize is negative the stream must be terminated by an
// end marker. It returns the number of bytes written.
func DecodeStream(w io.Writer, r io.Reader, props Properties, outSize int64, progress Progress) (n int64, err error) {
	h := Header{Properties: props, Size: outSize}
	if outSize < 0 {
		h.Size = -1
	}
	lr, err := NewStreamReader(r, h)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, streamBufSize)
	for {
		k, rerr := lr.Read(buf)
		if k > 0 {
			m, werr := w.Write(buf[:k])
			n += int64(m)
			if werr == nil && m != k {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return n, wrapError(CodeWrite, "write error", werr)
			}
		}
		if progress != nil {
			perr := progress.Progress(uint64(lr.compressed),
				uint64(n))
			if perr != nil {
				return n, wrapError(CodeProgress,
					"progress aborted", perr)
			}
		}
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, rerr
		}
	}
}

// limitedWriter writes into a fixed slice. Writes beyond the capacity
// are truncated and mark the writer as overflowed.
type limitedWriter struct {
	buf      []byte
	n        int
	overflow bool
}

var errOverflow = newError(CodeOutputEOF, "output buffer overflow")

func (lw *limitedWriter) Write(p []byte) (n int, err error) {
	n = copy(lw.buf[lw.n:], p)
	lw.n += n
	if n < len(p) {
		lw.overflow = true
		return n, errOverflow
	}
	return n, nil
}
