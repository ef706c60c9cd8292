// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"io"
)

// Reader supports the decoding of data in the classic LZMA format.
type Reader struct {
	Header

	r   io.Reader
	d   *Decoder
	buf []byte
	in  []byte
	eof bool
	err error

	// number of bytes decoded and consumed
	n          int64
	compressed int64
}

// NewReader reads the header of a classic .lzma file from r and returns
// a reader for the decompressed data.
func NewReader(r io.Reader) (lr *Reader, err error) {
	data := make([]byte, HeaderLen)
	if _, err = io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, wrapError(CodeInputEOF, "header truncated",
				err)
		}
		return nil, wrapError(CodeRead, "read header", err)
	}
	var h Header
	if err = h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return NewStreamReader(r, h)
}

// NewStreamReader returns a reader for a raw LZMA stream described by
// the header. The header itself is not read from r.
func NewStreamReader(r io.Reader, h Header) (lr *Reader, err error) {
	d, err := NewDecoder(h.Properties, 0)
	if err != nil {
		return nil, err
	}
	h.Properties = d.Properties()
	lr = &Reader{
		Header: h,
		r:      r,
		d:      d,
		buf:    make([]byte, streamBufSize),
	}
	return lr, nil
}

// fill reads new input into the buffer.
func (lr *Reader) fill() error {
	for i := 0; i < maxEmptyReads; i++ {
		k, err := lr.r.Read(lr.buf)
		lr.in = lr.buf[:k]
		if err != nil {
			if errors.Is(err, io.EOF) {
				lr.eof = true
				return nil
			}
			return wrapError(CodeRead, "read error", err)
		}
		if k > 0 {
			return nil
		}
	}
	return wrapError(CodeRead, "read error", io.ErrNoProgress)
}

// Read reads decompressed data into p. It returns io.EOF at the end of
// the stream.
func (lr *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if lr.err != nil {
			return n, lr.err
		}
		q := p[n:]
		mode := FinishAny
		if lr.Size >= 0 {
			if rem := lr.Size - lr.n; int64(len(q)) >= rem {
				q = q[:rem]
				mode = FinishEnd
			}
		}
		if len(lr.in) == 0 && !lr.eof {
			if err = lr.fill(); err != nil {
				lr.err = err
				continue
			}
		}
		k, m, status, err := lr.d.DecodeToBuf(q, lr.in, mode)
		lr.in = lr.in[m:]
		lr.compressed += int64(m)
		n += k
		lr.n += int64(k)
		if err != nil {
			lr.err = err
			continue
		}
		switch status {
		case StatusFinishedWithMark:
			if lr.Size >= 0 && lr.n != lr.Size {
				lr.err = errorf(CodeData,
					"end marker after %d bytes; expected %d",
					lr.n, lr.Size)
				continue
			}
			lr.err = io.EOF
		case StatusMaybeFinishedWithoutMark:
			if lr.Size >= 0 && lr.n == lr.Size {
				lr.err = io.EOF
			}
		case StatusNeedsMoreInput:
			if lr.eof {
				lr.err = newError(CodeInputEOF,
					"compressed stream truncated")
			}
		case StatusNotFinished:
			if mode == FinishEnd {
				lr.err = newError(CodeData,
					"stream continues after expected size")
			}
		}
	}
	return n, nil
}
