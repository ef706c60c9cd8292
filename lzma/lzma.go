// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
)

// Compress compresses src with the classic LZMA parameters. Negative
// values for level, lc, lp, pb, fb and numThreads and a zero dictSize
// select the defaults. The dictionary is reduced for small inputs. The
// function returns the compressed stream and the five property bytes.
func Compress(src []byte, level int, dictSize uint32, lc, lp, pb, fb, numThreads int) (dst, props []byte, err error) {
	cfg := DefaultEncoderConfig()
	cfg.Level = level
	cfg.DictSize = dictSize
	cfg.LC = lc
	cfg.LP = lp
	cfg.PB = pb
	cfg.FB = fb
	cfg.NumThreads = numThreads
	switch {
	case len(src) == 0:
		cfg.ReduceSize = 1
	case uint64(len(src)) < 1<<32-1:
		cfg.ReduceSize = uint32(len(src))
	}
	return CompressConfig(src, cfg)
}

// CompressConfig compresses src using the given encoder configuration.
func CompressConfig(src []byte, cfg EncoderConfig) (dst, props []byte, err error) {
	e, err := NewEncoder(cfg)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(src)/2 + 64)
	if err = e.encodeBuffer(&buf, src, nil); err != nil {
		return nil, nil, err
	}
	p := e.Properties().Bytes()
	return buf.Bytes(), p[:], nil
}

// EncodeBuffer compresses src into dst. It returns the number of bytes
// written. If dst is too small the error has the code CodeOutputEOF.
func EncodeBuffer(dst, src []byte, cfg EncoderConfig, progress Progress) (n int, props []byte, err error) {
	e, err := NewEncoder(cfg)
	if err != nil {
		return 0, nil, err
	}
	p := e.Properties().Bytes()
	lw := &limitedWriter{buf: dst}
	err = e.encodeBuffer(lw, src, progress)
	if lw.overflow {
		return lw.n, p[:], errOverflow
	}
	return lw.n, p[:], err
}

// Decompress decompresses src into a slice of at most size bytes. The
// decoding stops at the end marker or when size bytes have been
// produced.
func Decompress(src, props []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, errorf(CodeParam, "negative output size %d", size)
	}
	dst := make([]byte, size)
	n, _, _, err := DecodeBuffer(dst, src, props, FinishAny)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// DecodeBuffer decodes src directly into dst. The finish mode matters
// only if dst is filled completely. The error has code CodeInputEOF if
// src ends before the stream.
func DecodeBuffer(dst, src, props []byte, mode FinishMode) (nDst, nSrc int, status Status, err error) {
	if len(src) < rcInitSize {
		return 0, 0, StatusNotSpecified, newError(CodeInputEOF,
			"compressed data too short")
	}
	p, err := DecodeProperties(props)
	if err != nil {
		return 0, 0, StatusNotSpecified, err
	}
	d, err := newDirectDecoder(p, dst)
	if err != nil {
		return 0, 0, StatusNotSpecified, err
	}
	nSrc, status, err = d.DecodeToDic(len(dst), src, mode)
	nDst = d.dicPos
	if err == nil && status == StatusNeedsMoreInput {
		err = newError(CodeInputEOF, "compressed data truncated")
	}
	return nDst, nSrc, status, err
}
