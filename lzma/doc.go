// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzma implements the LZMA compression algorithm.
//
// The encoder combines a match finder using hash chains or binary trees
// with an optimal parser and an adaptive range coder. The decoder never
// reads beyond the input it has been given, so it can be driven with
// arbitrary chunks of compressed data.
//
// Usage:
//
//	data, props, err := lzma.Compress(src, 5, 0, -1, -1, -1, -1, -1)
//
//	src, err := lzma.Decompress(data, props, size)
//
//	r, err := lzma.NewReader(f)
package lzma
