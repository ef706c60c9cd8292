// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestCompressStream(t *testing.T) {
	src := randomText(40, 100000)
	tests := []struct {
		name string
		size int64
	}{
		{"known-size", int64(len(src))},
		{"unknown-size", -1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			var buf bytes.Buffer
			h, err := CompressStream(&buf, bytes.NewReader(src),
				smallConfig(), tc.size, nil)
			r.NoError(err)
			r.Equal(tc.size, h.Size)

			lr, err := NewReader(bytes.NewReader(buf.Bytes()))
			r.NoError(err)
			r.Equal(h, lr.Header)
			out, err := io.ReadAll(iotest.OneByteReader(lr))
			r.NoError(err)
			r.True(bytes.Equal(src, out), "data differs")

			lr, err = NewReader(
				iotest.HalfReader(bytes.NewReader(buf.Bytes())))
			r.NoError(err)
			out, err = io.ReadAll(lr)
			r.NoError(err)
			r.True(bytes.Equal(src, out), "data differs")
		})
	}
}

func TestCompressStreamEmpty(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	_, err := CompressStream(&buf, bytes.NewReader(nil),
		DefaultEncoderConfig(), 0, nil)
	r.NoError(err)
	r.Equal(HeaderLen+5, buf.Len())
	lr, err := NewReader(&buf)
	r.NoError(err)
	out, err := io.ReadAll(lr)
	r.NoError(err)
	r.Empty(out)
}

func TestCompressStreamShortInput(t *testing.T) {
	r := require.New(t)
	src := randomText(41, 1000)
	var buf bytes.Buffer
	_, err := CompressStream(&buf, bytes.NewReader(src), smallConfig(),
		2000, nil)
	r.ErrorIs(err, ErrRead)
}

func TestDecodeStream(t *testing.T) {
	r := require.New(t)
	src := randomText(42, 200000)
	cfg := smallConfig()
	data, props, err := CompressConfig(src, cfg)
	r.NoError(err)
	p, err := DecodeProperties(props)
	r.NoError(err)

	var out bytes.Buffer
	calls := 0
	progress := ProgressFunc(func(in, outSize uint64) error {
		calls++
		r.LessOrEqual(in, uint64(len(data)))
		return nil
	})
	n, err := DecodeStream(&out, bytes.NewReader(data), p,
		int64(len(src)), progress)
	r.NoError(err)
	r.Equal(int64(len(src)), n)
	r.True(bytes.Equal(src, out.Bytes()), "data differs")
	r.Greater(calls, 1)

	// without end marker the size must be known
	_, err = DecodeStream(io.Discard, bytes.NewReader(data), p, -1, nil)
	r.ErrorIs(err, ErrInputEOF)

	errStop := errors.New("stop")
	_, err = DecodeStream(io.Discard, bytes.NewReader(data), p,
		int64(len(src)), ProgressFunc(func(in, out uint64) error {
			return errStop
		}))
	r.ErrorIs(err, ErrProgress)
	r.ErrorIs(err, errStop)

	_, err = DecodeStream(&errWriter{n: 100}, bytes.NewReader(data), p,
		int64(len(src)), nil)
	r.ErrorIs(err, ErrWrite)
}

func TestReaderSizeMismatch(t *testing.T) {
	r := require.New(t)
	src := randomText(43, 10000)
	cfg := smallConfig()
	cfg.WriteEndMark = true
	var buf bytes.Buffer
	h, err := CompressStream(&buf, bytes.NewReader(src), cfg, -1, nil)
	r.NoError(err)
	data := buf.Bytes()[HeaderLen:]

	// the end marker arrives earlier than announced
	lr, err := NewStreamReader(bytes.NewReader(data),
		Header{Properties: h.Properties, Size: int64(len(src)) + 10})
	r.NoError(err)
	_, err = io.ReadAll(lr)
	r.ErrorIs(err, ErrData)

	// data continues after the announced size
	lr, err = NewStreamReader(bytes.NewReader(data),
		Header{Properties: h.Properties, Size: int64(len(src)) - 10})
	r.NoError(err)
	_, err = io.ReadAll(lr)
	r.ErrorIs(err, ErrData)

	// the end marker directly after the announced size is accepted
	lr, err = NewStreamReader(bytes.NewReader(data),
		Header{Properties: h.Properties, Size: int64(len(src))})
	r.NoError(err)
	out, err := io.ReadAll(lr)
	r.NoError(err)
	r.Equal(src, out)
}

func TestReaderTruncated(t *testing.T) {
	r := require.New(t)
	src := randomText(44, 10000)
	var buf bytes.Buffer
	_, err := CompressStream(&buf, bytes.NewReader(src), smallConfig(),
		int64(len(src)), nil)
	r.NoError(err)
	data := buf.Bytes()

	_, err = NewReader(bytes.NewReader(data[:HeaderLen-1]))
	r.ErrorIs(err, ErrInputEOF)

	lr, err := NewReader(bytes.NewReader(data[:len(data)-20]))
	r.NoError(err)
	_, err = io.ReadAll(lr)
	r.ErrorIs(err, ErrInputEOF)

	bad := append([]byte{}, data...)
	bad[0] = 0xff
	_, err = NewReader(bytes.NewReader(bad))
	r.ErrorIs(err, ErrUnsupported)
}

func TestReaderReadError(t *testing.T) {
	r := require.New(t)
	src := randomText(45, 10000)
	var buf bytes.Buffer
	_, err := CompressStream(&buf, bytes.NewReader(src), smallConfig(),
		int64(len(src)), nil)
	r.NoError(err)
	data := buf.Bytes()

	rd := io.MultiReader(bytes.NewReader(data[:100]),
		iotest.ErrReader(errDiskFull))
	lr, err := NewReader(rd)
	r.NoError(err)
	_, err = io.ReadAll(lr)
	r.ErrorIs(err, ErrRead)
	r.ErrorIs(err, errDiskFull)
}
