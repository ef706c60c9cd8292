// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"encoding/hex"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

const foxText = "The quick brown fox jumps over the lazy dog.\n"

// foxLZMA has been created by xz with the default preset. The size is
// unknown and the stream is terminated by an end marker.
const foxLZMA = "5d00008000ffffffffffffffff002a1a08a2032566f14b78c5a205ff2ee6" +
	"d9d2201aad34f8e21de84136fadc0669bb3ce410342709ebb366e3ec97eaae23" +
	"fffe8ea000"

func foxData(t *testing.T) []byte {
	data, err := hex.DecodeString(foxLZMA)
	require.NoError(t, err)
	return data
}

func TestDecodeFox(t *testing.T) {
	r := require.New(t)
	data := foxData(t)

	dst := make([]byte, 100)
	nDst, nSrc, status, err := DecodeBuffer(dst, data[HeaderLen:],
		data[:PropertiesLen], FinishAny)
	r.NoError(err)
	r.Equal(StatusFinishedWithMark, status)
	r.Equal(len(data)-HeaderLen, nSrc)
	r.Equal(foxText, string(dst[:nDst]))
}

func TestDecodeFoxBytewise(t *testing.T) {
	r := require.New(t)
	data := foxData(t)
	p, err := DecodeProperties(data)
	r.NoError(err)
	r.Equal(Properties{LC: 3, LP: 0, PB: 2, DictSize: 1 << 23}, p)

	d, err := NewDecoder(p, 0)
	r.NoError(err)
	var out []byte
	buf := make([]byte, 1)
	in := data[HeaderLen:]
	var status Status
	for len(in) > 0 {
		nDst, nSrc, st, err := d.DecodeToBuf(buf, in[:1], FinishAny)
		r.NoError(err)
		out = append(out, buf[:nDst]...)
		in = in[nSrc:]
		status = st
		if nSrc == 0 && nDst == 0 {
			break
		}
	}
	r.Equal(StatusFinishedWithMark, status)
	r.Empty(in)
	r.Equal(foxText, string(out))
}

// decodeChunks decodes data with random input and output slices.
func decodeChunks(t *testing.T, d *Decoder, data []byte, size int, rnd *rand.Rand) (out []byte, status Status) {
	buf := make([]byte, 300)
	for len(out) < size {
		k := 1 + rnd.Intn(50)
		if k > len(data) {
			k = len(data)
		}
		m := 1 + rnd.Intn(len(buf))
		mode := FinishAny
		if rem := size - len(out); m >= rem {
			m = rem
			mode = FinishEnd
		}
		nDst, nSrc, st, err := d.DecodeToBuf(buf[:m], data[:k], mode)
		require.NoError(t, err)
		out = append(out, buf[:nDst]...)
		data = data[nSrc:]
		status = st
		if nDst == 0 && nSrc == 0 {
			t.Fatalf("no progress at output %d status %v",
				len(out), status)
		}
	}
	require.Empty(t, data)
	return out, status
}

func TestDecodeToBufChunks(t *testing.T) {
	r := require.New(t)
	src := randomText(20, 50000)
	src = append(src, src[1000:30000]...)
	cfg := DefaultEncoderConfig()
	cfg.DictSize = MinDictSize
	data, props, err := CompressConfig(src, cfg)
	r.NoError(err)
	p, err := DecodeProperties(props)
	r.NoError(err)

	rnd := rand.New(rand.NewSource(21))
	d, err := NewDecoder(p, 0)
	r.NoError(err)
	dic, _ := d.Dict()
	r.Len(dic, MinDictSize)
	out, status := decodeChunks(t, d, data, len(src), rnd)
	r.Equal(StatusMaybeFinishedWithoutMark, status)
	r.True(bytes.Equal(src, out), "data differs")

	// the decoder can be used again after a reset
	d.Reset()
	out, _ = decodeChunks(t, d, data, len(src), rnd)
	r.True(bytes.Equal(src, out), "data differs after reset")
}

func TestDecodeToDic(t *testing.T) {
	r := require.New(t)
	src := randomText(22, 3000)
	data, props, err := CompressConfig(src, smallConfig())
	r.NoError(err)
	p, err := DecodeProperties(props)
	r.NoError(err)
	d, err := NewDecoder(p, 1<<20)
	r.NoError(err)

	n, status, err := d.DecodeToDic(1000, data, FinishAny)
	r.NoError(err)
	r.Equal(StatusNotFinished, status)
	dic, pos := d.Dict()
	r.Equal(1000, pos)
	r.Equal(src[:1000], dic[:pos])

	m, status, err := d.DecodeToDic(len(src), data[n:], FinishEnd)
	r.NoError(err)
	r.Equal(StatusMaybeFinishedWithoutMark, status)
	r.Equal(len(data), n+m)
	dic, pos = d.Dict()
	r.Equal(src, dic[:pos])

	_, _, err = d.DecodeToDic(pos-1, nil, FinishAny)
	r.ErrorIs(err, ErrParam)
	_, _, err = d.DecodeToDic(len(dic)+1, nil, FinishAny)
	r.ErrorIs(err, ErrParam)
}

func TestDecoderNeedsMoreInput(t *testing.T) {
	r := require.New(t)
	src := randomText(23, 1000)
	data, props, err := CompressConfig(src, smallConfig())
	r.NoError(err)
	p, err := DecodeProperties(props)
	r.NoError(err)
	d, err := NewDecoder(p, 0)
	r.NoError(err)

	n, status, err := d.DecodeToDic(len(src), data[:3], FinishAny)
	r.NoError(err)
	r.Equal(StatusNeedsMoreInput, status)
	r.Equal(3, n)

	n, status, err = d.DecodeToDic(len(src), data[3:10], FinishAny)
	r.NoError(err)
	r.Equal(StatusNeedsMoreInput, status)
	r.Equal(7, n)

	n, status, err = d.DecodeToDic(len(src), data[10:], FinishEnd)
	r.NoError(err)
	r.Equal(StatusMaybeFinishedWithoutMark, status)
	r.Equal(len(data)-10, n)
	dic, pos := d.Dict()
	r.Equal(src, dic[:pos])
}

func TestDecoderErrors(t *testing.T) {
	r := require.New(t)
	_, err := NewDecoder(Properties{LC: 9, DictSize: 1 << 16}, 0)
	r.ErrorIs(err, ErrUnsupported)

	d, err := NewDecoder(Properties{LC: 3, PB: 2, DictSize: 1}, 0)
	r.NoError(err)
	r.Equal(uint32(MinDictSize), d.Properties().DictSize)

	_, _, err = d.DecodeToDic(10, []byte{1, 0, 0, 0, 0, 0}, FinishAny)
	r.ErrorIs(err, ErrData)
}

func TestDecodeRepAtStart(t *testing.T) {
	r := require.New(t)
	// isMatch and isRep bits are both one for a code value close to
	// the top of the range
	data := []byte{0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	dst := make([]byte, 10)
	_, _, _, err := DecodeBuffer(dst, data, []byte{0x5d, 0, 0, 1, 0},
		FinishAny)
	r.ErrorIs(err, ErrData)
}

func TestStatusString(t *testing.T) {
	r := require.New(t)
	r.Equal("finished with mark", StatusFinishedWithMark.String())
	r.Equal("Status(17)", Status(17).String())
	r.Equal("FinishEnd", FinishEnd.String())
}

func TestReaderFox(t *testing.T) {
	r := require.New(t)
	lr, err := NewReader(bytes.NewReader(foxData(t)))
	r.NoError(err)
	r.Equal(int64(-1), lr.Size)
	out, err := io.ReadAll(lr)
	r.NoError(err)
	r.Equal(foxText, string(out))
}

// shortDistStreams have been created by xz with preset 6. They contain
// matches at distance 5 and 6, which use the smallest position slots
// with extra bits.
var shortDistStreams = []struct {
	text string
	data string
}{
	{
		text: strings.Repeat("abcde", 20),
		data: "5d00008000ffffffffffffffff00309888983ed52d6304577bffff" +
			"73080000",
	},
	{
		text: strings.Repeat("abcdef", 20) + "xyz" +
			strings.Repeat("abcdef", 3),
		data: "5d00008000ffffffffffffffff00309888983ecbea4e93a05101" +
			"48b50be605abfffe202000",
	},
}

func TestDecodeShortDistances(t *testing.T) {
	for _, tc := range shortDistStreams {
		data, err := hex.DecodeString(tc.data)
		require.NoError(t, err)
		lr, err := NewReader(iotest.OneByteReader(bytes.NewReader(data)))
		require.NoError(t, err)
		out, err := io.ReadAll(lr)
		require.NoError(t, err)
		require.Equal(t, tc.text, string(out))

		out, err = Decompress(data[HeaderLen:], data[:PropertiesLen],
			len(tc.text))
		require.NoError(t, err)
		require.Equal(t, tc.text, string(out))
	}
}
