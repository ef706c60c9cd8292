// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var testStrings = []string{
	"S",
	"HalloBallo",
	"funny",
	"Die Nummer Eins der Welt sind wir!",
}

// rcRoundTrip encodes with enc and returns a decoder initialized with the
// output. It checks that the stream has the expected length.
func rcRoundTrip(t *testing.T, enc func(e *rangeEncoder)) (d *rangeDecoder, end func()) {
	t.Helper()
	var buf bytes.Buffer
	var e rangeEncoder
	e.init(&buf)
	enc(&e)
	e.flushData()
	e.flushStream()
	require.NoError(t, e.err)
	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), rcInitSize)
	require.Equal(t, uint64(len(data)), e.processed)

	d = new(rangeDecoder)
	require.NoError(t, d.init(data))
	d.setInput(data[rcInitSize:])
	end = func() {
		d.normalize()
		require.False(t, d.overrun, "decoder read beyond input")
		require.Equal(t, len(data)-rcInitSize, d.pos)
		require.True(t, d.possiblyAtEnd())
	}
	return d, end
}

func TestDirectEncoding(t *testing.T) {
	for _, s := range testStrings {
		b := []byte(s)
		d, end := rcRoundTrip(t, func(e *rangeEncoder) {
			for _, x := range b {
				e.encodeDirectBits(uint32(x), 8)
			}
		})
		out := make([]byte, 0, len(b))
		for range b {
			out = append(out, byte(d.decodeDirectBits(8)))
		}
		end()
		require.Equal(t, s, string(out))
	}
}

func TestTreeEncoding(t *testing.T) {
	for _, s := range testStrings {
		b := []byte(s)
		probs := make([]prob, 1<<8)
		initProbs(probs)
		d, end := rcRoundTrip(t, func(e *rangeEncoder) {
			for _, x := range b {
				e.encodeTree(probs, 8, uint32(x))
			}
		})
		initProbs(probs)
		out := make([]byte, 0, len(b))
		for range b {
			out = append(out, byte(d.decodeTree(probs, 8)))
		}
		end()
		require.Equal(t, s, string(out))
	}
}

func TestTreeReverseEncoding(t *testing.T) {
	symbols := []uint32{0, 1, 5, 15, 7, 8, 3, 3, 3, 12}
	probs := make([]prob, 1<<4)
	initProbs(probs)
	d, end := rcRoundTrip(t, func(e *rangeEncoder) {
		for _, s := range symbols {
			e.encodeTreeReverse(probs, 4, s)
		}
	})
	initProbs(probs)
	for i, s := range symbols {
		require.Equal(t, s, d.decodeTreeReverse(probs, 4), "symbol %d", i)
	}
	end()
}

func TestLiteralEncoding(t *testing.T) {
	for _, s := range testStrings {
		b := []byte(s)
		probs := make([]prob, 0x300)
		initProbs(probs)
		d, end := rcRoundTrip(t, func(e *rangeEncoder) {
			for i, x := range b {
				if i == 0 {
					e.encodeLiteral(probs, uint32(x))
					continue
				}
				e.encodeMatchedLiteral(probs, uint32(x),
					uint32(b[i-1]))
			}
		})
		initProbs(probs)
		out := make([]byte, 0, len(b))
		for i := range b {
			if i == 0 {
				out = append(out, d.decodeLiteral(probs))
				continue
			}
			out = append(out, d.decodeMatchedLiteral(probs,
				uint32(out[i-1])))
		}
		end()
		require.Equal(t, s, string(out))
	}
}

func TestBitEncodingSkewed(t *testing.T) {
	// Long runs of one bit value exercise the carry propagation.
	var p prob
	bits := make([]uint32, 100000)
	for i := range bits {
		if i%1000 == 999 {
			bits[i] = 1
		}
	}
	p = probInit
	d, end := rcRoundTrip(t, func(e *rangeEncoder) {
		for _, b := range bits {
			e.encodeBit(&p, b)
		}
		e.encodeDirectBits(0xffffffff, 32)
	})
	p = probInit
	for i, b := range bits {
		require.Equal(t, b, d.decodeBit(&p), "bit %d", i)
	}
	require.Equal(t, uint32(0xffffffff), d.decodeDirectBits(32))
	end()
}

func TestPeekLeavesProbabilities(t *testing.T) {
	probs := make([]prob, 0x300)
	initProbs(probs)
	d, _ := rcRoundTrip(t, func(e *rangeEncoder) {
		e.encodeLiteral(probs, 'x')
	})
	initProbs(probs)
	saved := *d
	d.peekLiteral(probs)
	for i, p := range probs {
		require.Equal(t, probInit, p, "prob %d", i)
	}
	*d = saved
	require.Equal(t, byte('x'), d.decodeLiteral(probs))
}

func TestRangeDecoderInit(t *testing.T) {
	var d rangeDecoder
	err := d.init([]byte{1, 0, 0, 0, 0})
	require.ErrorIs(t, err, ErrData)
	require.NoError(t, d.init([]byte{0, 1, 2, 3, 4}))
	require.Equal(t, uint32(0x01020304), d.code)
}

func TestRangeDecoderOverrun(t *testing.T) {
	var d rangeDecoder
	require.NoError(t, d.init([]byte{0, 0, 0, 0, 0}))
	d.setInput(nil)
	d.decodeDirectBits(32)
	require.True(t, d.overrun)
}
