// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertiesVerify(t *testing.T) {
	r := require.New(t)
	r.NoError(Properties{LC: 3, LP: 0, PB: 2}.Verify())
	r.NoError(Properties{LC: 8, LP: 4, PB: 4}.Verify())
	for _, p := range []Properties{
		{LC: 9},
		{LP: 5},
		{PB: 5},
		{LC: -1},
	} {
		r.ErrorIs(p.Verify(), ErrParam, "%v", p)
	}
}

func TestPropertiesBytes(t *testing.T) {
	r := require.New(t)
	p := Properties{LC: 3, LP: 0, PB: 2, DictSize: 1 << 23}
	b := p.Bytes()
	r.Equal([PropertiesLen]byte{0x5d, 0, 0, 0x80, 0}, b)
	q, err := DecodeProperties(b[:])
	r.NoError(err)
	r.Equal(p, q)

	data, err := p.AppendBinary([]byte{1})
	r.NoError(err)
	r.Equal([]byte{1, 0x5d, 0, 0, 0x80, 0}, data)
	_, err = Properties{LC: 9}.AppendBinary(nil)
	r.ErrorIs(err, ErrParam)
}

func TestDecodeProperties(t *testing.T) {
	r := require.New(t)
	for pb := MinPB; pb <= MaxPB; pb++ {
		for lp := MinLP; lp <= MaxLP; lp++ {
			for lc := MinLC; lc <= MaxLC; lc++ {
				p := Properties{LC: lc, LP: lp, PB: pb,
					DictSize: 1 << 16}
				b := p.Bytes()
				q, err := DecodeProperties(b[:])
				r.NoError(err)
				r.Equal(p, q)
			}
		}
	}

	_, err := DecodeProperties([]byte{225, 0, 0, 1, 0})
	r.ErrorIs(err, ErrUnsupported)
	_, err = DecodeProperties([]byte{0x5d, 0})
	r.ErrorIs(err, ErrUnsupported)

	p, err := DecodeProperties([]byte{0x5d, 1, 0, 0, 0})
	r.NoError(err)
	r.Equal(uint32(MinDictSize), p.DictSize)
}

func TestRoundDictSize(t *testing.T) {
	tests := []struct{ in, out uint32 }{
		{0, 1 << 12},
		{1, 1 << 12},
		{4096, 4096},
		{4097, 6144},
		{5000, 6144},
		{6145, 8192},
		{1 << 20, 1 << 20},
		{3 << 20, 3 << 20},
		{3<<20 + 1, 4 << 20},
		{1 << 30, 1 << 30},
		{3<<30 + 5, 3<<30 + 5},
	}
	for _, tc := range tests {
		require.Equal(t, tc.out, roundDictSize(tc.in), "roundDictSize(%d)", tc.in)
	}
}
