// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// mfTestData returns data over a small alphabet with a long repeat.
func mfTestData() []byte {
	rnd := rand.New(rand.NewSource(50))
	p := make([]byte, 3000)
	for i := range p {
		p[i] = "acgt"[rnd.Intn(4)]
	}
	p = append(p, p[1000:1500]...)
	q := make([]byte, 1000)
	for i := range q {
		q[i] = "acgt"[rnd.Intn(4)]
	}
	return append(p, q...)
}

// longestMatch returns the length of the longest match for position i
// limited by limit.
func longestMatch(p []byte, i int, limit int) int {
	best := 0
	for j := 0; j < i; j++ {
		n := 0
		for n < limit && p[j+n] == p[i+n] {
			n++
		}
		if n > best {
			best = n
		}
	}
	return best
}

func TestMatchFinders(t *testing.T) {
	const matchMaxLen = 32
	data := mfTestData()
	tests := []struct {
		kind     mfKind
		minBytes int
	}{
		{mfHc4, 4},
		{mfBt2, 2},
		{mfBt3, 3},
		{mfBt4, 4},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.kind.String(), func(t *testing.T) {
			r := require.New(t)
			mf, err := newMatchFinder(tc.kind, 1<<16, numOpts,
				matchMaxLen, maxMatchLen, 1<<20, true)
			r.NoError(err)
			mf.initDirect(data)
			distances := make([]uint32, 2*(maxMatchLen+1))
			for i := 0; i < len(data); i++ {
				limit := len(data) - i
				if limit > matchMaxLen {
					limit = matchMaxLen
				}
				r.Equal(uint32(len(data)-i), mf.available())
				if i%7 == 3 {
					mf.skip(1)
					continue
				}
				n := mf.getMatches(distances)
				want := longestMatch(data, i, limit)
				if limit < tc.minBytes {
					r.Zero(n, "position %d", i)
					continue
				}
				if want >= tc.minBytes {
					r.Greater(n, 0, "position %d", i)
				}
				prevLen := uint32(1)
				for k := 0; k < n; k += 2 {
					l, d := distances[k], distances[k+1]+1
					r.Greater(l, prevLen, "position %d", i)
					r.LessOrEqual(int(d), i)
					j := i - int(d)
					r.True(bytes.Equal(data[j:j+int(l)],
						data[i:i+int(l)]),
						"position %d len %d dist %d", i, l, d)
					prevLen = l
				}
				if want >= tc.minBytes {
					r.Equal(want, int(prevLen),
						"position %d", i)
				}
			}
			r.Zero(mf.available())
		})
	}
}

func TestMatchFinderStream(t *testing.T) {
	r := require.New(t)
	data := mfTestData()
	for len(data) < 1<<20 {
		data = append(data, data...)
	}
	a, err := newMatchFinder(mfBt4, 1<<12, numOpts, 32, maxMatchLen,
		32, false)
	r.NoError(err)
	a.initStream(bytes.NewReader(data))
	b, err := newMatchFinder(mfBt4, 1<<12, numOpts, 32, maxMatchLen,
		32, true)
	r.NoError(err)
	b.initDirect(data)

	da := make([]uint32, 2*(maxMatchLen+1))
	db := make([]uint32, 2*(maxMatchLen+1))
	for i := 0; i < len(data); i++ {
		r.Equal(data[i], a.byteAt(0))
		na := a.getMatches(da)
		nb := b.getMatches(db)
		r.Equal(nb, na, "position %d", i)
		r.Equal(db[:nb], da[:na], "position %d", i)
	}
	r.NoError(a.err)
}

func TestSelectMF(t *testing.T) {
	r := require.New(t)
	r.Equal(mfHc4, selectMF(false, 2))
	r.Equal(mfBt2, selectMF(true, 2))
	r.Equal(mfBt3, selectMF(true, 3))
	r.Equal(mfBt4, selectMF(true, 4))
	r.Equal("bt3", mfBt3.String())
}

// initDirectAt works like initDirect but starts with the position
// counter at pos.
func (mf *matchFinder) initDirectAt(p []byte, pos uint32) {
	mf.initDirect(p)
	for i := range mf.hash {
		mf.hash[i] = emptyHash
	}
	mf.directRem = uint64(len(p))
	mf.endReached = false
	mf.pos = pos
	mf.streamPos = pos
	mf.readBlock()
	mf.setLimits()
}

func TestMatchFinderNormalize(t *testing.T) {
	data := mfTestData()
	for len(data) < 1<<19 {
		data = append(data, data...)
	}
	for _, kind := range []mfKind{mfHc4, mfBt4} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			r := require.New(t)
			a, err := newMatchFinder(kind, 1<<16, numOpts, 32,
				maxMatchLen, 32, true)
			r.NoError(err)
			a.initDirect(data)
			b, err := newMatchFinder(kind, 1<<16, numOpts, 32,
				maxMatchLen, 32, true)
			r.NoError(err)
			b.initDirectAt(data, maxNormalize-100000)

			da := make([]uint32, 2*(maxMatchLen+1))
			db := make([]uint32, 2*(maxMatchLen+1))
			normalized := false
			for i := 0; i < len(data); i++ {
				// the window ends at maxNormalize until the
				// positions have been reduced
				avail := b.available()
				r.Greater(avail, uint32(0), "position %d", i)
				r.LessOrEqual(avail, uint32(len(data)-i),
					"position %d", i)
				na := a.getMatches(da)
				nb := b.getMatches(db)
				r.Equal(na, nb, "position %d", i)
				r.Equal(da[:na], db[:nb], "position %d", i)
				if b.pos < 1<<31 {
					normalized = true
				}
			}
			r.True(normalized)
			r.Zero(b.available())
		})
	}
}
