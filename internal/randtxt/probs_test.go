// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package randtxt

import (
	"bufio"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	lr := io.LimitReader(NewReader(rand.NewSource(13)), 195)
	scanner := bufio.NewScanner(NewGroupReader(lr))
	lines := 0
	for scanner.Scan() {
		t.Log(scanner.Text())
		lines++
	}
	require.NoError(t, scanner.Err())
	// 39 groups of five letters with eight groups per line
	require.Equal(t, 5, lines)
}

func TestNextTrigram(t *testing.T) {
	require.Equal(t, "THE", english.next("TH", 0.2))
	require.Equal(t, "THA", english.next("TH", 0))
	require.Equal(t, "THZ", english.next("TH", 1))
}

func TestModel(t *testing.T) {
	r := require.New(t)
	r.Len(englm3, 26*26*26)
	r.Equal("AAA", englm3[0].s)
	r.Equal("ZZZ", englm3[len(englm3)-1].s)
	r.Len(english.follow, 26*26)
	p := make([]byte, 1000)
	n, err := NewReader(rand.NewSource(1)).Read(p)
	r.NoError(err)
	r.Equal(len(p), n)
	for i, c := range p {
		r.True('A' <= c && c <= 'Z', "p[%d]=%q", i, c)
	}
}

func TestGroupReader(t *testing.T) {
	g := NewGroupReader(strings.NewReader("abcdefgh ijk\x01"))
	g.GroupsPerLine = 2
	b, err := io.ReadAll(g)
	require.NoError(t, err)
	require.Equal(t, "abcde fgh_i\njk-\n", string(b))

	b, err = io.ReadAll(NewGroupReader(strings.NewReader("")))
	require.NoError(t, err)
	require.Empty(t, b)
}
