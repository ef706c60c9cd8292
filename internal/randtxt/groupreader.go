// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package randtxt

import (
	"io"
	"unicode"
)

// GroupReader formats the bytes of a reader in groups of five
// characters separated by spaces. Spaces in the input are shown as
// underscores and non-printable bytes as dashes.
type GroupReader struct {
	R io.Reader
	// number of groups per line; 8 if not positive
	GroupsPerLine int

	in      [512]byte
	out     []byte
	pending []byte
	group   int
	line    int
	err     error
}

// NewGroupReader creates a group reader with eight groups per line.
func NewGroupReader(r io.Reader) *GroupReader {
	return &GroupReader{R: r}
}

// fill formats the next chunk of the underlying reader.
func (g *GroupReader) fill() {
	if g.GroupsPerLine < 1 {
		g.GroupsPerLine = 8
	}
	k, err := g.R.Read(g.in[:])
	out := g.out[:0]
	for _, c := range g.in[:k] {
		if g.group == 5 {
			g.group = 0
			g.line++
			if g.line == g.GroupsPerLine {
				g.line = 0
				out = append(out, '\n')
			} else {
				out = append(out, ' ')
			}
		}
		switch {
		case c == ' ':
			c = '_'
		case !unicode.IsPrint(rune(c)):
			c = '-'
		}
		out = append(out, c)
		g.group++
	}
	if err != nil {
		if err == io.EOF && g.group > 0 {
			out = append(out, '\n')
			g.group, g.line = 0, 0
		}
		g.err = err
	}
	g.out = out
	g.pending = out
}

// Read reads the formatted text.
func (g *GroupReader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(g.pending) > 0 {
			k := copy(p[n:], g.pending)
			g.pending = g.pending[k:]
			n += k
			continue
		}
		if g.err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, g.err
		}
		g.fill()
	}
	return n, nil
}
