// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package randtxt supports the generation of random text using a
// trigram model for the English language.
package randtxt

import (
	"math"
	"math/rand"
	"sort"
)

type ngram struct {
	s   string
	lgP float64
	lgQ float64
}

// cdf is a cumulative distribution over a list of strings.
type cdf struct {
	keys []string
	acc  []float64
}

// newCDF computes the distribution from the weights w(i) of the keys.
func newCDF(keys []string, w func(i int) float64) cdf {
	c := cdf{keys: keys, acc: make([]float64, len(keys))}
	sum := 0.0
	for i := range keys {
		sum += w(i)
		c.acc[i] = sum
	}
	for i := range c.acc {
		c.acc[i] = math.Min(c.acc[i]/sum, 1)
	}
	return c
}

// pick returns the first key whose cumulative probability reaches p.
func (c cdf) pick(p float64) string {
	i := sort.SearchFloat64s(c.acc, p)
	if i >= len(c.keys) {
		i = len(c.keys) - 1
	}
	return c.keys[i]
}

// model provides the distribution of the first trigram and the
// distribution of the trigrams following every two-letter prefix.
type model struct {
	start  cdf
	follow map[string]cdf
}

func newModel(lm []ngram) *model {
	if !sort.SliceIsSorted(lm, func(i, j int) bool {
		return lm[i].s < lm[j].s
	}) {
		panic("language model not sorted")
	}
	keys := make([]string, len(lm))
	for i, g := range lm {
		keys[i] = g.s
	}
	m := &model{
		start: newCDF(keys, func(i int) float64 {
			return math.Exp2(lm[i].lgP)
		}),
		follow: make(map[string]cdf, 26*26),
	}
	for i := 0; i < len(lm); {
		prefix := lm[i].s[:2]
		j := i
		for j < len(lm) && lm[j].s[:2] == prefix {
			j++
		}
		part := lm[i:j]
		m.follow[prefix] = newCDF(keys[i:j], func(k int) float64 {
			return math.Exp2(part[k].lgQ)
		})
		i = j
	}
	return m
}

// next returns the trigram following the two letters g2.
func (m *model) next(g2 string, p float64) string {
	return m.follow[g2].pick(p)
}

var english = newModel(englm3)

// Reader produces an endless stream of upper-case letters following the
// trigram statistics of the English model.
type Reader struct {
	rnd *rand.Rand
	g3  string
}

// NewReader creates a new reader using the random source.
func NewReader(src rand.Source) *Reader {
	rnd := rand.New(src)
	return &Reader{rnd: rnd, g3: english.start.pick(rnd.Float64())}
}

// Read fills p with random letters. It never returns an error.
func (r *Reader) Read(p []byte) (n int, err error) {
	for i := range p {
		r.g3 = english.next(r.g3[1:], r.rnd.Float64())
		p[i] = r.g3[2]
	}
	return len(p), nil
}
