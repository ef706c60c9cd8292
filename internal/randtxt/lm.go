// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package randtxt

import (
	_ "embed"
	"math"
)

//go:embed english.txt
var englishText string

// englm3 is the trigram language model over the letters A to Z. It is
// sorted by trigram and contains every trigram. lgP is the binary
// logarithm of the trigram probability and lgQ the logarithm of the
// probability of the last letter given the first two.
var englm3 = trigramModel(englishText)

// trigramModel counts the letter trigrams of the text ignoring all
// characters that are not letters. Every count is increased by one so
// that all trigrams are possible.
func trigramModel(text string) []ngram {
	var counts [26 * 26 * 26]float64
	for i := range counts {
		counts[i] = 1
	}
	var g [3]int
	n := 0
	for _, c := range text {
		switch {
		case 'a' <= c && c <= 'z':
			c -= 'a' - 'A'
		case 'A' <= c && c <= 'Z':
		default:
			continue
		}
		g[0], g[1], g[2] = g[1], g[2], int(c-'A')
		n++
		if n >= 3 {
			counts[(g[0]*26+g[1])*26+g[2]]++
		}
	}
	total := 0.0
	for _, x := range counts {
		total += x
	}
	lm := make([]ngram, 0, len(counts))
	for i := 0; i < 26*26; i++ {
		c2 := 0.0
		for _, x := range counts[i*26 : i*26+26] {
			c2 += x
		}
		for j := 0; j < 26; j++ {
			x := counts[i*26+j]
			s := string([]byte{
				byte('A' + i/26), byte('A' + i%26), byte('A' + j)})
			lm = append(lm, ngram{
				s:   s,
				lgP: math.Log2(x / total),
				lgQ: math.Log2(x / c2),
			})
		}
	}
	return lm
}
