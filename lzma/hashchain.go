// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// The hash chain match finder links every position of the cyclic buffer
// to the previous position with the same 4-byte hash.

// hcSearch walks the hash chain starting at curMatch and appends
// all matches longer than maxLen to distances.
func (mf *matchFinder) hcSearch(curMatch, maxLen uint32, distances []uint32) []uint32 {
	lenLimit := mf.lenLimit
	cur := mf.buf[mf.cur:]
	son := mf.son
	son[mf.cyclicPos] = curMatch
	for cutValue := mf.cutValue; ; cutValue-- {
		delta := mf.pos - curMatch
		if cutValue == 0 || delta >= mf.cyclicSize {
			return distances
		}
		pb := mf.buf[mf.cur-int(delta):]
		curMatch = son[mf.cyclicIndex(delta)]
		if pb[maxLen] == cur[maxLen] && pb[0] == cur[0] {
			n := uint32(1)
			for n != lenLimit && pb[n] == cur[n] {
				n++
			}
			if maxLen < n {
				maxLen = n
				distances = append(distances, n, delta-1)
				if n == lenLimit {
					return distances
				}
			}
		}
	}
}

func (mf *matchFinder) hc4GetMatches(distances []uint32) int {
	lenLimit := mf.lenLimit
	if lenLimit < 4 {
		mf.movePos()
		return 0
	}
	h2, h3, hv := mf.hashes()
	delta2 := mf.pos - mf.hash[h2]
	delta3 := mf.pos - mf.hash[fix3HashSize+h3]
	curMatch := mf.hash[fix4HashSize+hv]
	mf.hash[h2] = mf.pos
	mf.hash[fix3HashSize+h3] = mf.pos
	mf.hash[fix4HashSize+hv] = mf.pos

	d, maxLen := mf.shortMatches(delta2, delta3, distances[:0])
	if len(d) > 0 && maxLen == lenLimit {
		mf.son[mf.cyclicPos] = curMatch
		mf.movePos()
		return len(d)
	}
	if maxLen < 3 {
		maxLen = 3
	}
	d = mf.hcSearch(curMatch, maxLen, d)
	mf.movePos()
	return len(d)
}

func (mf *matchFinder) hc4Skip(num uint32) {
	for ; num > 0; num-- {
		if mf.lenLimit < 4 {
			mf.movePos()
			continue
		}
		h2, h3, hv := mf.hashes()
		curMatch := mf.hash[fix4HashSize+hv]
		mf.hash[h2] = mf.pos
		mf.hash[fix3HashSize+h3] = mf.pos
		mf.hash[fix4HashSize+hv] = mf.pos
		mf.son[mf.cyclicPos] = curMatch
		mf.movePos()
	}
}
