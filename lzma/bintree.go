// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// The binary tree match finders keep two son entries for every position
// of the cyclic buffer. Each position is the root of a binary search
// tree of the earlier positions with the same hash ordered by the bytes
// following the position. Searching and inserting share a single pass
// that rebuilds the tree with the current position as new root.

// btSearch searches the tree starting at curMatch and inserts
// the current position. Matches longer than maxLen are appended to
// distances. The function returns the extended slice.
func (mf *matchFinder) btSearch(curMatch, maxLen uint32, distances []uint32) []uint32 {
	lenLimit := mf.lenLimit
	cur := mf.buf[mf.cur:]
	son := mf.son
	ptr0 := mf.cyclicPos<<1 + 1
	ptr1 := mf.cyclicPos << 1
	var len0, len1 uint32
	for cutValue := mf.cutValue; ; cutValue-- {
		delta := mf.pos - curMatch
		if cutValue == 0 || delta >= mf.cyclicSize {
			son[ptr0] = emptyHash
			son[ptr1] = emptyHash
			return distances
		}
		pair := mf.cyclicIndex(delta) << 1
		pb := mf.buf[mf.cur-int(delta):]
		n := len0
		if len1 < n {
			n = len1
		}
		if pb[n] == cur[n] {
			n++
			if n != lenLimit && pb[n] == cur[n] {
				n++
				for n != lenLimit && pb[n] == cur[n] {
					n++
				}
			}
			if maxLen < n {
				maxLen = n
				distances = append(distances, n, delta-1)
				if n == lenLimit {
					son[ptr1] = son[pair]
					son[ptr0] = son[pair+1]
					return distances
				}
			}
		}
		if pb[n] < cur[n] {
			son[ptr1] = curMatch
			ptr1 = pair + 1
			curMatch = son[ptr1]
			len1 = n
		} else {
			son[ptr0] = curMatch
			ptr0 = pair
			curMatch = son[ptr0]
			len0 = n
		}
	}
}

// btInsert inserts the current position into the tree without
// reporting matches.
func (mf *matchFinder) btInsert(curMatch uint32) {
	lenLimit := mf.lenLimit
	cur := mf.buf[mf.cur:]
	son := mf.son
	ptr0 := mf.cyclicPos<<1 + 1
	ptr1 := mf.cyclicPos << 1
	var len0, len1 uint32
	for cutValue := mf.cutValue; ; cutValue-- {
		delta := mf.pos - curMatch
		if cutValue == 0 || delta >= mf.cyclicSize {
			son[ptr0] = emptyHash
			son[ptr1] = emptyHash
			return
		}
		pair := mf.cyclicIndex(delta) << 1
		pb := mf.buf[mf.cur-int(delta):]
		n := len0
		if len1 < n {
			n = len1
		}
		if pb[n] == cur[n] {
			n++
			for n != lenLimit && pb[n] == cur[n] {
				n++
			}
			if n == lenLimit {
				son[ptr1] = son[pair]
				son[ptr0] = son[pair+1]
				return
			}
		}
		if pb[n] < cur[n] {
			son[ptr1] = curMatch
			ptr1 = pair + 1
			curMatch = son[ptr1]
			len1 = n
		} else {
			son[ptr0] = curMatch
			ptr0 = pair
			curMatch = son[ptr0]
			len0 = n
		}
	}
}

func (mf *matchFinder) bt2GetMatches(distances []uint32) int {
	if mf.lenLimit < 2 {
		mf.movePos()
		return 0
	}
	hv := uint32(mf.buf[mf.cur]) | uint32(mf.buf[mf.cur+1])<<8
	curMatch := mf.hash[hv]
	mf.hash[hv] = mf.pos
	d := mf.btSearch(curMatch, 1, distances[:0])
	mf.movePos()
	return len(d)
}

func (mf *matchFinder) bt3GetMatches(distances []uint32) int {
	lenLimit := mf.lenLimit
	if lenLimit < 3 {
		mf.movePos()
		return 0
	}
	h2, _, hv := mf.hashes()
	delta2 := mf.pos - mf.hash[h2]
	curMatch := mf.hash[fix3HashSize+hv]
	mf.hash[h2] = mf.pos
	mf.hash[fix3HashSize+hv] = mf.pos

	maxLen := uint32(2)
	d := distances[:0]
	if delta2 < mf.cyclicSize && mf.byteAt(-int(delta2)) == mf.byteAt(0) {
		maxLen = mf.extend(maxLen, delta2, lenLimit)
		d = append(d, maxLen, delta2-1)
		if maxLen == lenLimit {
			mf.btInsert(curMatch)
			mf.movePos()
			return len(d)
		}
	}
	d = mf.btSearch(curMatch, maxLen, d)
	mf.movePos()
	return len(d)
}

func (mf *matchFinder) bt4GetMatches(distances []uint32) int {
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
		mf.btInsert(curMatch)
		mf.movePos()
		return len(d)
	}
	if maxLen < 3 {
		maxLen = 3
	}
	d = mf.btSearch(curMatch, maxLen, d)
	mf.movePos()
	return len(d)
}

// shortMatches checks the candidates of the 2-byte and 3-byte hash
// tables and extends the longest one. It returns the appended pairs and
// the maximum length found.
func (mf *matchFinder) shortMatches(delta2, delta3 uint32, d []uint32) ([]uint32, uint32) {
	maxLen := uint32(1)
	c := mf.byteAt(0)
	if delta2 < mf.cyclicSize && mf.byteAt(-int(delta2)) == c {
		maxLen = 2
		d = append(d, maxLen, delta2-1)
	}
	if delta2 != delta3 && delta3 < mf.cyclicSize &&
		mf.byteAt(-int(delta3)) == c {
		maxLen = 3
		d = append(d, maxLen, delta3-1)
		delta2 = delta3
	}
	if len(d) > 0 {
		maxLen = mf.extend(maxLen, delta2, mf.lenLimit)
		d[len(d)-2] = maxLen
	}
	return d, maxLen
}

func (mf *matchFinder) bt2Skip(num uint32) {
	for ; num > 0; num-- {
		if mf.lenLimit < 2 {
			mf.movePos()
			continue
		}
		hv := uint32(mf.buf[mf.cur]) | uint32(mf.buf[mf.cur+1])<<8
		curMatch := mf.hash[hv]
		mf.hash[hv] = mf.pos
		mf.btInsert(curMatch)
		mf.movePos()
	}
}

func (mf *matchFinder) bt3Skip(num uint32) {
	for ; num > 0; num-- {
		if mf.lenLimit < 3 {
			mf.movePos()
			continue
		}
		h2, _, hv := mf.hashes()
		curMatch := mf.hash[fix3HashSize+hv]
		mf.hash[h2] = mf.pos
		mf.hash[fix3HashSize+hv] = mf.pos
		mf.btInsert(curMatch)
		mf.movePos()
	}
}

func (mf *matchFinder) bt4Skip(num uint32) {
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
		mf.btInsert(curMatch)
		mf.movePos()
	}
}
